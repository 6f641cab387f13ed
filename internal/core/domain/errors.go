package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a trip or a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned by TripRepository.Update when the stored
	// trip was written by someone else since it was read.
	ErrVersionConflict = errors.New("trip version conflict")

	// ErrTripHasBookings is the cause of a rejected cancellation while seats
	// are still booked.
	ErrTripHasBookings = errors.New("trip has booked seats; cancel the bookings first")
)

// ValidationError reports malformed input or an unknown enum value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// TransitionError reports a state change that the transition table forbids.
type TransitionError struct {
	Machine string // "trip" or "journey"
	From    string
	To      string
	Cause   error
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s: cannot transition from %s to %s", e.Machine, e.From, e.To)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TransitionError) Unwrap() error { return e.Cause }

// SeatConflictError names the requested seats that are already taken.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return "seats already taken: " + strings.Join(e.Seats, ", ")
}

// InsufficientCapacityError reports a request for more seats than remain.
type InsufficientCapacityError struct {
	Requested int
	Available int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("requested %d seats but only %d available", e.Requested, e.Available)
}

// DependencyUnavailableError reports a referenced route, bus or employee that
// is missing or not usable for the operation.
type DependencyUnavailableError struct {
	Entity string
	ID     string
	Reason string
}

func (e *DependencyUnavailableError) Error() string {
	return fmt.Sprintf("%s %s unavailable: %s", e.Entity, e.ID, e.Reason)
}
