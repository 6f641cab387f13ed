package workflows

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/usecases"
)

// BookingActivities holds the activity implementations for the seat booking workflow.
type BookingActivities struct {
	Trips *usecases.TripService
}

// HoldSeatsInput asks for a time-boxed hold owned by the booking.
type HoldSeatsInput struct {
	TripID    string
	BookingID string
	Seats     []string
	TTL       time.Duration
}

// BookSeatsInput turns the booking's holds into sold seats.
type BookSeatsInput struct {
	TripID         string
	BookingID      string
	Seats          []string
	PassengerNames []string
}

// ReleaseSeatsInput drops whatever the booking still holds.
type ReleaseSeatsInput struct {
	TripID    string
	BookingID string
	Seats     []string
}

// HoldSeats reserves the seats for the booking.
func (a *BookingActivities) HoldSeats(ctx context.Context, in HoldSeatsInput) error {
	activity.GetLogger(ctx).Info("holding seats", "tripID", in.TripID, "bookingID", in.BookingID, "seats", len(in.Seats))
	_, err := a.Trips.HoldSeats(ctx, in.TripID, in.BookingID, in.Seats, in.TTL)
	return activityError(err)
}

// BookSeats books the held seats.
func (a *BookingActivities) BookSeats(ctx context.Context, in BookSeatsInput) error {
	activity.GetLogger(ctx).Info("booking seats", "tripID", in.TripID, "bookingID", in.BookingID)
	return activityError(a.Trips.BookSeats(ctx, in.TripID, in.Seats, in.PassengerNames, in.BookingID))
}

// ReleaseSeats releases the booking's holds. Releasing seats that are no
// longer held is not an error.
func (a *BookingActivities) ReleaseSeats(ctx context.Context, in ReleaseSeatsInput) error {
	activity.GetLogger(ctx).Info("releasing seats", "tripID", in.TripID, "bookingID", in.BookingID)
	return activityError(a.Trips.ReleaseSeats(ctx, in.TripID, in.BookingID, in.Seats))
}

// activityError marks business rule failures as non-retryable so Temporal
// only retries infrastructure errors.
func activityError(err error) error {
	if err == nil {
		return nil
	}
	var (
		validation *domain.ValidationError
		transition *domain.TransitionError
		conflict   *domain.SeatConflictError
		capacity   *domain.InsufficientCapacityError
		dependency *domain.DependencyUnavailableError
	)
	switch {
	case errors.As(err, &validation):
		return temporal.NewNonRetryableApplicationError(err.Error(), "ValidationError", err)
	case errors.As(err, &transition):
		return temporal.NewNonRetryableApplicationError(err.Error(), "TransitionError", err)
	case errors.As(err, &conflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), "SeatConflictError", err, conflict.Seats)
	case errors.As(err, &capacity):
		return temporal.NewNonRetryableApplicationError(err.Error(), "InsufficientCapacityError", err)
	case errors.As(err, &dependency):
		return temporal.NewNonRetryableApplicationError(err.Error(), "DependencyUnavailableError", err)
	case errors.Is(err, domain.ErrNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), "NotFound", err)
	}
	return err
}
