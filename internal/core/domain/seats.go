package domain

import (
	"fmt"
	"strings"
)

// BookSeats adds seats to the ledger for one booking. The caller must hold
// the per-trip write lock (the repository version check) across the
// read-check-write sequence.
func (t *Trip) BookSeats(seats, passengerNames []string, bookingID string) error {
	if t.Status != TripStatusScheduled {
		return NewValidationError("status", "seats can only be booked on scheduled trips, trip is %s", t.Status)
	}
	if strings.TrimSpace(bookingID) == "" {
		return NewValidationError("booking_id", "is required")
	}
	seats, err := NormalizeSeatNumbers(seats)
	if err != nil {
		return err
	}
	if len(passengerNames) != 0 && len(passengerNames) != len(seats) {
		return NewValidationError("passenger_names", "expected %d names, got %d", len(seats), len(passengerNames))
	}

	taken := t.bookedSet()
	var conflicts []string
	for _, s := range seats {
		if _, ok := taken[s]; ok {
			conflicts = append(conflicts, s)
		}
	}
	if len(conflicts) > 0 {
		return &SeatConflictError{Seats: conflicts}
	}
	if len(seats) > t.AvailableSeats {
		return &InsufficientCapacityError{Requested: len(seats), Available: t.AvailableSeats}
	}

	for i, s := range seats {
		seat := BookedSeat{SeatNumber: s, BookingID: bookingID}
		if len(passengerNames) > 0 {
			seat.PassengerName = strings.TrimSpace(passengerNames[i])
		}
		t.BookedSeats = append(t.BookedSeats, seat)
	}
	t.recountSeats()
	return nil
}

// CancelSeats removes the given seats from the ledger and returns how many
// were actually booked. Seats that are not booked are ignored.
func (t *Trip) CancelSeats(seats []string) (int, error) {
	if t.IsTerminal() {
		return 0, NewValidationError("status", "trip is %s and can no longer change", t.Status)
	}
	drop := make(map[string]struct{}, len(seats))
	for _, s := range seats {
		drop[strings.TrimSpace(s)] = struct{}{}
	}

	kept := make([]BookedSeat, 0, len(t.BookedSeats))
	for _, b := range t.BookedSeats {
		if _, ok := drop[b.SeatNumber]; ok {
			continue
		}
		kept = append(kept, b)
	}
	removed := len(t.BookedSeats) - len(kept)
	t.BookedSeats = kept
	t.recountSeats()
	return removed, nil
}

// IsSeatBooked reports whether seat is in the ledger.
func (t *Trip) IsSeatBooked(seat string) bool {
	_, ok := t.bookedSet()[seat]
	return ok
}

// OccupancyRate is booked seats divided by total seats.
func (t *Trip) OccupancyRate() float64 {
	if t.TotalSeats <= 0 {
		return 0
	}
	return float64(len(t.BookedSeats)) / float64(t.TotalSeats)
}

// CheckInvariants verifies the seat ledger and journey index bounds.
func (t *Trip) CheckInvariants() error {
	if t.AvailableSeats != t.TotalSeats-len(t.BookedSeats) {
		return fmt.Errorf("available seats %d != total %d - booked %d", t.AvailableSeats, t.TotalSeats, len(t.BookedSeats))
	}
	seen := make(map[string]struct{}, len(t.BookedSeats))
	for _, b := range t.BookedSeats {
		if _, dup := seen[b.SeatNumber]; dup {
			return fmt.Errorf("seat %s booked twice", b.SeatNumber)
		}
		seen[b.SeatNumber] = struct{}{}
	}
	if !t.ArrivalTime.After(t.DepartureTime) {
		return fmt.Errorf("arrival %s is not after departure %s", t.ArrivalTime, t.DepartureTime)
	}
	if idx := t.Journey.CurrentStopIndex; idx < -1 || idx > t.TotalStops {
		return fmt.Errorf("stop index %d outside [-1, %d]", idx, t.TotalStops)
	}
	return nil
}

// NormalizeSeatNumbers trims seat numbers and rejects empty or repeated ones.
func NormalizeSeatNumbers(seats []string) ([]string, error) {
	if len(seats) == 0 {
		return nil, NewValidationError("seat_numbers", "at least one seat is required")
	}
	out := make([]string, 0, len(seats))
	seen := make(map[string]struct{}, len(seats))
	for _, s := range seats {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, NewValidationError("seat_numbers", "seat number must not be empty")
		}
		if _, dup := seen[s]; dup {
			return nil, NewValidationError("seat_numbers", "seat %s requested twice", s)
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

func (t *Trip) bookedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.BookedSeats))
	for _, b := range t.BookedSeats {
		set[b.SeatNumber] = struct{}{}
	}
	return set
}

func (t *Trip) recountSeats() {
	t.AvailableSeats = t.TotalSeats - len(t.BookedSeats)
}
