package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/pkg/metrics"
)

// BookSeats sells seats to a booking. Seats held by another customer are
// rejected before the ledger is touched; holds owned by bookingID are
// released once the seats are booked.
func (s *TripService) BookSeats(ctx context.Context, tripID string, seats, passengerNames []string, bookingID string) (err error) {
	ctx, span := tracer.Start(ctx, "TripService.BookSeats", trace.WithAttributes(
		attribute.String("trip.id", tripID),
		attribute.String("booking.id", bookingID),
		attribute.Int("seats.count", len(seats)),
	))
	defer func() {
		recordBookingOutcome(err, len(seats))
		endSpan(span, err)
	}()

	seats, err = domain.NormalizeSeatNumbers(seats)
	if err != nil {
		return err
	}
	if err := s.checkForeignHolds(ctx, tripID, bookingID, seats); err != nil {
		return err
	}

	_, err = s.mutate(ctx, "book_seats", tripID, func(t *domain.Trip) error {
		return t.BookSeats(seats, passengerNames, bookingID)
	})
	if err != nil {
		return err
	}

	if s.holds != nil {
		if err := s.holds.Release(ctx, tripID, bookingID, seats); err != nil {
			s.log.Warn("release seat holds after booking", "trip_id", tripID, "booking_id", bookingID, "error", err)
		}
	}
	return nil
}

func (s *TripService) checkForeignHolds(ctx context.Context, tripID, holderID string, seats []string) error {
	if s.holds == nil {
		return nil
	}
	held, err := s.holds.ListHeld(ctx, tripID)
	if err != nil {
		return fmt.Errorf("list seat holds: %w", err)
	}
	owner := make(map[string]string, len(held))
	for _, h := range held {
		owner[h.SeatNumber] = h.HolderID
	}
	var conflicts []string
	for _, seat := range seats {
		if by, ok := owner[seat]; ok && by != holderID {
			conflicts = append(conflicts, seat)
		}
	}
	if len(conflicts) > 0 {
		return &domain.SeatConflictError{Seats: conflicts}
	}
	return nil
}

func recordBookingOutcome(err error, seats int) {
	var (
		conflict *domain.SeatConflictError
		capacity *domain.InsufficientCapacityError
		invalid  *domain.ValidationError
	)
	switch {
	case err == nil:
		metrics.SeatsBooked.Add(float64(seats))
	case errors.As(err, &conflict):
		metrics.BookingRejections.WithLabelValues("seat_conflict").Inc()
	case errors.As(err, &capacity):
		metrics.BookingRejections.WithLabelValues("insufficient_capacity").Inc()
	case errors.As(err, &invalid):
		metrics.BookingRejections.WithLabelValues("validation").Inc()
	default:
		metrics.BookingRejections.WithLabelValues("error").Inc()
	}
}

// CancelSeats removes seats from the ledger. Seats that are not booked are
// ignored; when none of them are booked nothing is written.
func (s *TripService) CancelSeats(ctx context.Context, tripID string, seats []string) (err error) {
	ctx, span := tracer.Start(ctx, "TripService.CancelSeats", trace.WithAttributes(
		attribute.String("trip.id", tripID),
		attribute.Int("seats.count", len(seats)),
	))
	defer func() { endSpan(span, err) }()

	if len(seats) == 0 {
		return domain.NewValidationError("seat_numbers", "at least one seat is required")
	}

	var removed int
	_, err = s.mutate(ctx, "cancel_seats", tripID, func(t *domain.Trip) error {
		n, err := t.CancelSeats(seats)
		if err != nil {
			return err
		}
		removed = n
		if n == 0 {
			return errNoChange
		}
		t.UpdatedAt = s.clock.Now()
		return nil
	})
	if err != nil {
		return err
	}
	metrics.SeatsCancelled.Add(float64(removed))
	return nil
}

// HoldSeats reserves unsold seats for holderID for ttl (the configured
// default when ttl is zero).
func (s *TripService) HoldSeats(ctx context.Context, tripID, holderID string, seats []string, ttl time.Duration) (holds []domain.SeatHold, err error) {
	ctx, span := tracer.Start(ctx, "TripService.HoldSeats", trace.WithAttributes(
		attribute.String("trip.id", tripID),
		attribute.String("holder.id", holderID),
	))
	defer func() {
		outcome := "acquired"
		var conflict *domain.SeatConflictError
		switch {
		case errors.As(err, &conflict):
			outcome = "conflict"
		case err != nil:
			outcome = "error"
		}
		metrics.SeatHolds.WithLabelValues(outcome).Inc()
		endSpan(span, err)
	}()

	if s.holds == nil {
		return nil, errors.New("seat holds are not configured")
	}
	if strings.TrimSpace(holderID) == "" {
		return nil, domain.NewValidationError("holder_id", "is required")
	}
	if ttl < 0 {
		return nil, domain.NewValidationError("ttl", "must not be negative")
	}
	if ttl == 0 {
		ttl = s.opts.HoldTTL
	}
	seats, err = domain.NormalizeSeatNumbers(seats)
	if err != nil {
		return nil, err
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("load trip %s: %w", tripID, err)
	}
	if trip.Status != domain.TripStatusScheduled {
		return nil, domain.NewValidationError("status", "seats can only be held on scheduled trips, trip is %s", trip.Status)
	}
	var booked []string
	for _, seat := range seats {
		if trip.IsSeatBooked(seat) {
			booked = append(booked, seat)
		}
	}
	if len(booked) > 0 {
		return nil, &domain.SeatConflictError{Seats: booked}
	}
	if len(seats) > trip.AvailableSeats {
		return nil, &domain.InsufficientCapacityError{Requested: len(seats), Available: trip.AvailableSeats}
	}

	return s.holds.Acquire(ctx, tripID, holderID, seats, ttl)
}

// ReleaseSeats drops holderID's holds on seats.
func (s *TripService) ReleaseSeats(ctx context.Context, tripID, holderID string, seats []string) error {
	if s.holds == nil {
		return errors.New("seat holds are not configured")
	}
	if strings.TrimSpace(holderID) == "" {
		return domain.NewValidationError("holder_id", "is required")
	}
	seats, err := domain.NormalizeSeatNumbers(seats)
	if err != nil {
		return err
	}
	return s.holds.Release(ctx, tripID, holderID, seats)
}

// SeatMap lists booked seats and live holds. Holds on seats that have since
// been booked are left out.
func (s *TripService) SeatMap(ctx context.Context, tripID string) (*domain.SeatMap, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	m := &domain.SeatMap{
		TripID:         trip.ID,
		TotalSeats:     trip.TotalSeats,
		AvailableSeats: trip.AvailableSeats,
		Booked:         trip.BookedSeats,
		Held:           []domain.SeatHold{},
	}
	if s.holds == nil {
		return m, nil
	}
	held, err := s.holds.ListHeld(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("list seat holds: %w", err)
	}
	for _, h := range held {
		if !trip.IsSeatBooked(h.SeatNumber) {
			m.Held = append(m.Held, h)
		}
	}
	sort.Slice(m.Held, func(i, j int) bool { return m.Held[i].SeatNumber < m.Held[j].SeatNumber })
	return m, nil
}

// CalculateDynamicPrice prices a seat on the trip as of bookingDate (now
// when nil).
func (s *TripService) CalculateDynamicPrice(ctx context.Context, tripID string, bookingDate *time.Time) (out domain.PriceBreakdown, err error) {
	ctx, span := tracer.Start(ctx, "TripService.CalculateDynamicPrice", trace.WithAttributes(attribute.String("trip.id", tripID)))
	defer func() { endSpan(span, err) }()

	// Occupancy drives the surge, so read past the cache.
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return out, err
	}
	at := s.clock.Now()
	if bookingDate != nil {
		at = *bookingDate
	}
	return domain.CalculatePrice(trip.PricingInputFor(at, s.opts.Location)), nil
}
