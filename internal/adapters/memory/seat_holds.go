package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
	"github.com/samirrijal/busseat/internal/pkg/clock"
)

// SeatHolds keeps seat holds in memory. Expiry is evaluated lazily against
// the injected clock, so expired holds vanish without a sweeper.
type SeatHolds struct {
	mu    sync.Mutex
	clock clock.Clock
	holds map[string]map[string]domain.SeatHold // trip -> seat -> hold
}

// NewSeatHolds creates an empty store.
func NewSeatHolds(clk clock.Clock) *SeatHolds {
	if clk == nil {
		clk = clock.Real{}
	}
	return &SeatHolds{clock: clk, holds: make(map[string]map[string]domain.SeatHold)}
}

var _ ports.SeatHoldService = (*SeatHolds)(nil)

func (s *SeatHolds) Acquire(_ context.Context, tripID, holderID string, seats []string, ttl time.Duration) ([]domain.SeatHold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	trip := s.live(tripID, now)

	var conflicts []string
	for _, seat := range seats {
		if h, ok := trip[seat]; ok && h.HolderID != holderID {
			conflicts = append(conflicts, seat)
		}
	}
	if len(conflicts) > 0 {
		return nil, &domain.SeatConflictError{Seats: conflicts}
	}

	out := make([]domain.SeatHold, 0, len(seats))
	for _, seat := range seats {
		h := domain.SeatHold{TripID: tripID, SeatNumber: seat, HolderID: holderID, ExpiresAt: now.Add(ttl)}
		trip[seat] = h
		out = append(out, h)
	}
	return out, nil
}

func (s *SeatHolds) Release(_ context.Context, tripID, holderID string, seats []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trip := s.live(tripID, s.clock.Now())
	for _, seat := range seats {
		if h, ok := trip[seat]; ok && h.HolderID == holderID {
			delete(trip, seat)
		}
	}
	if len(trip) == 0 {
		delete(s.holds, tripID)
	}
	return nil
}

func (s *SeatHolds) ListHeld(_ context.Context, tripID string) ([]domain.SeatHold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trip := s.live(tripID, s.clock.Now())
	out := make([]domain.SeatHold, 0, len(trip))
	for _, h := range trip {
		out = append(out, h)
	}
	if len(trip) == 0 {
		delete(s.holds, tripID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

// live returns the trip's hold map with expired entries dropped. Callers hold s.mu.
func (s *SeatHolds) live(tripID string, now time.Time) map[string]domain.SeatHold {
	trip, ok := s.holds[tripID]
	if !ok {
		trip = make(map[string]domain.SeatHold)
		s.holds[tripID] = trip
	}
	for seat, h := range trip {
		if !h.ExpiresAt.After(now) {
			delete(trip, seat)
		}
	}
	return trip
}
