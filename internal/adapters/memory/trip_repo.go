// Package memory holds in-process adapters used for local development and
// tests. They honour the same contracts as the postgres and valkey adapters.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
)

// TripRepo stores trips in a map guarded by a mutex. Documents are copied
// on the way in and out.
type TripRepo struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip
}

// NewTripRepo creates an empty TripRepo.
func NewTripRepo() *TripRepo {
	return &TripRepo{trips: make(map[string]*domain.Trip)}
}

var _ ports.TripRepository = (*TripRepo)(nil)

func (r *TripRepo) Create(ctx context.Context, trip *domain.Trip) error {
	return r.CreateBatch(ctx, []*domain.Trip{trip})
}

func (r *TripRepo) CreateBatch(_ context.Context, trips []*domain.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range trips {
		if _, ok := r.trips[t.ID]; ok {
			return fmt.Errorf("trip %s already exists", t.ID)
		}
	}
	for _, t := range trips {
		t.Version = 1
		r.trips[t.ID] = t.Clone()
	}
	return nil
}

func (r *TripRepo) GetByID(_ context.Context, id string) (*domain.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trips[id]
	if !ok {
		return nil, fmt.Errorf("trip %s: %w", id, domain.ErrNotFound)
	}
	return t.Clone(), nil
}

func (r *TripRepo) Update(_ context.Context, trip *domain.Trip, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.trips[trip.ID]
	if !ok {
		return fmt.Errorf("trip %s: %w", trip.ID, domain.ErrNotFound)
	}
	if cur.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	trip.Version = expectedVersion + 1
	r.trips[trip.ID] = trip.Clone()
	return nil
}

func (r *TripRepo) ListByOperator(_ context.Context, operatorID string, filter ports.TripFilter, offset, limit int) ([]domain.Trip, int, error) {
	r.mu.RLock()
	var matched []*domain.Trip
	for _, t := range r.trips {
		if t.OperatorID != operatorID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.DepartsAfter != nil && t.DepartureTime.Before(*filter.DepartsAfter) {
			continue
		}
		if filter.DepartsBefore != nil && !t.DepartureTime.Before(*filter.DepartsBefore) {
			continue
		}
		matched = append(matched, t.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].DepartureTime.Equal(matched[j].DepartureTime) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].DepartureTime.Before(matched[j].DepartureTime)
	})

	total := len(matched)
	if offset >= total {
		return []domain.Trip{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	out := make([]domain.Trip, 0, end-offset)
	for _, t := range matched[offset:end] {
		out = append(out, *t)
	}
	return out, total, nil
}
