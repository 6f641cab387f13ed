package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
)

// --- Mock master-data repositories ---

type mockRouteRepo struct {
	getByIDFn func(ctx context.Context, id string) (domain.RouteInfo, error)
	calls     int
}

func (m *mockRouteRepo) GetByID(ctx context.Context, id string) (domain.RouteInfo, error) {
	m.calls++
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return domain.RouteInfo{}, domain.ErrNotFound
}

type mockBusRepo struct {
	getFn func(ctx context.Context, id string) (domain.BusInfo, error)
	calls int
}

func (m *mockBusRepo) GetWithSeatLayout(ctx context.Context, id string) (domain.BusInfo, error) {
	m.calls++
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.BusInfo{}, domain.ErrNotFound
}

type mockEmployeeRepo struct {
	getByIDFn func(ctx context.Context, id string) (domain.Employee, error)
	calls     int
}

func (m *mockEmployeeRepo) GetByID(ctx context.Context, id string) (domain.Employee, error) {
	m.calls++
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return domain.Employee{}, domain.ErrNotFound
}

var (
	_ ports.RouteRepository    = (*mockRouteRepo)(nil)
	_ ports.BusRepository      = (*mockBusRepo)(nil)
	_ ports.EmployeeRepository = (*mockEmployeeRepo)(nil)
)

// --- Mock NotificationDispatcher ---

type mockNotifier struct {
	mu     sync.Mutex
	events []domain.TripStatusEvent
	err    error
}

func (m *mockNotifier) NotifyTripStatusChange(ctx context.Context, event domain.TripStatusEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockNotifier) received() []domain.TripStatusEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TripStatusEvent(nil), m.events...)
}

// --- Mock CacheService ---

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
	// beforeSet runs outside the lock ahead of every Set.
	beforeSet func()
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	if m.beforeSet != nil {
		m.beforeSet()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// --- TripRepository wrapper that loses the first N writes ---

type racyTripRepo struct {
	ports.TripRepository
	mu        sync.Mutex
	conflicts int
}

func (r *racyTripRepo) Update(ctx context.Context, trip *domain.Trip, expectedVersion int64) error {
	r.mu.Lock()
	if r.conflicts > 0 {
		r.conflicts--
		r.mu.Unlock()
		return domain.ErrVersionConflict
	}
	r.mu.Unlock()
	return r.TripRepository.Update(ctx, trip, expectedVersion)
}
