package ports

import (
	"context"
	"time"

	"github.com/samirrijal/busseat/internal/core/domain"
)

// TripFilter narrows ListByOperator results.
type TripFilter struct {
	Status        domain.TripStatus // empty matches every status
	DepartsAfter  *time.Time
	DepartsBefore *time.Time
}

// TripRepository persists trip documents.
//
// Update is a compare-and-swap on Trip.Version: it succeeds only when the
// stored version equals expectedVersion, stores trip with version
// expectedVersion+1 and sets trip.Version accordingly. A mismatch returns
// domain.ErrVersionConflict; a missing trip returns domain.ErrNotFound.
type TripRepository interface {
	Create(ctx context.Context, trip *domain.Trip) error
	CreateBatch(ctx context.Context, trips []*domain.Trip) error
	GetByID(ctx context.Context, id string) (*domain.Trip, error)
	Update(ctx context.Context, trip *domain.Trip, expectedVersion int64) error
	ListByOperator(ctx context.Context, operatorID string, filter TripFilter, offset, limit int) ([]domain.Trip, int, error)
}

// RouteRepository reads routes owned by operators.
type RouteRepository interface {
	GetByID(ctx context.Context, id string) (domain.RouteInfo, error)
}

// BusRepository reads buses together with their seat layout size.
type BusRepository interface {
	GetWithSeatLayout(ctx context.Context, id string) (domain.BusInfo, error)
}

// EmployeeRepository reads drivers and trip managers.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (domain.Employee, error)
}
