package postgres

import (
	"context"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
)

// RouteRepo implements ports.RouteRepository.
type RouteRepo struct {
	db *DB
}

func NewRouteRepo(db *DB) *RouteRepo { return &RouteRepo{db: db} }

var _ ports.RouteRepository = (*RouteRepo)(nil)

func (r *RouteRepo) GetByID(ctx context.Context, id string) (domain.RouteInfo, error) {
	var rt domain.RouteInfo
	err := r.db.Pool.QueryRow(ctx, `
		SELECT r.id, r.operator_id, r.name, r.is_active,
		       (SELECT count(*) FROM route_stops s WHERE s.route_id = r.id)
		FROM routes r WHERE r.id = $1
	`, id).Scan(&rt.ID, &rt.OperatorID, &rt.Name, &rt.IsActive, &rt.StopCount)
	if err != nil {
		return domain.RouteInfo{}, notFound("route", id, err)
	}
	return rt, nil
}
