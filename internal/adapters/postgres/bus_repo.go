package postgres

import (
	"context"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
)

// BusRepo implements ports.BusRepository.
type BusRepo struct {
	db *DB
}

func NewBusRepo(db *DB) *BusRepo { return &BusRepo{db: db} }

var _ ports.BusRepository = (*BusRepo)(nil)

// GetWithSeatLayout returns the bus with LayoutSeats = 0 when no layout
// has been generated for it yet.
func (r *BusRepo) GetWithSeatLayout(ctx context.Context, id string) (domain.BusInfo, error) {
	var (
		b      domain.BusInfo
		status string
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT b.id, b.operator_id, b.plate_number, b.status, COALESCE(l.total_seats, 0)
		FROM buses b
		LEFT JOIN bus_seat_layouts l ON l.bus_id = b.id
		WHERE b.id = $1
	`, id).Scan(&b.ID, &b.OperatorID, &b.PlateNumber, &status, &b.LayoutSeats)
	if err != nil {
		return domain.BusInfo{}, notFound("bus", id, err)
	}
	b.Status = domain.BusStatus(status)
	return b, nil
}
