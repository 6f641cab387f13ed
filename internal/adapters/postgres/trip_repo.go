package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
)

// TripRepo implements ports.TripRepository. Each trip is one JSONB
// document; Update is a compare-and-swap on the version column.
type TripRepo struct {
	db *DB
}

func NewTripRepo(db *DB) *TripRepo {
	return &TripRepo{db: db}
}

var _ ports.TripRepository = (*TripRepo)(nil)

const insertTrip = `
	INSERT INTO trips (id, operator_id, route_id, bus_id, status, departure_time, recurring_group_id, version, doc, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), 1, $8, $9, $10)
`

func (r *TripRepo) Create(ctx context.Context, trip *domain.Trip) error {
	trip.Version = 1
	doc, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("encode trip: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, insertTrip,
		trip.ID, trip.OperatorID, trip.RouteID, trip.BusID, string(trip.Status), trip.DepartureTime,
		trip.RecurringGroupID, doc, trip.CreatedAt, trip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert trip %s: %w", trip.ID, err)
	}
	return nil
}

// CreateBatch inserts every trip in one transaction.
func (r *TripRepo) CreateBatch(ctx context.Context, trips []*domain.Trip) error {
	batch := &pgx.Batch{}
	for _, t := range trips {
		t.Version = 1
		doc, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode trip: %w", err)
		}
		batch.Queue(insertTrip,
			t.ID, t.OperatorID, t.RouteID, t.BusID, string(t.Status), t.DepartureTime,
			t.RecurringGroupID, doc, t.CreatedAt, t.UpdatedAt)
	}

	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, batch)
		defer br.Close()
		for _, t := range trips {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("insert trip %s: %w", t.ID, err)
			}
		}
		return br.Close()
	})
}

func (r *TripRepo) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	var (
		doc     []byte
		version int64
	)
	err := r.db.Pool.QueryRow(ctx, `SELECT doc, version FROM trips WHERE id = $1`, id).Scan(&doc, &version)
	if err != nil {
		return nil, notFound("trip", id, err)
	}
	return decodeTrip(doc, version)
}

func (r *TripRepo) Update(ctx context.Context, trip *domain.Trip, expectedVersion int64) error {
	next := *trip
	next.Version = expectedVersion + 1
	doc, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode trip: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE trips
		SET status = $3, route_id = $4, bus_id = $5, departure_time = $6,
		    doc = $7, version = version + 1, updated_at = $8
		WHERE id = $1 AND version = $2
	`, trip.ID, expectedVersion, string(trip.Status), trip.RouteID, trip.BusID, trip.DepartureTime, doc, trip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update trip %s: %w", trip.ID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id = $1)`, trip.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check trip %s: %w", trip.ID, err)
		}
		if !exists {
			return fmt.Errorf("trip %s: %w", trip.ID, domain.ErrNotFound)
		}
		return domain.ErrVersionConflict
	}
	trip.Version = next.Version
	return nil
}

func (r *TripRepo) ListByOperator(ctx context.Context, operatorID string, filter ports.TripFilter, offset, limit int) ([]domain.Trip, int, error) {
	where := []string{"operator_id = $1"}
	args := []any{operatorID}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.DepartsAfter != nil {
		args = append(args, *filter.DepartsAfter)
		where = append(where, fmt.Sprintf("departure_time >= $%d", len(args)))
	}
	if filter.DepartsBefore != nil {
		args = append(args, *filter.DepartsBefore)
		where = append(where, fmt.Sprintf("departure_time < $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM trips WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count trips: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT doc, version FROM trips
		WHERE %s
		ORDER BY departure_time, id
		LIMIT $%d OFFSET $%d
	`, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	trips := make([]domain.Trip, 0, limit)
	for rows.Next() {
		var (
			doc     []byte
			version int64
		)
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, 0, err
		}
		t, err := decodeTrip(doc, version)
		if err != nil {
			return nil, 0, err
		}
		trips = append(trips, *t)
	}
	return trips, total, rows.Err()
}

// decodeTrip trusts the version column over the copy inside the document.
func decodeTrip(doc []byte, version int64) (*domain.Trip, error) {
	var t domain.Trip
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, fmt.Errorf("decode trip: %w", err)
	}
	t.Version = version
	if t.BookedSeats == nil {
		t.BookedSeats = []domain.BookedSeat{}
	}
	if t.Journey.StatusHistory == nil {
		t.Journey.StatusHistory = []domain.JourneyEvent{}
	}
	return &t, nil
}
