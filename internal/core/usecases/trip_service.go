package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
	"github.com/samirrijal/busseat/internal/pkg/clock"
	"github.com/samirrijal/busseat/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/busseat/internal/core/usecases")

// errNoChange lets a mutation skip the write when it changed nothing.
var errNoChange = errors.New("no change")

// TripServiceOptions tunes a TripService. Zero values pick the defaults.
type TripServiceOptions struct {
	MaxRetries     int           // optimistic write retries per operation (default 16)
	HoldTTL        time.Duration // seat hold lifetime when the caller gives none (default 15m)
	NotifyTimeout  time.Duration // budget for one status notification (default 5s)
	CacheTTL       time.Duration // trip read cache lifetime (default 30s)
	Location       *time.Location
	DefaultPricing *domain.PricingConfig
	NewID          func() string
	Logger         *slog.Logger
}

func (o *TripServiceOptions) withDefaults() {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 16
	}
	if o.HoldTTL <= 0 {
		o.HoldTTL = 15 * time.Minute
	}
	if o.NotifyTimeout <= 0 {
		o.NotifyTimeout = 5 * time.Second
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 30 * time.Second
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.DefaultPricing == nil {
		cfg := domain.DefaultPricingConfig()
		o.DefaultPricing = &cfg
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// TripService exposes the trip lifecycle and seat inventory operations.
// Every write goes through the repository's version check so concurrent
// callers on the same trip are serialised.
type TripService struct {
	trips     ports.TripRepository
	validator *TripValidator
	holds     ports.SeatHoldService
	notifier  ports.NotificationDispatcher
	cache     ports.CacheService
	clock     clock.Clock
	opts      TripServiceOptions
	log       *slog.Logger

	inflight sync.WaitGroup
	// latest version this process has committed, per trip id
	committed sync.Map
}

// NewTripService creates a new TripService. holds, notifier and cache may be nil.
func NewTripService(
	trips ports.TripRepository,
	validator *TripValidator,
	holds ports.SeatHoldService,
	notifier ports.NotificationDispatcher,
	cache ports.CacheService,
	clk clock.Clock,
	opts TripServiceOptions,
) *TripService {
	if clk == nil {
		clk = clock.Real{}
	}
	opts.withDefaults()
	return &TripService{
		trips:     trips,
		validator: validator,
		holds:     holds,
		notifier:  notifier,
		cache:     cache,
		clock:     clk,
		opts:      opts,
		log:       opts.Logger.With("component", "trip_service"),
	}
}

// TripSpec describes a trip to schedule.
type TripSpec struct {
	RouteID              string                `json:"route_id"`
	BusID                string                `json:"bus_id"`
	DriverID             string                `json:"driver_id"`
	TripManagerID        string                `json:"trip_manager_id"`
	DepartureTime        time.Time             `json:"departure_time"`
	ArrivalTime          time.Time             `json:"arrival_time"`
	BasePrice            int64                 `json:"base_price"`
	Discount             float64               `json:"discount"`
	DynamicPricingConfig *domain.PricingConfig `json:"dynamic_pricing_config,omitempty"`
}

func (s TripSpec) refs() TripRefs {
	return TripRefs{RouteID: s.RouteID, BusID: s.BusID, DriverID: s.DriverID, TripManagerID: s.TripManagerID}
}

// Recurrence repeats a TripSpec every IntervalDays days.
type Recurrence struct {
	Occurrences  int `json:"occurrences"`
	IntervalDays int `json:"interval_days"`
}

// MaxOccurrences caps a single recurring schedule.
const MaxOccurrences = 90

// TripPatch holds the editable fields of a trip. Nil fields are left alone.
type TripPatch struct {
	RouteID              *string               `json:"route_id,omitempty"`
	BusID                *string               `json:"bus_id,omitempty"`
	DriverID             *string               `json:"driver_id,omitempty"`
	TripManagerID        *string               `json:"trip_manager_id,omitempty"`
	DepartureTime        *time.Time            `json:"departure_time,omitempty"`
	ArrivalTime          *time.Time            `json:"arrival_time,omitempty"`
	BasePrice            *int64                `json:"base_price,omitempty"`
	Discount             *float64              `json:"discount,omitempty"`
	DynamicPricingConfig *domain.PricingConfig `json:"dynamic_pricing_config,omitempty"`
}

// CreateTrip validates the references and stores a new scheduled trip.
func (s *TripService) CreateTrip(ctx context.Context, operatorID string, spec TripSpec) (trip *domain.Trip, err error) {
	ctx, span := tracer.Start(ctx, "TripService.CreateTrip", trace.WithAttributes(attribute.String("operator.id", operatorID)))
	defer func() { endSpan(span, err) }()

	now := s.clock.Now()
	if err := s.validateSpec(operatorID, spec, now); err != nil {
		return nil, err
	}
	refs, err := s.validator.ValidateReferences(ctx, operatorID, spec.refs(), RefAll)
	if err != nil {
		return nil, err
	}

	trip = s.buildTrip(operatorID, spec, refs, now)
	if err := s.trips.Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	span.SetAttributes(attribute.String("trip.id", trip.ID))
	return trip, nil
}

// CreateRecurringTrips schedules the same trip several times, IntervalDays
// apart, under one recurring group. All trips are stored or none are.
func (s *TripService) CreateRecurringTrips(ctx context.Context, operatorID string, spec TripSpec, rec Recurrence) (trips []*domain.Trip, err error) {
	ctx, span := tracer.Start(ctx, "TripService.CreateRecurringTrips", trace.WithAttributes(
		attribute.String("operator.id", operatorID),
		attribute.Int("recurrence.occurrences", rec.Occurrences),
	))
	defer func() { endSpan(span, err) }()

	if rec.Occurrences < 1 || rec.Occurrences > MaxOccurrences {
		return nil, domain.NewValidationError("occurrences", "must be between 1 and %d", MaxOccurrences)
	}
	if rec.IntervalDays < 1 {
		return nil, domain.NewValidationError("interval_days", "must be at least 1")
	}

	now := s.clock.Now()
	if err := s.validateSpec(operatorID, spec, now); err != nil {
		return nil, err
	}
	refs, err := s.validator.ValidateReferences(ctx, operatorID, spec.refs(), RefAll)
	if err != nil {
		return nil, err
	}

	groupID := s.opts.NewID()
	trips = make([]*domain.Trip, 0, rec.Occurrences)
	for i := 0; i < rec.Occurrences; i++ {
		occ := spec
		occ.DepartureTime = spec.DepartureTime.AddDate(0, 0, i*rec.IntervalDays)
		occ.ArrivalTime = spec.ArrivalTime.AddDate(0, 0, i*rec.IntervalDays)
		trip := s.buildTrip(operatorID, occ, refs, now)
		trip.IsRecurring = true
		trip.RecurringGroupID = groupID
		trips = append(trips, trip)
	}

	if err := s.trips.CreateBatch(ctx, trips); err != nil {
		return nil, fmt.Errorf("create recurring trips: %w", err)
	}
	return trips, nil
}

func (s *TripService) validateSpec(operatorID string, spec TripSpec, now time.Time) error {
	required := []struct{ field, value string }{
		{"operator_id", operatorID},
		{"route_id", spec.RouteID},
		{"bus_id", spec.BusID},
		{"driver_id", spec.DriverID},
		{"trip_manager_id", spec.TripManagerID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.NewValidationError(r.field, "is required")
		}
	}
	if err := validateSchedule(spec.DepartureTime, spec.ArrivalTime); err != nil {
		return err
	}
	if !spec.DepartureTime.After(now) {
		return domain.NewValidationError("departure_time", "must be in the future")
	}
	if err := validatePrice(spec.BasePrice, spec.Discount); err != nil {
		return err
	}
	if spec.DynamicPricingConfig != nil {
		return spec.DynamicPricingConfig.Validate()
	}
	return nil
}

func validateSchedule(departure, arrival time.Time) error {
	if departure.IsZero() {
		return domain.NewValidationError("departure_time", "is required")
	}
	if !arrival.After(departure) {
		return domain.NewValidationError("arrival_time", "must be after departure_time")
	}
	return nil
}

func validatePrice(base int64, discount float64) error {
	if base < 0 {
		return domain.NewValidationError("base_price", "must not be negative")
	}
	if discount < 0 || discount > 100 {
		return domain.NewValidationError("discount", "must be between 0 and 100")
	}
	return nil
}

func (s *TripService) buildTrip(operatorID string, spec TripSpec, refs ValidatedRefs, now time.Time) *domain.Trip {
	trip := domain.NewTrip(s.opts.NewID(), refs.Bus.LayoutSeats, refs.Route.StopCount, now)
	trip.OperatorID = operatorID
	trip.RouteID = spec.RouteID
	trip.BusID = spec.BusID
	trip.DriverID = spec.DriverID
	trip.TripManagerID = spec.TripManagerID
	trip.DepartureTime = spec.DepartureTime.UTC()
	trip.ArrivalTime = spec.ArrivalTime.UTC()
	trip.BasePrice = spec.BasePrice
	trip.Discount = spec.Discount
	if spec.DynamicPricingConfig != nil {
		trip.DynamicPricingConfig = *spec.DynamicPricingConfig
	} else {
		trip.DynamicPricingConfig = *s.opts.DefaultPricing
	}
	trip.DynamicPricingConfig.PeakHoursPremium.PeakHours = append([]int(nil), trip.DynamicPricingConfig.PeakHoursPremium.PeakHours...)
	trip.RecomputeFinalPrice()
	return trip
}

// UpdateTrip edits schedule, price and references of a trip that has not
// finished. References may only change while the trip is scheduled and has
// no booked seats; only the changed ones are checked again.
func (s *TripService) UpdateTrip(ctx context.Context, tripID string, patch TripPatch) (trip *domain.Trip, err error) {
	ctx, span := tracer.Start(ctx, "TripService.UpdateTrip", trace.WithAttributes(attribute.String("trip.id", tripID)))
	defer func() { endSpan(span, err) }()

	return s.mutate(ctx, "update_trip", tripID, func(t *domain.Trip) error {
		return s.applyPatch(ctx, t, patch)
	})
}

func (s *TripService) applyPatch(ctx context.Context, t *domain.Trip, p TripPatch) error {
	if t.IsTerminal() {
		return domain.NewValidationError("status", "trip is %s and can no longer change", t.Status)
	}

	refs := TripRefs{RouteID: t.RouteID, BusID: t.BusID, DriverID: t.DriverID, TripManagerID: t.TripManagerID}
	var mask RefMask
	changed := func(cur *string, next *string, bit RefMask) {
		if next != nil && *next != *cur {
			*cur = *next
			mask |= bit
		}
	}
	changed(&refs.RouteID, p.RouteID, RefRoute)
	changed(&refs.BusID, p.BusID, RefBus)
	changed(&refs.DriverID, p.DriverID, RefDriver)
	changed(&refs.TripManagerID, p.TripManagerID, RefTripManager)

	if mask != 0 {
		if t.Status != domain.TripStatusScheduled {
			return domain.NewValidationError("status", "references can only change while the trip is scheduled")
		}
		if mask&(RefRoute|RefBus) != 0 && len(t.BookedSeats) > 0 {
			return domain.NewValidationError("booked_seats", "route and bus cannot change while %d seats are booked", len(t.BookedSeats))
		}
		validated, err := s.validator.ValidateReferences(ctx, t.OperatorID, refs, mask)
		if err != nil {
			return err
		}
		if mask&RefBus != 0 && validated.Bus.LayoutSeats != t.TotalSeats {
			return domain.NewValidationError("bus_id", "bus has %d seats, trip has %d", validated.Bus.LayoutSeats, t.TotalSeats)
		}
		if mask&RefRoute != 0 {
			t.TotalStops = validated.Route.StopCount
		}
		t.RouteID, t.BusID, t.DriverID, t.TripManagerID = refs.RouteID, refs.BusID, refs.DriverID, refs.TripManagerID
	}

	if p.DepartureTime != nil || p.ArrivalTime != nil {
		if t.Status != domain.TripStatusScheduled {
			return domain.NewValidationError("status", "schedule can only change while the trip is scheduled")
		}
		dep, arr := t.DepartureTime, t.ArrivalTime
		if p.DepartureTime != nil {
			dep = p.DepartureTime.UTC()
		}
		if p.ArrivalTime != nil {
			arr = p.ArrivalTime.UTC()
		}
		if err := validateSchedule(dep, arr); err != nil {
			return err
		}
		t.DepartureTime, t.ArrivalTime = dep, arr
	}

	if p.BasePrice != nil || p.Discount != nil {
		base, discount := t.BasePrice, t.Discount
		if p.BasePrice != nil {
			base = *p.BasePrice
		}
		if p.Discount != nil {
			discount = *p.Discount
		}
		if err := validatePrice(base, discount); err != nil {
			return err
		}
		t.BasePrice, t.Discount = base, discount
		t.RecomputeFinalPrice()
	}

	if p.DynamicPricingConfig != nil {
		if err := p.DynamicPricingConfig.Validate(); err != nil {
			return err
		}
		t.DynamicPricingConfig = *p.DynamicPricingConfig
	}

	t.UpdatedAt = s.clock.Now()
	return nil
}

// GetByID returns a trip, served from cache when possible.
func (s *TripService) GetByID(ctx context.Context, tripID string) (*domain.Trip, error) {
	key := tripCacheKey(tripID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var trip domain.Trip
			if err := json.Unmarshal(data, &trip); err == nil {
				metrics.CacheHits.WithLabelValues("trip").Inc()
				return &trip, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("trip").Inc()
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && !s.superseded(tripID, trip.Version) {
		if data, err := json.Marshal(trip); err == nil {
			_ = s.cache.Set(ctx, key, data, int(s.opts.CacheTTL/time.Second))
			// A write that landed between the load and the Set may have
			// deleted the key before we filled it.
			if s.superseded(tripID, trip.Version) {
				_ = s.cache.Delete(ctx, key)
			}
		}
	}
	return trip, nil
}

// ListByOperator pages through an operator's trips ordered by departure.
func (s *TripService) ListByOperator(ctx context.Context, operatorID string, filter ports.TripFilter, offset, limit int) ([]domain.Trip, int, error) {
	if strings.TrimSpace(operatorID) == "" {
		return nil, 0, domain.NewValidationError("operator_id", "is required")
	}
	if filter.Status != "" {
		if _, err := domain.ParseTripStatus(string(filter.Status)); err != nil {
			return nil, 0, err
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.trips.ListByOperator(ctx, operatorID, filter, offset, limit)
}

// WaitNotifications blocks until in-flight status notifications finish.
func (s *TripService) WaitNotifications() {
	s.inflight.Wait()
}

// mutate runs fn against the latest stored trip and writes the result with
// a version check, reloading and retrying when another writer got there
// first. fn must be safe to run more than once.
func (s *TripService) mutate(ctx context.Context, op, tripID string, fn func(*domain.Trip) error) (*domain.Trip, error) {
	for attempt := 0; ; attempt++ {
		trip, err := s.trips.GetByID(ctx, tripID)
		if err != nil {
			return nil, fmt.Errorf("load trip %s: %w", tripID, err)
		}
		expected := trip.Version

		if err := fn(trip); err != nil {
			if errors.Is(err, errNoChange) {
				return trip, nil
			}
			return nil, err
		}

		err = s.trips.Update(ctx, trip, expected)
		if err == nil {
			s.markCommitted(tripID, trip.Version)
			s.invalidate(ctx, tripID)
			return trip, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, fmt.Errorf("save trip %s: %w", tripID, err)
		}

		metrics.VersionConflicts.WithLabelValues(op).Inc()
		if attempt >= s.opts.MaxRetries {
			return nil, fmt.Errorf("%s on trip %s after %d attempts: %w", op, tripID, attempt+1, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

func (s *TripService) invalidate(ctx context.Context, tripID string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, tripCacheKey(tripID))
	}
}

func (s *TripService) markCommitted(tripID string, version int64) {
	for {
		cur, loaded := s.committed.LoadOrStore(tripID, version)
		if !loaded || cur.(int64) >= version {
			return
		}
		if s.committed.CompareAndSwap(tripID, cur, version) {
			return
		}
	}
}

func (s *TripService) superseded(tripID string, version int64) bool {
	cur, ok := s.committed.Load(tripID)
	return ok && cur.(int64) > version
}

func tripCacheKey(id string) string { return "trips:id:" + id }

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
