package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/busseat/internal/adapters/memory"
	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
	"github.com/samirrijal/busseat/internal/core/usecases"
	"github.com/samirrijal/busseat/internal/pkg/clock"
)

type serviceFixture struct {
	clock    *clock.Fake
	trips    *memory.TripRepo
	dir      *memory.Directory
	holds    *memory.SeatHolds
	notifier *mockNotifier
	cache    *mockCache
	svc      *usecases.TripService
}

func newServiceFixture(t *testing.T, opts usecases.TripServiceOptions) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		clock:    clock.NewFake(now),
		trips:    memory.NewTripRepo(),
		dir:      memory.NewDirectory(),
		notifier: &mockNotifier{},
		cache:    newMockCache(),
	}
	f.holds = memory.NewSeatHolds(f.clock)

	expiry := now.AddDate(2, 0, 0)
	f.dir.PutRoute(domain.RouteInfo{ID: "r-1", OperatorID: "op-1", Name: "Hanoi - Hai Phong", IsActive: true, StopCount: 4})
	f.dir.PutRoute(domain.RouteInfo{ID: "r-2", OperatorID: "op-1", Name: "Hanoi - Ninh Binh", IsActive: true, StopCount: 6})
	f.dir.PutBus(domain.BusInfo{ID: "b-1", OperatorID: "op-1", PlateNumber: "29B-123.45", Status: domain.BusStatusActive, LayoutSeats: 40})
	f.dir.PutBus(domain.BusInfo{ID: "b-2", OperatorID: "op-1", PlateNumber: "29B-678.90", Status: domain.BusStatusActive, LayoutSeats: 40})
	f.dir.PutBus(domain.BusInfo{ID: "b-small", OperatorID: "op-1", PlateNumber: "29B-111.11", Status: domain.BusStatusActive, LayoutSeats: 16})
	f.dir.PutEmployee(domain.Employee{ID: "drv-1", OperatorID: "op-1", Role: domain.RoleDriver, Status: domain.EmployeeActive, LicenseExpiry: &expiry})
	f.dir.PutEmployee(domain.Employee{ID: "drv-2", OperatorID: "op-1", Role: domain.RoleDriver, Status: domain.EmployeeActive, LicenseExpiry: &expiry})
	f.dir.PutEmployee(domain.Employee{ID: "mgr-1", OperatorID: "op-1", Role: domain.RoleTripManager, Status: domain.EmployeeActive})

	validator := usecases.NewTripValidator(f.dir.Routes(), f.dir.Buses(), f.dir.Employees(), f.clock)
	f.svc = usecases.NewTripService(f.trips, validator, f.holds, f.notifier, f.cache, f.clock, opts)
	return f
}

func (f *serviceFixture) spec() usecases.TripSpec {
	departure := now.Add(52 * time.Hour) // Friday 10:00 UTC
	return usecases.TripSpec{
		RouteID:       "r-1",
		BusID:         "b-1",
		DriverID:      "drv-1",
		TripManagerID: "mgr-1",
		DepartureTime: departure,
		ArrivalTime:   departure.Add(3 * time.Hour),
		BasePrice:     250000,
	}
}

func (f *serviceFixture) createTrip(t *testing.T) *domain.Trip {
	t.Helper()
	trip, err := f.svc.CreateTrip(context.Background(), "op-1", f.spec())
	require.NoError(t, err)
	return trip
}

func (f *serviceFixture) stored(t *testing.T, id string) *domain.Trip {
	t.Helper()
	trip, err := f.trips.GetByID(context.Background(), id)
	require.NoError(t, err)
	return trip
}

func TestTripService_CreateTrip(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	spec := f.spec()
	spec.Discount = 10

	trip, err := f.svc.CreateTrip(context.Background(), "op-1", spec)

	require.NoError(t, err)
	assert.NotEmpty(t, trip.ID)
	assert.Equal(t, 40, trip.TotalSeats)
	assert.Equal(t, 40, trip.AvailableSeats)
	assert.Equal(t, 4, trip.TotalStops)
	assert.Equal(t, domain.TripStatusScheduled, trip.Status)
	assert.Equal(t, domain.JourneyPreparing, trip.Journey.CurrentStatus)
	assert.Equal(t, -1, trip.Journey.CurrentStopIndex)
	assert.Equal(t, int64(225000), trip.FinalPrice)
	assert.Equal(t, int64(1), trip.Version)
	assert.Equal(t, domain.DefaultPricingConfig(), trip.DynamicPricingConfig)
	assert.NoError(t, f.stored(t, trip.ID).CheckInvariants())
}

func TestTripService_CreateTrip_Rejections(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})

	past := f.spec()
	past.DepartureTime = now.Add(-time.Hour)
	past.ArrivalTime = now.Add(time.Hour)
	_, err := f.svc.CreateTrip(context.Background(), "op-1", past)
	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)

	backwards := f.spec()
	backwards.ArrivalTime = backwards.DepartureTime
	_, err = f.svc.CreateTrip(context.Background(), "op-1", backwards)
	assert.ErrorAs(t, err, &vErr)

	unknownBus := f.spec()
	unknownBus.BusID = "b-404"
	_, err = f.svc.CreateTrip(context.Background(), "op-1", unknownBus)
	var depErr *domain.DependencyUnavailableError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "bus", depErr.Entity)

	_, total, err := f.trips.ListByOperator(context.Background(), "op-1", ports.TripFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total, "rejected trips must not be stored")
}

func TestTripService_CreateRecurringTrips(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	spec := f.spec()

	trips, err := f.svc.CreateRecurringTrips(context.Background(), "op-1", spec, usecases.Recurrence{Occurrences: 3, IntervalDays: 7})

	require.NoError(t, err)
	require.Len(t, trips, 3)
	group := trips[0].RecurringGroupID
	assert.NotEmpty(t, group)
	for i, trip := range trips {
		assert.True(t, trip.IsRecurring)
		assert.Equal(t, group, trip.RecurringGroupID)
		assert.Equal(t, spec.DepartureTime.AddDate(0, 0, 7*i), trip.DepartureTime)
	}

	_, err = f.svc.CreateRecurringTrips(context.Background(), "op-1", spec, usecases.Recurrence{Occurrences: usecases.MaxOccurrences + 1, IntervalDays: 1})
	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestTripService_BookSeats_RejectsDoubleBooking(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	trip := f.createTrip(t)
	ctx := context.Background()

	require.NoError(t, f.svc.BookSeats(ctx, trip.ID, []string{"A1", "A2"}, []string{"Lan", "Minh"}, "bk1"))
	assert.Equal(t, 38, f.stored(t, trip.ID).AvailableSeats)

	err := f.svc.BookSeats(ctx, trip.ID, []string{"A1"}, nil, "bk2")
	var conflict *domain.SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"A1"}, conflict.Seats)

	stored := f.stored(t, trip.ID)
	assert.Equal(t, 38, stored.AvailableSeats)
	assert.Equal(t, int64(2), stored.Version, "a rejected booking must not write")
}

func TestTripService_BookSeats_RespectsHolds(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	trip := f.createTrip(t)
	ctx := context.Background()

	_, err := f.svc.HoldSeats(ctx, trip.ID, "bk-alice", []string{"C1", "C2"}, 0)
	require.NoError(t, err)

	err = f.svc.BookSeats(ctx, trip.ID, []string{"C2"}, nil, "bk-bob")
	var conflict *domain.SeatConflictError
	require.ErrorAs(t, err, &conflict)

	require.NoError(t, f.svc.BookSeats(ctx, trip.ID, []string{"C1", "C2"}, nil, "bk-alice"))

	held, err := f.holds.ListHeld(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, held, "holds are released once the seats are sold")
}

func TestTripService_ExpiredHoldDoesNotBlock(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{HoldTTL: 15 * time.Minute})
	trip := f.createTrip(t)
	ctx := context.Background()

	_, err := f.svc.HoldSeats(ctx, trip.ID, "bk-alice", []string{"D1"}, 0)
	require.NoError(t, err)
	f.clock.Advance(16 * time.Minute)

	require.NoError(t, f.svc.BookSeats(ctx, trip.ID, []string{"D1"}, nil, "bk-bob"))

	m, err := f.svc.SeatMap(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, m.Held)
	assert.Equal(t, 39, m.AvailableSeats)
}

func TestTripService_HoldSeats_RejectsBookedSeats(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	trip := f.createTrip(t)
	ctx := context.Background()
	require.NoError(t, f.svc.BookSeats(ctx, trip.ID, []string{"E1"}, nil, "bk1"))

	_, err := f.svc.HoldSeats(ctx, trip.ID, "bk2", []string{"E1", "E2"}, time.Minute)

	var conflict *domain.SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"E1"}, conflict.Seats)
}

func TestTripService_ConcurrentBookingsNeverOversell(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{MaxRetries: 1000})
	trip := f.createTrip(t)
	ctx := context.Background()

	const workers = 64
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners = map[string][]string{}
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bookingID := fmt.Sprintf("bk-%02d", i)
			seats := []string{fmt.Sprintf("S%d", i%50), fmt.Sprintf("S%d", (i+7)%50)}
			err := f.svc.BookSeats(ctx, trip.ID, seats, nil, bookingID)

			var (
				conflict *domain.SeatConflictError
				capacity *domain.InsufficientCapacityError
			)
			switch {
			case err == nil:
				mu.Lock()
				winners[bookingID] = seats
				mu.Unlock()
			case errors.As(err, &conflict), errors.As(err, &capacity):
			default:
				t.Errorf("booking %s: unexpected error %v", bookingID, err)
			}
		}(i)
	}
	wg.Wait()

	stored := f.stored(t, trip.ID)
	require.NoError(t, stored.CheckInvariants())
	assert.Equal(t, 2*len(winners), len(stored.BookedSeats))
	assert.GreaterOrEqual(t, stored.AvailableSeats, 0)

	owner := map[string]string{}
	for _, b := range stored.BookedSeats {
		owner[b.SeatNumber] = b.BookingID
	}
	for bookingID, seats := range winners {
		for _, seat := range seats {
			assert.Equal(t, bookingID, owner[seat], "seat %s", seat)
		}
	}
}

func TestTripService_ConcurrentBookAndCancelKeepLedgerConsistent(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{MaxRetries: 1000})
	trip := f.createTrip(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(2)
		seat := fmt.Sprintf("K%d", i%8)
		go func(i int) {
			defer wg.Done()
			_ = f.svc.BookSeats(ctx, trip.ID, []string{seat}, nil, fmt.Sprintf("bk-%d", i))
		}(i)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.svc.CancelSeats(ctx, trip.ID, []string{seat}))
		}()
	}
	wg.Wait()

	assert.NoError(t, f.stored(t, trip.ID).CheckInvariants())
}

func TestTripService_RetriesVersionConflicts(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	trip := f.createTrip(t)

	racy := &racyTripRepo{TripRepository: f.trips, conflicts: 3}
	validator := usecases.NewTripValidator(f.dir.Routes(), f.dir.Buses(), f.dir.Employees(), f.clock)
	svc := usecases.NewTripService(racy, validator, nil, nil, nil, f.clock, usecases.TripServiceOptions{MaxRetries: 3})

	require.NoError(t, svc.BookSeats(context.Background(), trip.ID, []string{"A1"}, nil, "bk1"))

	racy.conflicts = 10
	err := svc.BookSeats(context.Background(), trip.ID, []string{"A2"}, nil, "bk2")
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.False(t, f.stored(t, trip.ID).IsSeatBooked("A2"))
}

func TestTripService_CancelSeats_IdempotentWithoutWrite(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	trip := f.createTrip(t)
	ctx := context.Background()
	require.NoError(t, f.svc.BookSeats(ctx, trip.ID, []string{"A1", "A2"}, nil, "bk1"))

	require.NoError(t, f.svc.CancelSeats(ctx, trip.ID, []string{"Z1"}))
	assert.Equal(t, int64(2), f.stored(t, trip.ID).Version)

	require.NoError(t, f.svc.CancelSeats(ctx, trip.ID, []string{"A1", "A2"}))
	assert.Equal(t, 40, f.stored(t, trip.ID).AvailableSeats)
}

func TestTripService_UpdateStatus_NotifiesAsync(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	trip := f.createTrip(t)

	res, err := f.svc.UpdateStatus(context.Background(), trip.ID, domain.TripStatusOngoing, domain.StatusChange{ActorID: "mgr-1"})
	require.NoError(t, err)
	assert.Equal(t, usecases.StatusResult{OldStatus: domain.TripStatusScheduled, NewStatus: domain.TripStatusOngoing}, res)

	f.svc.WaitNotifications()
	events := f.notifier.received()
	require.Len(t, events, 1)
	assert.Equal(t, trip.ID, events[0].TripID)
	assert.Equal(t, domain.TripStatusScheduled, events[0].OldStatus)
	assert.Equal(t, domain.TripStatusOngoing, events[0].NewStatus)
	assert.Equal(t, domain.JourneyCheckingTickets, events[0].JourneyStatus)
}

func TestTripService_UpdateStatus_NotificationFailureIsSwallowed(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	f.notifier.err = errors.New("broker down")
	trip := f.createTrip(t)

	_, err := f.svc.UpdateStatus(context.Background(), trip.ID, domain.TripStatusCancelled, domain.StatusChange{Reason: "storm", ActorID: "op-admin"})
	require.NoError(t, err)
	f.svc.WaitNotifications()

	stored := f.stored(t, trip.ID)
	assert.Equal(t, domain.TripStatusCancelled, stored.Status)
	assert.Equal(t, "storm", stored.CancelReason)
}

func TestTripService_UpdateStatus_CancelWithBookedSeats(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	trip := f.createTrip(t)
	ctx := context.Background()
	require.NoError(t, f.svc.BookSeats(ctx, trip.ID, []string{"A1"}, nil, "bk1"))

	_, err := f.svc.UpdateStatus(ctx, trip.ID, domain.TripStatusCancelled, domain.StatusChange{ActorID: "op-admin"})

	var tErr *domain.TransitionError
	require.ErrorAs(t, err, &tErr)
	assert.ErrorIs(t, err, domain.ErrTripHasBookings)
	f.svc.WaitNotifications()
	assert.Empty(t, f.notifier.received())
}

func TestTripService_UpdateStatus_IllegalEdge(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	trip := f.createTrip(t)

	_, err := f.svc.UpdateStatus(context.Background(), trip.ID, domain.TripStatusCompleted, domain.StatusChange{ActorID: "mgr-1"})

	var tErr *domain.TransitionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "scheduled", tErr.From)
	assert.Equal(t, "completed", tErr.To)
}

func TestTripService_UpdateJourneyStatus_AutoCompleteIsOneWrite(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	trip := f.createTrip(t)
	ctx := context.Background()

	steps := []domain.JourneyUpdate{
		{Status: domain.JourneyCheckingTickets},
		{Status: domain.JourneyInTransit},
		{Status: domain.JourneyAtStop, StopNumber: 1},
		{Status: domain.JourneyInTransit},
		{Status: domain.JourneyAtStop, StopNumber: 4},
	}
	for _, step := range steps {
		step.UpdatedBy = "mgr-1"
		_, err := f.svc.UpdateJourneyStatus(ctx, trip.ID, step)
		require.NoError(t, err, "step %s", step.Status)
	}
	before := f.stored(t, trip.ID).Version

	res, err := f.svc.UpdateJourneyStatus(ctx, trip.ID, domain.JourneyUpdate{Status: domain.JourneyInTransit, UpdatedBy: "mgr-1"})

	require.NoError(t, err)
	assert.Equal(t, domain.JourneyCompleted, res.NewStatus)
	assert.Equal(t, 4, res.CurrentStop)
	stored := f.stored(t, trip.ID)
	assert.Equal(t, domain.TripStatusCompleted, stored.Status)
	assert.Equal(t, before+1, stored.Version)

	f.svc.WaitNotifications()
	events := f.notifier.received()
	require.Len(t, events, 2, "scheduled->ongoing and ongoing->completed")
	var completed bool
	for _, ev := range events {
		completed = completed || (ev.OldStatus == domain.TripStatusOngoing && ev.NewStatus == domain.TripStatusCompleted)
	}
	assert.True(t, completed)
}

func TestTripService_UpdateTrip(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	trip := f.createTrip(t)
	ctx := context.Background()

	route, driver, price := "r-2", "drv-2", int64(300000)
	updated, err := f.svc.UpdateTrip(ctx, trip.ID, usecases.TripPatch{RouteID: &route, DriverID: &driver, BasePrice: &price})
	require.NoError(t, err)
	assert.Equal(t, "r-2", updated.RouteID)
	assert.Equal(t, 6, updated.TotalStops)
	assert.Equal(t, "drv-2", updated.DriverID)
	assert.Equal(t, int64(300000), updated.FinalPrice)

	small := "b-small"
	_, err = f.svc.UpdateTrip(ctx, trip.ID, usecases.TripPatch{BusID: &small})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "bus_id", vErr.Field)

	require.NoError(t, f.svc.BookSeats(ctx, trip.ID, []string{"A1"}, nil, "bk1"))
	other := "b-2"
	_, err = f.svc.UpdateTrip(ctx, trip.ID, usecases.TripPatch{BusID: &other})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "booked_seats", vErr.Field)

	back := "drv-1"
	updated, err = f.svc.UpdateTrip(ctx, trip.ID, usecases.TripPatch{DriverID: &back})
	require.NoError(t, err, "driver swaps are allowed on booked trips")
	assert.Equal(t, "drv-1", updated.DriverID)
	assert.Len(t, updated.BookedSeats, 1)

	missing := "drv-404"
	_, err = f.svc.UpdateTrip(ctx, trip.ID, usecases.TripPatch{DriverID: &missing})
	var depErr *domain.DependencyUnavailableError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "drv-404", depErr.ID)

	got, err := f.svc.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "drv-1", got.DriverID)
}

func TestTripService_GetByID_CachesAndInvalidates(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	trip := f.createTrip(t)
	ctx := context.Background()

	_, err := f.svc.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	_, cached := f.cache.data["trips:id:"+trip.ID]
	assert.True(t, cached)

	require.NoError(t, f.svc.BookSeats(ctx, trip.ID, []string{"A1"}, nil, "bk1"))
	_, cached = f.cache.data["trips:id:"+trip.ID]
	assert.False(t, cached)

	got, err := f.svc.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 39, got.AvailableSeats)
}

func TestTripService_GetByID_DropsFillOvertakenByWrite(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	trip := f.createTrip(t)
	ctx := context.Background()

	var once sync.Once
	f.cache.beforeSet = func() {
		once.Do(func() {
			require.NoError(t, f.svc.BookSeats(ctx, trip.ID, []string{"A1"}, nil, "bk1"))
		})
	}

	stale, err := f.svc.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, stale.AvailableSeats)

	f.cache.mu.Lock()
	_, cached := f.cache.data["trips:id:"+trip.ID]
	f.cache.mu.Unlock()
	assert.False(t, cached)

	got, err := f.svc.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 39, got.AvailableSeats)
}

func TestTripService_CalculateDynamicPrice_IgnoresCachedTrip(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	spec := f.spec()
	cfg := domain.DefaultPricingConfig()
	cfg.Enabled = true
	spec.DynamicPricingConfig = &cfg
	trip, err := f.svc.CreateTrip(context.Background(), "op-1", spec)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.svc.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	key := "trips:id:" + trip.ID
	stale := f.cache.data[key]
	require.NotNil(t, stale)

	require.NoError(t, f.svc.BookSeats(ctx, trip.ID, []string{"A1", "A2"}, nil, "bk1"))
	f.cache.data[key] = stale

	out, err := f.svc.CalculateDynamicPrice(ctx, trip.ID, nil)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/40, out.OccupancyRate, 1e-9)
}

func TestTripService_CalculateDynamicPrice_HighOccupancy(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})
	spec := f.spec()
	cfg := domain.DefaultPricingConfig()
	cfg.Enabled = true
	cfg.EarlyBirdDiscount.Enabled = false
	cfg.PeakHoursPremium.Enabled = false
	cfg.WeekendPremium.Enabled = false
	spec.DynamicPricingConfig = &cfg
	trip, err := f.svc.CreateTrip(context.Background(), "op-1", spec)
	require.NoError(t, err)

	seats := make([]string, 34)
	for i := range seats {
		seats[i] = fmt.Sprintf("P%d", i+1)
	}
	require.NoError(t, f.svc.BookSeats(context.Background(), trip.ID, seats, nil, "bk-group"))

	out, err := f.svc.CalculateDynamicPrice(context.Background(), trip.ID, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(300000), out.FinalPrice)
}

func TestTripService_ListByOperator_RejectsUnknownStatus(t *testing.T) {
	f := newServiceFixture(t, usecases.TripServiceOptions{})

	_, _, err := f.svc.ListByOperator(context.Background(), "op-1", ports.TripFilter{Status: "boarding"}, 0, 10)

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "boarding"))
}
