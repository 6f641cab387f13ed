package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/busseat/internal/core/domain"
)

func advance(t *testing.T, trip *domain.Trip, status domain.JourneyStatus, stop int) domain.JourneyTransition {
	t.Helper()
	res, err := trip.AdvanceJourney(domain.JourneyUpdate{Status: status, StopNumber: stop, UpdatedBy: "mgr-1"}, t0)
	require.NoError(t, err, "advance to %s", status)
	return res
}

func TestAdvanceJourney_AutoCompletesAfterLastStop(t *testing.T) {
	const stops = 4
	trip := newTrip(40, stops)

	advance(t, trip, domain.JourneyCheckingTickets, 0)

	res := advance(t, trip, domain.JourneyInTransit, 0)
	assert.Equal(t, -1, res.CurrentStop)
	assert.Equal(t, domain.TripStatusOngoing, trip.Status)
	assert.True(t, res.TripStatusChanged())
	require.NotNil(t, trip.Journey.ActualDepartureTime)

	res = advance(t, trip, domain.JourneyAtStop, 1)
	assert.Equal(t, 0, res.CurrentStop)

	res = advance(t, trip, domain.JourneyInTransit, 0)
	assert.Equal(t, 0, res.CurrentStop)
	assert.Equal(t, domain.JourneyInTransit, res.NewStatus)
	assert.Equal(t, domain.TripStatusOngoing, trip.Status)

	res = advance(t, trip, domain.JourneyAtStop, stops)
	assert.Equal(t, stops-1, res.CurrentStop)

	res = advance(t, trip, domain.JourneyInTransit, 0)
	assert.Equal(t, domain.JourneyCompleted, res.NewStatus)
	assert.Equal(t, domain.TripStatusCompleted, res.NewTripStatus)
	assert.Equal(t, stops, trip.Journey.CurrentStopIndex)
	assert.Equal(t, domain.TripStatusCompleted, trip.Status)
	assert.NotNil(t, trip.Journey.ActualArrivalTime)
	assert.Len(t, trip.Journey.StatusHistory, 6)
	assert.NoError(t, trip.CheckInvariants())
}

func TestAdvanceJourney_EveryCallAppendsOneEvent(t *testing.T) {
	trip := newTrip(40, 3)
	loc := &domain.GeoPoint{Lat: 21.02, Lon: 105.84}

	_, err := trip.AdvanceJourney(domain.JourneyUpdate{
		Status:    domain.JourneyInTransit,
		Location:  loc,
		Notes:     "left depot",
		UpdatedBy: "mgr-1",
	}, t0)
	require.NoError(t, err)

	require.Len(t, trip.Journey.StatusHistory, 1)
	ev := trip.Journey.StatusHistory[0]
	assert.Equal(t, domain.JourneyInTransit, ev.Status)
	assert.Equal(t, -1, ev.StopIndex)
	assert.Equal(t, "left depot", ev.Notes)
	assert.Equal(t, loc, ev.Location)
	assert.Equal(t, t0, ev.Timestamp)
}

func TestAdvanceJourney_IllegalEdge(t *testing.T) {
	trip := newTrip(40, 3)

	_, err := trip.AdvanceJourney(domain.JourneyUpdate{Status: domain.JourneyAtStop, StopNumber: 1, UpdatedBy: "mgr"}, t0)

	var tErr *domain.TransitionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "journey", tErr.Machine)
	assert.Empty(t, trip.Journey.StatusHistory)
}

func TestAdvanceJourney_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		update domain.JourneyUpdate
	}{
		{"unknown status", domain.JourneyUpdate{Status: "boarding", UpdatedBy: "mgr"}},
		{"missing actor", domain.JourneyUpdate{Status: domain.JourneyInTransit}},
		{"bad location", domain.JourneyUpdate{Status: domain.JourneyInTransit, UpdatedBy: "mgr", Location: &domain.GeoPoint{Lat: 120}}},
		{"cancel via journey", domain.JourneyUpdate{Status: domain.JourneyCancelled, UpdatedBy: "mgr"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trip := newTrip(40, 3)
			_, err := trip.AdvanceJourney(tc.update, t0)
			var vErr *domain.ValidationError
			assert.ErrorAs(t, err, &vErr)
			assert.Equal(t, domain.JourneyPreparing, trip.Journey.CurrentStatus)
		})
	}
}

func TestAdvanceJourney_StopNumberBounds(t *testing.T) {
	for _, stop := range []int{0, 4} {
		trip := newTrip(40, 3)
		advance(t, trip, domain.JourneyInTransit, 0)

		_, err := trip.AdvanceJourney(domain.JourneyUpdate{Status: domain.JourneyAtStop, StopNumber: stop, UpdatedBy: "mgr"}, t0)

		var vErr *domain.ValidationError
		assert.ErrorAs(t, err, &vErr, "stop %d", stop)
	}
}

func TestAdvanceJourney_RejectedOnTerminalTrip(t *testing.T) {
	trip := newTrip(40, 3)
	_, err := trip.TransitionTo(domain.TripStatusCancelled, domain.StatusChange{ActorID: "op"}, t0)
	require.NoError(t, err)

	_, err = trip.AdvanceJourney(domain.JourneyUpdate{Status: domain.JourneyInTransit, UpdatedBy: "mgr"}, t0)

	var tErr *domain.TransitionError
	assert.ErrorAs(t, err, &tErr)
}

func TestAdvanceJourney_ExplicitCompletion(t *testing.T) {
	trip := newTrip(40, 3)
	advance(t, trip, domain.JourneyInTransit, 0)
	later := t0.Add(5 * time.Hour)

	res, err := trip.AdvanceJourney(domain.JourneyUpdate{Status: domain.JourneyCompleted, UpdatedBy: "mgr"}, later)

	require.NoError(t, err)
	assert.Equal(t, domain.TripStatusCompleted, res.NewTripStatus)
	assert.Equal(t, 3, res.CurrentStop)
	require.NotNil(t, trip.Journey.ActualArrivalTime)
	assert.Equal(t, later, *trip.Journey.ActualArrivalTime)
}
