package domain

import (
	"fmt"
	"time"
)

// StatusChange carries who requested a trip status change and why.
type StatusChange struct {
	Reason  string `json:"reason,omitempty"`
	ActorID string `json:"actor_id"`
}

// TransitionTo moves the trip along the trip status graph and applies the
// side effects each target state has on the journey. It returns the status
// the trip had before the call.
func (t *Trip) TransitionTo(to TripStatus, change StatusChange, now time.Time) (TripStatus, error) {
	from := t.Status
	if _, ok := tripTransitions[to]; !ok {
		return from, NewValidationError("status", "unknown trip status %q", to)
	}
	if !from.CanTransitionTo(to) {
		return from, &TransitionError{Machine: "trip", From: string(from), To: string(to)}
	}

	switch to {
	case TripStatusCancelled:
		if len(t.BookedSeats) > 0 {
			return from, &TransitionError{
				Machine: "trip",
				From:    string(from),
				To:      string(to),
				Cause:   fmt.Errorf("%w (%d booked)", ErrTripHasBookings, len(t.BookedSeats)),
			}
		}
		cancelledAt := now
		t.CancelledAt = &cancelledAt
		t.CancelReason = change.Reason
		t.CancelledBy = change.ActorID
		t.Journey.CurrentStatus = JourneyCancelled
		t.appendJourneyEvent(JourneyCancelled, now, nil, change.Reason, change.ActorID)

	case TripStatusOngoing:
		if t.Journey.CurrentStatus == JourneyPreparing {
			t.Journey.CurrentStatus = JourneyCheckingTickets
			t.appendJourneyEvent(JourneyCheckingTickets, now, nil, "trip started", change.ActorID)
		}

	case TripStatusCompleted:
		if !t.Journey.CurrentStatus.IsTerminal() {
			t.completeJourney(now)
			t.appendJourneyEvent(JourneyCompleted, now, nil, change.Reason, change.ActorID)
		}
	}

	t.Status = to
	t.UpdatedAt = now
	return from, nil
}

// completeJourney marks the journey as arrived. Callers append the event.
func (t *Trip) completeJourney(now time.Time) {
	t.Journey.CurrentStatus = JourneyCompleted
	t.Journey.CurrentStopIndex = t.TotalStops
	if t.Journey.ActualArrivalTime == nil {
		arrived := now
		t.Journey.ActualArrivalTime = &arrived
	}
}

func (t *Trip) appendJourneyEvent(status JourneyStatus, now time.Time, loc *GeoPoint, notes, by string) {
	t.Journey.StatusHistory = append(t.Journey.StatusHistory, JourneyEvent{
		Status:    status,
		StopIndex: t.Journey.CurrentStopIndex,
		Timestamp: now,
		Location:  loc,
		Notes:     notes,
		UpdatedBy: by,
	})
}
