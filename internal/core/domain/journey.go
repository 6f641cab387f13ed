package domain

import (
	"fmt"
	"time"
)

// JourneyUpdate is a trip manager's report of the bus's progress.
type JourneyUpdate struct {
	Status     JourneyStatus `json:"status"`
	StopNumber int           `json:"stop_number,omitempty"` // 1-based, only used with at_stop
	Location   *GeoPoint     `json:"location,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	UpdatedBy  string        `json:"updated_by"`
}

// JourneyTransition describes the effect of one AdvanceJourney call.
type JourneyTransition struct {
	OldStatus     JourneyStatus `json:"old_status"`
	NewStatus     JourneyStatus `json:"new_status"`
	CurrentStop   int           `json:"current_stop"`
	OldTripStatus TripStatus    `json:"old_trip_status"`
	NewTripStatus TripStatus    `json:"new_trip_status"`
}

// TripStatusChanged reports whether the journey update also moved the trip.
func (jt JourneyTransition) TripStatusChanged() bool {
	return jt.OldTripStatus != jt.NewTripStatus
}

// AdvanceJourney applies a journey update. Entering in_transit from the last
// stop completes both the journey and the trip in the same mutation.
func (t *Trip) AdvanceJourney(u JourneyUpdate, now time.Time) (JourneyTransition, error) {
	from := t.Journey.CurrentStatus
	res := JourneyTransition{OldStatus: from, OldTripStatus: t.Status}

	if _, err := ParseJourneyStatus(string(u.Status)); err != nil {
		return res, err
	}
	if u.UpdatedBy == "" {
		return res, NewValidationError("updated_by", "is required")
	}
	if u.Location != nil && !u.Location.Valid() {
		return res, NewValidationError("location", "coordinates out of range")
	}
	if u.Status == JourneyCancelled {
		return res, NewValidationError("status", "journey is cancelled by cancelling the trip")
	}
	if t.IsTerminal() {
		return res, &TransitionError{
			Machine: "journey",
			From:    string(from),
			To:      string(u.Status),
			Cause:   fmt.Errorf("trip is %s", t.Status),
		}
	}
	if !from.CanTransitionTo(u.Status) {
		return res, &TransitionError{Machine: "journey", From: string(from), To: string(u.Status)}
	}
	if u.Status == JourneyAtStop && (u.StopNumber < 1 || u.StopNumber > t.TotalStops) {
		return res, NewValidationError("stop_number", "must be between 1 and %d, got %d", t.TotalStops, u.StopNumber)
	}

	j := &t.Journey
	switch u.Status {
	case JourneyCheckingTickets:
		j.CurrentStatus = JourneyCheckingTickets

	case JourneyInTransit:
		if j.ActualDepartureTime == nil {
			departed := now
			j.ActualDepartureTime = &departed
		}
		if t.Status == TripStatusScheduled {
			t.Status = TripStatusOngoing
		}
		j.CurrentStatus = JourneyInTransit
		switch from {
		case JourneyPreparing, JourneyCheckingTickets:
			j.CurrentStopIndex = -1
		case JourneyAtStop:
			if j.CurrentStopIndex >= t.TotalStops-1 {
				t.completeJourney(now)
				t.Status = TripStatusCompleted
			}
		}

	case JourneyAtStop:
		j.CurrentStatus = JourneyAtStop
		j.CurrentStopIndex = u.StopNumber - 1

	case JourneyCompleted:
		t.completeJourney(now)
		t.Status = TripStatusCompleted
	}

	t.appendJourneyEvent(u.Status, now, u.Location, u.Notes, u.UpdatedBy)
	t.UpdatedAt = now

	res.NewStatus = j.CurrentStatus
	res.CurrentStop = j.CurrentStopIndex
	res.NewTripStatus = t.Status
	return res, nil
}
