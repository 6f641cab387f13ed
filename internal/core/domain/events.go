package domain

import "time"

// TripStatusEvent is published whenever a trip's top-level status changes.
type TripStatusEvent struct {
	TripID        string        `json:"trip_id"`
	OperatorID    string        `json:"operator_id"`
	OldStatus     TripStatus    `json:"old_status"`
	NewStatus     TripStatus    `json:"new_status"`
	JourneyStatus JourneyStatus `json:"journey_status"`
	Reason        string        `json:"reason,omitempty"`
	ActorID       string        `json:"actor_id,omitempty"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

// NewTripStatusEvent captures the status change of trip from old.
func NewTripStatusEvent(trip *Trip, old TripStatus, change StatusChange, now time.Time) TripStatusEvent {
	return TripStatusEvent{
		TripID:        trip.ID,
		OperatorID:    trip.OperatorID,
		OldStatus:     old,
		NewStatus:     trip.Status,
		JourneyStatus: trip.Journey.CurrentStatus,
		Reason:        change.Reason,
		ActorID:       change.ActorID,
		OccurredAt:    now,
	}
}
