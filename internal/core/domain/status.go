package domain

// TripStatus is the top-level lifecycle state of a trip.
type TripStatus string

const (
	TripStatusScheduled TripStatus = "scheduled"
	TripStatusOngoing   TripStatus = "ongoing"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// tripTransitions lists the allowed targets for every trip status.
var tripTransitions = map[TripStatus][]TripStatus{
	TripStatusScheduled: {TripStatusOngoing, TripStatusCancelled},
	TripStatusOngoing:   {TripStatusCompleted, TripStatusCancelled},
	TripStatusCompleted: {},
	TripStatusCancelled: {},
}

// ParseTripStatus converts s into a TripStatus.
func ParseTripStatus(s string) (TripStatus, error) {
	st := TripStatus(s)
	if _, ok := tripTransitions[st]; !ok {
		return "", NewValidationError("status", "unknown trip status %q", s)
	}
	return st, nil
}

// CanTransitionTo reports whether the trip graph has an edge s -> to.
func (s TripStatus) CanTransitionTo(to TripStatus) bool {
	for _, allowed := range tripTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s TripStatus) IsTerminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// JourneyStatus is the physical progress sub-state of a trip.
type JourneyStatus string

const (
	JourneyPreparing       JourneyStatus = "preparing"
	JourneyCheckingTickets JourneyStatus = "checking_tickets"
	JourneyInTransit       JourneyStatus = "in_transit"
	JourneyAtStop          JourneyStatus = "at_stop"
	JourneyCompleted       JourneyStatus = "completed"
	JourneyCancelled       JourneyStatus = "cancelled"
)

// journeyTransitions lists the targets a trip manager may request.
// JourneyCancelled is only entered through trip cancellation.
var journeyTransitions = map[JourneyStatus][]JourneyStatus{
	JourneyPreparing:       {JourneyCheckingTickets, JourneyInTransit},
	JourneyCheckingTickets: {JourneyInTransit},
	JourneyInTransit:       {JourneyAtStop, JourneyCompleted},
	JourneyAtStop:          {JourneyInTransit, JourneyCompleted},
	JourneyCompleted:       {},
	JourneyCancelled:       {},
}

// ParseJourneyStatus converts s into a JourneyStatus.
func ParseJourneyStatus(s string) (JourneyStatus, error) {
	st := JourneyStatus(s)
	if _, ok := journeyTransitions[st]; !ok {
		return "", NewValidationError("status", "unknown journey status %q", s)
	}
	return st, nil
}

// CanTransitionTo reports whether the journey graph has an edge s -> to.
func (s JourneyStatus) CanTransitionTo(to JourneyStatus) bool {
	for _, allowed := range journeyTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the journey has finished.
func (s JourneyStatus) IsTerminal() bool {
	return s == JourneyCompleted || s == JourneyCancelled
}
