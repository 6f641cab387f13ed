package domain

import (
	"time"
)

// BookedSeat is one sold seat on a trip.
type BookedSeat struct {
	SeatNumber    string `json:"seat_number"`
	BookingID     string `json:"booking_id"`
	PassengerName string `json:"passenger_name,omitempty"`
}

// JourneyEvent is an immutable entry in a trip's journey history.
type JourneyEvent struct {
	Status    JourneyStatus `json:"status"`
	StopIndex int           `json:"stop_index"`
	Timestamp time.Time     `json:"timestamp"`
	Location  *GeoPoint     `json:"location,omitempty"`
	Notes     string        `json:"notes,omitempty"`
	UpdatedBy string        `json:"updated_by"`
}

// Journey tracks the physical progress of a trip through its route stops.
//
// CurrentStopIndex is -1 before the first stop, the zero-based index of the
// last stop reached while travelling, and TotalStops once the bus has arrived.
type Journey struct {
	CurrentStopIndex    int            `json:"current_stop_index"`
	CurrentStatus       JourneyStatus  `json:"current_status"`
	StatusHistory       []JourneyEvent `json:"status_history"`
	ActualDepartureTime *time.Time     `json:"actual_departure_time,omitempty"`
	ActualArrivalTime   *time.Time     `json:"actual_arrival_time,omitempty"`
}

// Trip is a scheduled departure of a bus on a route.
type Trip struct {
	ID            string `json:"id"`
	RouteID       string `json:"route_id"`
	BusID         string `json:"bus_id"`
	OperatorID    string `json:"operator_id"`
	DriverID      string `json:"driver_id"`
	TripManagerID string `json:"trip_manager_id"`

	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`

	BasePrice            int64         `json:"base_price"`
	Discount             float64       `json:"discount"`
	FinalPrice           int64         `json:"final_price"`
	DynamicPricingConfig PricingConfig `json:"dynamic_pricing_config"`

	TotalSeats     int          `json:"total_seats"`
	AvailableSeats int          `json:"available_seats"`
	BookedSeats    []BookedSeat `json:"booked_seats"`
	TotalStops     int          `json:"total_stops"`

	Status  TripStatus `json:"status"`
	Journey Journey    `json:"journey"`

	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	CancelledBy  string     `json:"cancelled_by,omitempty"`

	IsRecurring      bool   `json:"is_recurring"`
	RecurringGroupID string `json:"recurring_group_id,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTrip builds a scheduled trip with an empty seat ledger and a journey
// that has not started yet.
func NewTrip(id string, totalSeats, totalStops int, now time.Time) *Trip {
	return &Trip{
		ID:             id,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		BookedSeats:    []BookedSeat{},
		TotalStops:     totalStops,
		Status:         TripStatusScheduled,
		Journey: Journey{
			CurrentStopIndex: -1,
			CurrentStatus:    JourneyPreparing,
			StatusHistory:    []JourneyEvent{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsTerminal reports whether the trip can no longer be mutated.
func (t *Trip) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// Clone returns a deep copy so stored documents never share slices with callers.
func (t *Trip) Clone() *Trip {
	c := *t
	c.BookedSeats = append([]BookedSeat(nil), t.BookedSeats...)
	if c.BookedSeats == nil {
		c.BookedSeats = []BookedSeat{}
	}
	c.Journey.StatusHistory = make([]JourneyEvent, len(t.Journey.StatusHistory))
	for i, ev := range t.Journey.StatusHistory {
		if ev.Location != nil {
			loc := *ev.Location
			ev.Location = &loc
		}
		c.Journey.StatusHistory[i] = ev
	}
	c.Journey.ActualDepartureTime = cloneTime(t.Journey.ActualDepartureTime)
	c.Journey.ActualArrivalTime = cloneTime(t.Journey.ActualArrivalTime)
	c.CancelledAt = cloneTime(t.CancelledAt)
	c.DynamicPricingConfig.PeakHoursPremium.PeakHours = append([]int(nil), t.DynamicPricingConfig.PeakHoursPremium.PeakHours...)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// RouteInfo is the read-only view of a route needed to schedule trips.
type RouteInfo struct {
	ID         string `json:"id"`
	OperatorID string `json:"operator_id"`
	Name       string `json:"name"`
	IsActive   bool   `json:"is_active"`
	StopCount  int    `json:"stop_count"`
}

// BusStatus is the operational status of a bus.
type BusStatus string

const (
	BusStatusActive      BusStatus = "active"
	BusStatusMaintenance BusStatus = "maintenance"
	BusStatusRetired     BusStatus = "retired"
)

// BusInfo is the read-only view of a bus and its computed seat layout.
type BusInfo struct {
	ID          string    `json:"id"`
	OperatorID  string    `json:"operator_id"`
	PlateNumber string    `json:"plate_number"`
	Status      BusStatus `json:"status"`
	LayoutSeats int       `json:"layout_seats"` // 0 when no seat layout has been generated
}

// EmployeeRole is the job of an operator employee.
type EmployeeRole string

const (
	RoleDriver      EmployeeRole = "driver"
	RoleTripManager EmployeeRole = "trip_manager"
)

// EmployeeStatus is the employment status of an operator employee.
type EmployeeStatus string

const (
	EmployeeActive    EmployeeStatus = "active"
	EmployeeSuspended EmployeeStatus = "suspended"
	EmployeeInactive  EmployeeStatus = "inactive"
)

// Employee is the read-only view of a driver or trip manager.
type Employee struct {
	ID            string         `json:"id"`
	OperatorID    string         `json:"operator_id"`
	FullName      string         `json:"full_name"`
	Role          EmployeeRole   `json:"role"`
	Status        EmployeeStatus `json:"status"`
	LicenseExpiry *time.Time     `json:"license_expiry,omitempty"`
}

// SeatHold is a short-lived customer reservation of a seat.
type SeatHold struct {
	TripID     string    `json:"trip_id"`
	SeatNumber string    `json:"seat_number"`
	HolderID   string    `json:"holder_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// SeatMap is the sellable view of a trip's seats.
type SeatMap struct {
	TripID         string       `json:"trip_id"`
	TotalSeats     int          `json:"total_seats"`
	AvailableSeats int          `json:"available_seats"`
	Booked         []BookedSeat `json:"booked"`
	Held           []SeatHold   `json:"held"`
}
