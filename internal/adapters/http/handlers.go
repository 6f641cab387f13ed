package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
	"github.com/samirrijal/busseat/internal/core/usecases"
)

type recurringRequest struct {
	usecases.TripSpec
	Recurrence usecases.Recurrence `json:"recurrence"`
}

type statusRequest struct {
	Status  string `json:"status"`
	Reason  string `json:"reason"`
	ActorID string `json:"actor_id"`
}

type bookRequest struct {
	SeatNumbers    []string `json:"seat_numbers"`
	PassengerNames []string `json:"passenger_names"`
	BookingID      string   `json:"booking_id"`
}

type seatsRequest struct {
	SeatNumbers []string `json:"seat_numbers"`
}

type holdRequest struct {
	HolderID    string   `json:"holder_id"`
	SeatNumbers []string `json:"seat_numbers"`
	TTLSeconds  int      `json:"ttl_seconds"`
}

// CreateTripHandler schedules a new trip for the operator.
func CreateTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var spec usecases.TripSpec
		if err := c.BodyParser(&spec); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		trip, err := deps.Trips.CreateTrip(c.UserContext(), c.Params("operatorId"), spec)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/trips/" + trip.ID)
		return c.Status(fiber.StatusCreated).JSON(trip)
	}
}

// CreateRecurringTripsHandler schedules a series of trips sharing one group ID.
func CreateRecurringTripsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req recurringRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		trips, err := deps.Trips.CreateRecurringTrips(c.UserContext(), c.Params("operatorId"), req.TripSpec, req.Recurrence)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"data":               trips,
			"count":              len(trips),
			"recurring_group_id": trips[0].RecurringGroupID,
		})
	}
}

// ListOperatorTripsHandler pages through an operator's trips.
// Query: status, departs_after, departs_before (RFC 3339), offset, limit.
func ListOperatorTripsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c)

		filter := ports.TripFilter{Status: domain.TripStatus(c.Query("status"))}
		var err error
		if filter.DepartsAfter, err = queryTime(c, "departs_after"); err != nil {
			return errBadRequest(c, err.Error())
		}
		if filter.DepartsBefore, err = queryTime(c, "departs_before"); err != nil {
			return errBadRequest(c, err.Error())
		}

		trips, total, err := deps.Trips.ListByOperator(c.UserContext(), c.Params("operatorId"), filter, offset, limit)
		if err != nil {
			return errFromDomain(c, err)
		}

		return respondPage(c, trips, offset, limit, total)
	}
}

// GetTripHandler returns a single trip by ID.
func GetTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trip, err := deps.Trips.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(trip)
	}
}

// UpdateTripHandler applies a partial edit to a trip.
func UpdateTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch usecases.TripPatch
		if err := c.BodyParser(&patch); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		trip, err := deps.Trips.UpdateTrip(c.UserContext(), c.Params("id"), patch)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(trip)
	}
}

// UpdateStatusHandler moves a trip to a new status.
func UpdateStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req statusRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		to, err := domain.ParseTripStatus(req.Status)
		if err != nil {
			return errFromDomain(c, err)
		}
		res, err := deps.Trips.UpdateStatus(c.UserContext(), c.Params("id"), to,
			domain.StatusChange{Reason: req.Reason, ActorID: req.ActorID})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(res)
	}
}

// UpdateJourneyHandler records a journey progress report.
func UpdateJourneyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var update domain.JourneyUpdate
		if err := c.BodyParser(&update); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		res, err := deps.Trips.UpdateJourneyStatus(c.UserContext(), c.Params("id"), update)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(res)
	}
}

// SeatMapHandler returns booked and held seats of a trip.
func SeatMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := deps.Trips.SeatMap(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(m)
	}
}

// BookSeatsHandler sells seats to a booking.
func BookSeatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req bookRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		seats, err := domain.NormalizeSeatNumbers(req.SeatNumbers)
		if err != nil {
			return errFromDomain(c, err)
		}
		tripID := c.Params("id")
		if err := deps.Trips.BookSeats(c.UserContext(), tripID, seats, req.PassengerNames, req.BookingID); err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"trip_id":      tripID,
			"booking_id":   req.BookingID,
			"seat_numbers": seats,
		})
	}
}

// CancelSeatsHandler returns seats to the inventory.
func CancelSeatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req seatsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if err := deps.Trips.CancelSeats(c.UserContext(), c.Params("id"), req.SeatNumbers); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// HoldSeatsHandler reserves seats for a customer for a limited time.
func HoldSeatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req holdRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if req.TTLSeconds < 0 {
			return errBadRequest(c, "ttl_seconds must not be negative")
		}
		holds, err := deps.Trips.HoldSeats(c.UserContext(), c.Params("id"), req.HolderID, req.SeatNumbers,
			time.Duration(req.TTLSeconds)*time.Second)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"holds": holds})
	}
}

// ReleaseSeatsHandler drops a customer's holds.
func ReleaseSeatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req holdRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if err := deps.Trips.ReleaseSeats(c.UserContext(), c.Params("id"), req.HolderID, req.SeatNumbers); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PriceHandler quotes the dynamic seat price.
// Query: booking_date (RFC 3339, defaults to now).
func PriceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bookingDate, err := queryTime(c, "booking_date")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		price, err := deps.Trips.CalculateDynamicPrice(c.UserContext(), c.Params("id"), bookingDate)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(price)
	}
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" must be an RFC 3339 timestamp")
	}
	return &t, nil
}
