package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/busseat/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int            `json:"status"`
	Code      string         `json:"code"`    // Error code: bad_request, not_found, seat_conflict, etc.
	Message   string         `json:"message"` // Human-readable message
	Field     string         `json:"field,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return writeAPIError(c, APIError{Status: status, Code: code, Message: message})
}

func writeAPIError(c *fiber.Ctx, e APIError) error {
	e.RequestID, _ = c.Locals("requestid").(string)
	return c.Status(e.Status).JSON(e)
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errServiceUnavailable returns a 503 error.
func errServiceUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, 503, "service_unavailable", msg)
}

// errFromDomain maps a service error onto the HTTP error contract.
func errFromDomain(c *fiber.Ctx, err error) error {
	var (
		validation *domain.ValidationError
		transition *domain.TransitionError
		conflict   *domain.SeatConflictError
		capacity   *domain.InsufficientCapacityError
		dependency *domain.DependencyUnavailableError
	)
	switch {
	case errors.As(err, &validation):
		return writeAPIError(c, APIError{Status: 422, Code: "validation_failed", Message: validation.Message, Field: validation.Field})
	case errors.As(err, &transition):
		return writeAPIError(c, APIError{Status: 409, Code: "invalid_transition", Message: transition.Error(),
			Details: map[string]any{"machine": transition.Machine, "from": transition.From, "to": transition.To}})
	case errors.As(err, &conflict):
		return writeAPIError(c, APIError{Status: 409, Code: "seat_conflict", Message: conflict.Error(),
			Details: map[string]any{"seats": conflict.Seats}})
	case errors.As(err, &capacity):
		return writeAPIError(c, APIError{Status: 409, Code: "insufficient_capacity", Message: capacity.Error(),
			Details: map[string]any{"requested": capacity.Requested, "available": capacity.Available}})
	case errors.As(err, &dependency):
		return writeAPIError(c, APIError{Status: 424, Code: "dependency_unavailable", Message: dependency.Error(),
			Details: map[string]any{"entity": dependency.Entity, "id": dependency.ID}})
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, "trip not found")
	case errors.Is(err, domain.ErrVersionConflict):
		return newError(c, 409, "concurrent_modification", "the trip was modified concurrently, retry the request")
	}
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal server error")
}

// ErrorHandler is the fiber fallback for errors no handler translated.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return newError(c, fe.Code, codeForStatus(fe.Code), fe.Message)
	}
	LoggerFromCtx(c.UserContext()).Error("unhandled error", "path", c.Path(), "error", err)
	return errInternal(c, "internal server error")
}

func codeForStatus(status int) string {
	switch status {
	case 400:
		return "bad_request"
	case 404:
		return "not_found"
	case 405:
		return "method_not_allowed"
	case 408:
		return "timeout"
	case 413:
		return "payload_too_large"
	case 426:
		return "upgrade_required"
	case 429:
		return "rate_limited"
	}
	if status >= 500 {
		return "internal_error"
	}
	return "error"
}
