package http

import "github.com/gofiber/fiber/v2"

// cachePolicy maps a registered route pattern to its Cache-Control value.
// Seat inventory changes with every booking, so anything exposing seat
// counts must be revalidated.
var cachePolicy = map[string]string{
	"/v1/health":                      "public, max-age=10",
	"/v1/ready":                       "no-cache",
	"/metrics":                        "no-cache",
	"/docs":                           "public, max-age=3600",
	"/docs/openapi.yaml":              "public, max-age=3600",
	"/docs/openapi.json":              "public, max-age=3600",
	"/v1/operators/:operatorId/trips": "private, no-cache",
	"/v1/trips/:id":                   "private, no-cache",
	"/v1/trips/:id/seats":             "no-store",
	"/v1/trips/:id/price":             "no-store",
}

// CachingMiddleware sets Cache-Control on successful GET responses by
// matched route. A value set by the handler wins.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil || c.Method() != fiber.MethodGet || c.Response().StatusCode() >= 400 {
			return err
		}
		if len(c.Response().Header.Peek(fiber.HeaderCacheControl)) > 0 {
			return err
		}
		if v, ok := cachePolicy[c.Route().Path]; ok {
			c.Set(fiber.HeaderCacheControl, v)
		}
		return err
	}
}
