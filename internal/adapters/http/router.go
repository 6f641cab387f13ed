package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/busseat/internal/pkg/metrics"
)

// RouterOptions tunes the middleware stack. Zero values pick the defaults.
type RouterOptions struct {
	RequestTimeout time.Duration // per REST request (default 15s)
	RateLimit      int           // requests per minute per IP (default 120, negative disables)
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, opts RouterOptions) {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = 120
	}

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestObserver(deps.Logger))

	if opts.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness run without a timeout
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	withTimeout := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, opts.RequestTimeout)
	}

	v1 := app.Group("/v1")

	operators := v1.Group("/operators/:operatorId")
	operators.Post("/trips", withTimeout(CreateTripHandler(deps)))
	operators.Post("/trips/recurring", withTimeout(CreateRecurringTripsHandler(deps)))
	operators.Get("/trips", withTimeout(ListOperatorTripsHandler(deps)))

	v1.Get("/trips/:id", withTimeout(GetTripHandler(deps)))
	v1.Patch("/trips/:id", withTimeout(UpdateTripHandler(deps)))

	trips := v1.Group("/trips/:id")
	trips.Post("/status", withTimeout(UpdateStatusHandler(deps)))
	trips.Post("/journey", withTimeout(UpdateJourneyHandler(deps)))
	trips.Get("/seats", withTimeout(SeatMapHandler(deps)))
	trips.Post("/seats/book", withTimeout(BookSeatsHandler(deps)))
	trips.Post("/seats/cancel", withTimeout(CancelSeatsHandler(deps)))
	trips.Post("/seats/hold", withTimeout(HoldSeatsHandler(deps)))
	trips.Post("/seats/release", withTimeout(ReleaseSeatsHandler(deps)))
	trips.Get("/price", withTimeout(PriceHandler(deps)))

	// GraphQL
	app.Post("/graphql", withTimeout(GraphQLHandler(deps)))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket relay of trip status events
	app.Use("/ws", func(c *fiber.Ctx) error {
		if deps.NATS == nil {
			return errServiceUnavailable(c, "event relay is not configured")
		}
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	if deps.NATS != nil {
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
