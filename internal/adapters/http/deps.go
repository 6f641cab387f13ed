package http

import (
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/busseat/internal/adapters/postgres"
	"github.com/samirrijal/busseat/internal/adapters/valkey"
	"github.com/samirrijal/busseat/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Trips   *usecases.TripService
	Storage string // "memory" or "postgres"
	NATS    *nats.Conn
	DB      *postgres.DB
	Cache   *valkey.Cache
	Logger  *slog.Logger // request logs; slog.Default when nil
}
