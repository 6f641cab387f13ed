package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/busseat/internal/adapters/nats"
	"github.com/samirrijal/busseat/internal/adapters/postgres"
	"github.com/samirrijal/busseat/internal/adapters/valkey"
	"github.com/samirrijal/busseat/internal/core/ports"
	"github.com/samirrijal/busseat/internal/core/usecases"
	"github.com/samirrijal/busseat/internal/pkg/clock"
	"github.com/samirrijal/busseat/internal/pkg/config"
	"github.com/samirrijal/busseat/internal/pkg/logging"
	"github.com/samirrijal/busseat/internal/workflows"
)

// booker runs the seat-hold booking workflow. Holds must be shared with the
// API, so it needs postgres and valkey.
func main() {
	cfg, err := config.Load("busseat-booker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	if cfg.Storage.Driver != "postgres" {
		log.Fatalf("booker requires storage.driver=postgres, got %s", cfg.Storage.Driver)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	var notifier ports.NotificationDispatcher
	if d, err := natsadapter.NewDispatcher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, status notifications disabled", "error", err)
	} else {
		defer d.Close()
		notifier = d
	}

	clk := clock.Real{}
	loc, _ := cfg.Pricing.Location()
	tripSvc := usecases.NewTripService(
		postgres.NewTripRepo(db),
		usecases.NewTripValidator(postgres.NewRouteRepo(db), postgres.NewBusRepo(db), postgres.NewEmployeeRepo(db), clk),
		valkey.NewSeatHolds(cache.Client(), clk),
		notifier,
		cache,
		clk,
		usecases.TripServiceOptions{
			MaxRetries:    cfg.Booking.MaxRetries,
			HoldTTL:       cfg.Booking.HoldTTL,
			NotifyTimeout: cfg.Booking.NotifyTimeout,
			CacheTTL:      cfg.Booking.CacheTTL,
			Location:      loc,
			Logger:        logger,
		},
	)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, workflows.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.SeatHoldBookingWorkflow)
	w.RegisterActivity(&workflows.BookingActivities{Trips: tripSvc})

	slog.Info("booker worker started", "task_queue", workflows.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
	tripSvc.WaitNotifications()
}
