package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/busseat/internal/adapters/http"
	"github.com/samirrijal/busseat/internal/adapters/memory"
	natsadapter "github.com/samirrijal/busseat/internal/adapters/nats"
	"github.com/samirrijal/busseat/internal/adapters/postgres"
	"github.com/samirrijal/busseat/internal/adapters/valkey"
	"github.com/samirrijal/busseat/internal/core/ports"
	"github.com/samirrijal/busseat/internal/core/usecases"
	"github.com/samirrijal/busseat/internal/pkg/clock"
	"github.com/samirrijal/busseat/internal/pkg/config"
	"github.com/samirrijal/busseat/internal/pkg/logging"
	"github.com/samirrijal/busseat/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("busseat-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	clk := clock.Real{}
	loc, _ := cfg.Pricing.Location() // checked by Validate

	var (
		trips     ports.TripRepository
		validator *usecases.TripValidator
		db        *postgres.DB
	)
	switch cfg.Storage.Driver {
	case "memory":
		dir, err := memory.LoadDirectoryFile(cfg.Storage.SeedFile)
		if err != nil {
			log.Fatalf("seed directory: %v", err)
		}
		trips = memory.NewTripRepo()
		validator = usecases.NewTripValidator(dir.Routes(), dir.Buses(), dir.Employees(), clk)
		slog.Info("using in-memory storage", "seed_file", cfg.Storage.SeedFile)
	default:
		db, err = postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go db.ReportPoolStats(ctx, 15*time.Second)

		trips = postgres.NewTripRepo(db)
		validator = usecases.NewTripValidator(postgres.NewRouteRepo(db), postgres.NewBusRepo(db), postgres.NewEmployeeRepo(db), clk)
	}

	// Cache and seat holds. Without valkey the holds live in process.
	var (
		cache     *valkey.Cache
		cachePort ports.CacheService
		holds     ports.SeatHoldService = memory.NewSeatHolds(clk)
	)
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, holding seats in process", "error", err)
		} else {
			defer cache.Close()
			cachePort = cache
			holds = valkey.NewSeatHolds(cache.Client(), clk)
		}
	}

	// NATS
	var notifier ports.NotificationDispatcher
	dispatcher, err := natsadapter.NewDispatcher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, status notifications disabled", "error", err)
	} else {
		defer dispatcher.Close()
		notifier = dispatcher
	}

	// Raw NATS connection for WebSocket relay
	var natsConn *nats.Conn
	if nc, err := natsadapter.RawConn(cfg.NATS.URL); err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		natsConn = nc
		defer nc.Drain()
	}

	tripSvc := usecases.NewTripService(trips, validator, holds, notifier, cachePort, clk, usecases.TripServiceOptions{
		MaxRetries:    cfg.Booking.MaxRetries,
		HoldTTL:       cfg.Booking.HoldTTL,
		NotifyTimeout: cfg.Booking.NotifyTimeout,
		CacheTTL:      cfg.Booking.CacheTTL,
		Location:      loc,
		Logger:        logger,
	})

	deps := &http.Dependencies{
		Trips:   tripSvc,
		Storage: cfg.Storage.Driver,
		NATS:    natsConn,
		DB:      db,
		Cache:   cache,
		Logger:  logger,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		AppName:      "BusSeat API",
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, If-None-Match",
		ExposeHeaders:    "ETag, Link, X-Request-ID",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps, http.RouterOptions{
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimit:      cfg.Server.RateLimit,
	})

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "storage", cfg.Storage.Driver)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	tripSvc.WaitNotifications()

	slog.Info("server stopped")
}
