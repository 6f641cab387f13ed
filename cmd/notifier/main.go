package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/busseat/internal/adapters/nats"
	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/pkg/config"
	"github.com/samirrijal/busseat/internal/pkg/logging"
)

// notifier consumes trip status changes from JetStream. Delivery to
// passengers is out of scope; each event is logged.
func main() {
	cfg, err := config.Load("busseat-notifier")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, cfg.NATS.Durable)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sub.SubscribeTripStatus(ctx, func(ctx context.Context, e *domain.TripStatusEvent) error {
		slog.InfoContext(ctx, "trip status changed",
			"trip_id", e.TripID,
			"operator_id", e.OperatorID,
			"old_status", e.OldStatus,
			"new_status", e.NewStatus,
			"journey_status", e.JourneyStatus,
			"reason", e.Reason,
			"actor_id", e.ActorID,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("notifier started", "durable", cfg.NATS.Durable)
	<-ctx.Done()
	slog.Info("notifier stopped")
}
