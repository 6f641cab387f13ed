package usecases

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/pkg/metrics"
)

// StatusResult reports the trip status before and after UpdateStatus.
type StatusResult struct {
	OldStatus domain.TripStatus `json:"old_status"`
	NewStatus domain.TripStatus `json:"new_status"`
}

// UpdateStatus moves a trip along the trip status graph. Subscribers are
// notified asynchronously; a failed notification never fails the update.
func (s *TripService) UpdateStatus(ctx context.Context, tripID string, to domain.TripStatus, change domain.StatusChange) (res StatusResult, err error) {
	ctx, span := tracer.Start(ctx, "TripService.UpdateStatus", trace.WithAttributes(
		attribute.String("trip.id", tripID),
		attribute.String("trip.status.to", string(to)),
	))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(change.ActorID) == "" {
		return res, domain.NewValidationError("actor_id", "is required")
	}

	now := s.clock.Now()
	trip, err := s.mutate(ctx, "update_status", tripID, func(t *domain.Trip) error {
		from, err := t.TransitionTo(to, change, now)
		res = StatusResult{OldStatus: from, NewStatus: t.Status}
		return err
	})
	if err != nil {
		return res, err
	}

	metrics.StatusTransitions.WithLabelValues(string(res.OldStatus), string(res.NewStatus)).Inc()
	s.notifyAsync(domain.NewTripStatusEvent(trip, res.OldStatus, change, now))
	return res, nil
}

// UpdateJourneyStatus records a trip manager's progress report. Reaching
// the end of the route completes the trip in the same write.
func (s *TripService) UpdateJourneyStatus(ctx context.Context, tripID string, update domain.JourneyUpdate) (res domain.JourneyTransition, err error) {
	ctx, span := tracer.Start(ctx, "TripService.UpdateJourneyStatus", trace.WithAttributes(
		attribute.String("trip.id", tripID),
		attribute.String("journey.status.to", string(update.Status)),
	))
	defer func() { endSpan(span, err) }()

	now := s.clock.Now()
	trip, err := s.mutate(ctx, "update_journey", tripID, func(t *domain.Trip) error {
		var err error
		res, err = t.AdvanceJourney(update, now)
		return err
	})
	if err != nil {
		return res, err
	}

	if res.TripStatusChanged() {
		metrics.StatusTransitions.WithLabelValues(string(res.OldTripStatus), string(res.NewTripStatus)).Inc()
		change := domain.StatusChange{Reason: "journey " + string(res.NewStatus), ActorID: update.UpdatedBy}
		s.notifyAsync(domain.NewTripStatusEvent(trip, res.OldTripStatus, change, now))
	}
	return res, nil
}

// notifyAsync dispatches on its own goroutine with a detached, time-boxed
// context so the caller's cancellation cannot drop the notification.
func (s *TripService) notifyAsync(event domain.TripStatusEvent) {
	if s.notifier == nil {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.NotifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyTripStatusChange(ctx, event); err != nil {
			metrics.NotificationFailures.Inc()
			s.log.Warn("trip status notification failed",
				"trip_id", event.TripID,
				"old_status", event.OldStatus,
				"new_status", event.NewStatus,
				"error", err,
			)
		}
	}()
}
