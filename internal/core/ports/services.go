package ports

import (
	"context"
	"time"

	"github.com/samirrijal/busseat/internal/core/domain"
)

// SeatHoldService keeps short-lived seat reservations made while a customer
// checks out. Expired holds are never returned.
type SeatHoldService interface {
	// Acquire holds every seat for holderID or none of them. Seats held by a
	// different holder yield a *domain.SeatConflictError. Re-acquiring a seat
	// the holder already owns refreshes its TTL.
	Acquire(ctx context.Context, tripID, holderID string, seats []string, ttl time.Duration) ([]domain.SeatHold, error)
	// Release drops the holder's holds on seats; seats held by others are left alone.
	Release(ctx context.Context, tripID, holderID string, seats []string) error
	ListHeld(ctx context.Context, tripID string) ([]domain.SeatHold, error)
}

// NotificationDispatcher announces trip status changes.
type NotificationDispatcher interface {
	NotifyTripStatusChange(ctx context.Context, event domain.TripStatusEvent) error
}

// EventSubscriber consumes trip status changes from a message broker.
type EventSubscriber interface {
	SubscribeTripStatus(ctx context.Context, handler func(ctx context.Context, event *domain.TripStatusEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
