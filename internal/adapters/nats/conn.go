package natsadapter

import (
	"time"

	"github.com/nats-io/nats.go"
)

// TripStatusStream is the JetStream stream carrying trip status events.
const (
	TripStatusStream   = "TRIP_EVENTS"
	TripStatusSubjects = "trips.status.>"
)

// TripStatusSubject is the subject an event for tripID is published on.
func TripStatusSubject(tripID string) string {
	return "trips.status." + tripID
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("busseat"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

func ensureStream(js nats.JetStreamContext) error {
	cfg := &nats.StreamConfig{
		Name:      TripStatusStream,
		Subjects:  []string{TripStatusSubjects},
		Retention: nats.InterestPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist
		if _, err := js.UpdateStream(cfg); err != nil {
			return err
		}
	}
	return nil
}
