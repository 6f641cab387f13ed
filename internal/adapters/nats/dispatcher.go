package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
)

// Dispatcher implements ports.NotificationDispatcher using NATS JetStream.
type Dispatcher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

var _ ports.NotificationDispatcher = (*Dispatcher)(nil)

// NewDispatcher connects to NATS and makes sure the trip event stream exists.
func NewDispatcher(url string) (*Dispatcher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStream(js); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", TripStatusStream, err)
	}
	return &Dispatcher{conn: conn, js: js}, nil
}

// NotifyTripStatusChange publishes the event on trips.status.<trip_id>.
// The message ID lets JetStream drop duplicates of a retried publish.
func (d *Dispatcher) NotifyTripStatusChange(ctx context.Context, event domain.TripStatusEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(TripStatusSubject(event.TripID))
	msg.Data = data
	msg.Header.Set("Content-Type", "application/json")

	msgID := event.TripID + ":" + string(event.NewStatus) + ":" + strconv.FormatInt(event.OccurredAt.UnixNano(), 10)
	if _, err := d.js.PublishMsg(msg, nats.Context(ctx), nats.MsgId(msgID)); err != nil {
		return fmt.Errorf("publish trip status %s: %w", event.TripID, err)
	}
	return nil
}

// Ping reports whether the connection is up.
func (d *Dispatcher) Ping() error {
	if !d.conn.IsConnected() {
		return fmt.Errorf("nats: %s", d.conn.Status())
	}
	return nil
}

// Close drains and closes the connection.
func (d *Dispatcher) Close() {
	_ = d.conn.Drain()
}
