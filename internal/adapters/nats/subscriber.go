package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
)

// DefaultDurable is the consumer name used by the notifier.
const DefaultDurable = "trip-status-notifier"

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
}

var _ ports.EventSubscriber = (*Subscriber)(nil)

// NewSubscriber connects to NATS. An empty durable uses DefaultDurable.
func NewSubscriber(url, durable string) (*Subscriber, error) {
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
	if durable == "" {
		durable = DefaultDurable
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

// ensureConsumer creates the durable push consumer once. It outlives the
// subscriber, so events published while the notifier is down are delivered
// when it binds again.
func (s *Subscriber) ensureConsumer() error {
	_, err := s.js.ConsumerInfo(TripStatusStream, s.durable)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrConsumerNotFound) {
		return err
	}
	_, err = s.js.AddConsumer(TripStatusStream, &nats.ConsumerConfig{
		Durable:        s.durable,
		DeliverSubject: "busseat.deliver." + s.durable,
		DeliverGroup:   s.durable,
		DeliverPolicy:  nats.DeliverNewPolicy,
		AckPolicy:      nats.AckExplicitPolicy,
		MaxDeliver:     3,
		FilterSubject:  TripStatusSubjects,
	})
	return err
}

// SubscribeTripStatus delivers every trip status event to handler. Events
// the handler rejects are redelivered up to three times in total.
func (s *Subscriber) SubscribeTripStatus(ctx context.Context, handler func(ctx context.Context, event *domain.TripStatusEvent) error) error {
	if err := s.ensureConsumer(); err != nil {
		return fmt.Errorf("consumer %s: %w", s.durable, err)
	}
	_, err := s.js.QueueSubscribe(TripStatusSubjects, s.durable, func(msg *nats.Msg) {
		var event domain.TripStatusEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			// a malformed payload never decodes, so don't redeliver it
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Bind(TripStatusStream, s.durable),
		nats.ManualAck(),
	)
	return err
}

// Close drains the connection. The durable consumer stays on the server.
func (s *Subscriber) Close() {
	_ = s.conn.Drain()
}
