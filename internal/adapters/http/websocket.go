package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/busseat/internal/adapters/nats"
	"github.com/samirrijal/busseat/internal/pkg/metrics"
)

// wsMessage is sent from client to narrow or widen the relayed events.
type wsMessage struct {
	Action     string `json:"action"`      // "subscribe" | "unsubscribe"
	TripID     string `json:"trip_id"`     // optional
	OperatorID string `json:"operator_id"` // optional
}

// wsFilter decides which trip status events reach one client. A fresh
// client receives everything until it subscribes to a trip or operator.
type wsFilter struct {
	mu        sync.Mutex
	all       bool
	trips     map[string]bool
	operators map[string]bool
}

func newWSFilter() *wsFilter {
	return &wsFilter{all: true, trips: map[string]bool{}, operators: map[string]bool{}}
}

func (f *wsFilter) match(tripID, operatorID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all || f.trips[tripID] || f.operators[operatorID]
}

// apply updates the filter and returns the status reported to the client.
func (f *wsFilter) apply(m wsMessage) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch m.Action {
	case "subscribe":
		if m.TripID == "" && m.OperatorID == "" {
			f.all = true
			return "subscribed to all trips", true
		}
		f.all = false
		if m.TripID != "" {
			f.trips[m.TripID] = true
		}
		if m.OperatorID != "" {
			f.operators[m.OperatorID] = true
		}
		return "subscribed", true
	case "unsubscribe":
		if m.TripID == "" && m.OperatorID == "" {
			f.all = false
			f.trips = map[string]bool{}
			f.operators = map[string]bool{}
			return "unsubscribed from all trips", true
		}
		delete(f.trips, m.TripID)
		delete(f.operators, m.OperatorID)
		return "unsubscribed", true
	}
	return "unknown action: " + m.Action, false
}

// WebSocketHandler returns a handler that relays trip status events from
// NATS to connected clients.
// Clients send JSON: {"action":"subscribe","trip_id":"..."} or
// {"action":"subscribe","operator_id":"..."}.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		log := slog.Default().With("remote_addr", remoteAddr)
		log.Info("ws client connected")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		filter := newWSFilter()
		sub, err := nc.Subscribe(natsadapter.TripStatusSubjects, func(msg *nats.Msg) {
			var head struct {
				TripID     string `json:"trip_id"`
				OperatorID string `json:"operator_id"`
			}
			if err := json.Unmarshal(msg.Data, &head); err != nil {
				return
			}
			if filter.match(head.TripID, head.OperatorID) {
				_ = writeJSON(json.RawMessage(msg.Data))
			}
		})
		if err != nil {
			log.Error("ws subscribe failed", "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}
			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			status, ok := filter.apply(m)
			if !ok {
				_ = writeJSON(map[string]string{"error": status})
				continue
			}
			_ = writeJSON(map[string]string{"status": status, "trip_id": m.TripID, "operator_id": m.OperatorID})
		}

		log.Info("ws client disconnected")
	}
}
