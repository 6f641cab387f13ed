package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

var errDisconnected = errors.New("disconnected")

// readinessProbe checks one backing service. Optional probes report but
// never fail readiness.
type readinessProbe struct {
	name     string
	optional bool
	check    func(ctx context.Context) error
}

func readinessProbes(deps *Dependencies) []readinessProbe {
	var probes []readinessProbe
	if deps.DB != nil {
		probes = append(probes, readinessProbe{name: "database", check: deps.DB.Ping})
	}
	if deps.Cache != nil {
		probes = append(probes, readinessProbe{name: "valkey", check: deps.Cache.Ping})
	}
	if deps.NATS != nil {
		nc := deps.NATS
		probes = append(probes, readinessProbe{name: "nats", optional: true, check: func(context.Context) error {
			if !nc.IsConnected() {
				return errDisconnected
			}
			return nil
		}})
	}
	return probes
}

// HealthHandler is the liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":         "healthy",
			"uptime_seconds": int64(time.Since(startedAt).Seconds()),
			"storage":        deps.Storage,
		})
	}
}

// ReadyHandler probes postgres, valkey and NATS. The in-memory store is
// always ready; postgres storage without a pool is not.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	probes := readinessProbes(deps)
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		ready := true
		checks := fiber.Map{}
		if deps.Storage == "memory" {
			checks["storage"] = "in-memory"
		} else if deps.DB == nil {
			checks["database"] = "not configured"
			ready = false
		}
		for _, p := range probes {
			if err := p.check(ctx); err != nil {
				checks[p.name] = "error: " + err.Error()
				if !p.optional {
					ready = false
				}
				continue
			}
			checks[p.name] = "ok"
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": checks})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": checks})
	}
}
