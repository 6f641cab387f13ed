package http

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

const loggerKey ctxKey = "logger"

var tracer = otel.Tracer("github.com/samirrijal/busseat/internal/adapters/http")

// RequestObserver wraps every request in a server span, continuing any
// trace found in the W3C headers. Handlers get a logger tagged with the
// request ID through LoggerFromCtx, and one access record is written per
// request once the handler returns.
func RequestObserver(logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := c.Method()

		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), requestHeaderCarrier{&c.Request().Header})
		ctx, span := tracer.Start(ctx, method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		reqLogger := logger
		if rid, _ := c.Locals("requestid").(string); rid != "" {
			reqLogger = logger.With("request_id", rid)
			span.SetAttributes(attribute.String("http.request_id", rid))
		}
		c.SetUserContext(context.WithValue(ctx, loggerKey, reqLogger))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else if status < 400 {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path

		span.SetName(method + " " + route)
		span.SetAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, fasthttp.StatusMessage(status))
		}

		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", c.Path()),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
		}
		if op := c.Params("operatorId"); op != "" {
			attrs = append(attrs, slog.String("operator_id", op))
		}
		if trip := c.Params("id"); trip != "" {
			attrs = append(attrs, slog.String("trip_id", trip))
		}

		level := slog.LevelInfo
		switch {
		case err != nil || status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		reqLogger.LogAttrs(c.UserContext(), level, "request", attrs...)

		return err
	}
}

// LoggerFromCtx returns the request logger, or slog.Default outside a request.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// requestHeaderCarrier adapts fasthttp request headers to the otel
// propagation.TextMapCarrier interface.
type requestHeaderCarrier struct {
	h *fasthttp.RequestHeader
}

func (c requestHeaderCarrier) Get(key string) string { return string(c.h.Peek(key)) }

func (c requestHeaderCarrier) Set(key, value string) { c.h.Set(key, value) }

func (c requestHeaderCarrier) Keys() []string {
	var keys []string
	c.h.VisitAll(func(k, _ []byte) {
		keys = append(keys, string(k))
	})
	return keys
}
