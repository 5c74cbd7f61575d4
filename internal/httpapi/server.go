// Package httpapi is the HTTP transport adapter: request routing, JSON
// codec, and RateLimit-* header emission over the decision engine.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	otelecho "go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/samir-okafor/quotaguard/pkg/events"
	"github.com/samir-okafor/quotaguard/pkg/ratelimit"
)

const shutdownGrace = 10 * time.Second

// Server wraps an echo.Echo bound to a decision engine.
type Server struct {
	echo   *echo.Echo
	engine *ratelimit.Engine
	logger *slog.Logger
}

// New builds a Server, wiring request tracing and logging ahead of the
// charge route.
func New(engine *ratelimit.Engine, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(otelecho.Middleware("quotaguard"))
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	s := &Server{echo: e, engine: engine, logger: logger}
	e.POST("/api/v1/buckets/:bucket/charges", s.postCharge)

	return s
}

// requestLogger logs each request at Info with method, path, status, and
// latency.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.InfoContext(c.Request().Context(), "http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			)
			return nil
		},
	})
}

// ListenAndServe starts the HTTP server on addr, blocking until it stops.
func (s *Server) ListenAndServe(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully drains in-flight requests before stopping.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// SubscribeShutdown ties bus's "shutdown" topic to a graceful Shutdown call.
func (s *Server) SubscribeShutdown(ctx context.Context, bus events.Bus) error {
	return bus.Subscribe(ctx, "shutdown", func(ctx context.Context, e events.Event) error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			s.logger.ErrorContext(ctx, "http server shutdown error", "error", err)
		}
		return nil
	})
}
