// Package gateway exposes the panel-facing HTTP surface: group, message, and
// contact routes behind a shared-secret auth gate, plus health and metrics.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/PouryDev/support-telegram-account/internal/account"
	"github.com/PouryDev/support-telegram-account/internal/alert"
)

// Config holds the HTTP server settings.
type Config struct {
	Bind            string        `yaml:"bind"`
	APIKey          string        `yaml:"-"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Defaults fills zero values with sensible defaults.
func (c *Config) Defaults() {
	if c.Bind == "" {
		c.Bind = "0.0.0.0:8080"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 120 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}

// Gateway is the panel-facing HTTP server.
type Gateway struct {
	config  Config
	svc     *account.Service
	alerts  *alert.Notifier
	metrics *Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
	server  *http.Server
}

// New wires the gateway with its operation service and alert sink.
func New(cfg Config, svc *account.Service, alerts *alert.Notifier, logger *slog.Logger) *Gateway {
	cfg.Defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		config:  cfg,
		svc:     svc,
		alerts:  alerts,
		metrics: NewMetrics(),
		logger:  logger,
		tracer:  otel.Tracer("gateway"),
	}
}

// Start begins serving in a background goroutine.
func (g *Gateway) Start() error {
	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen on %s: %w", g.config.Bind, err)
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Bind)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop shuts the server down gracefully.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}

// sendAlert forwards a failure notice to the monitoring group and counts it.
func (g *Gateway) sendAlert(ctx context.Context, message string) {
	g.metrics.RecordAlert()
	g.alerts.Send(ctx, message)
}

// logMiddleware emits one slog line per request.
func (g *Gateway) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		g.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

// traceMiddleware opens one span per request.
func (g *Gateway) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := g.tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
