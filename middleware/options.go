package middleware

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxBodyBytes is the largest request body read for validation.
const DefaultMaxBodyBytes int64 = 10 << 20

// Option is a functional option for configuring a Middleware.
type Option func(*config) error

type config struct {
	logger *slog.Logger

	// validateResponses buffers responses and validates them before sending.
	validateResponses bool

	metrics *Metrics

	tracerProvider trace.TracerProvider

	maxBodyBytes int64
}

func defaultConfig() *config {
	return &config{
		logger:         slog.Default(),
		tracerProvider: otel.GetTracerProvider(),
		maxBodyBytes:   DefaultMaxBodyBytes,
	}
}

// WithResponseValidation enables response validation. Responses are buffered
// until the handler returns and only sent when they satisfy the contract; a
// violating response is replaced by a 500 error document.
// Default is false.
func WithResponseValidation(enabled bool) Option {
	return func(c *config) error {
		c.validateResponses = enabled
		return nil
	}
}

// WithLogger sets the logger for rejected traffic.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return fmt.Errorf("middleware: logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics records validation outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) error {
		c.metrics = m
		return nil
	}
}

// WithTracerProvider sets the provider validation spans are created from.
// Default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) error {
		if tp == nil {
			return fmt.Errorf("middleware: tracer provider cannot be nil")
		}
		c.tracerProvider = tp
		return nil
	}
}

// WithMaxBodyBytes limits the request body size read for validation. Larger
// requests are rejected with 413.
// Default is DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("middleware: max body bytes must be positive, got %d", n)
		}
		c.maxBodyBytes = n
		return nil
	}
}
