package aicore

import (
	"io"
	"log/slog"
	"time"

	"github.com/flowboard/aicore/internal/governor"
	"github.com/flowboard/aicore/internal/metrics"
	"github.com/flowboard/aicore/pkg/provider"
)

// DefaultTimeout is the per-call deadline when none is configured.
const DefaultTimeout = 60 * time.Second

// Sink receives call outcomes. Implementations must not block; the
// built-in recorder enqueues to a bounded channel and drops on overflow.
type Sink interface {
	Record(metrics.Outcome)
}

// ClientConfig holds all configuration for the orchestration client.
type ClientConfig struct {
	// Provider is the completion backend. Required unless the client
	// is disabled.
	Provider provider.Provider

	// Enabled gates all provider calls. When false, Complete
	// short-circuits with a disabled error before touching quota or
	// the permit pool.
	Enabled bool

	// Timeout is the per-call deadline.
	Timeout time.Duration

	// DailyQuota is the per-caller daily call budget.
	DailyQuota int

	// Concurrency is the size of the outbound permit pool.
	Concurrency int

	// Clock is injected for quota-window tests.
	Clock governor.Clock

	// Recorder receives call outcomes. Defaults to the Prometheus
	// recorder.
	Recorder Sink

	// Logger receives structured logs.
	Logger *slog.Logger
}

// Option configures the client.
type Option func(*ClientConfig)

func defaultConfig() *ClientConfig {
	return &ClientConfig{
		Enabled:     true,
		Timeout:     DefaultTimeout,
		DailyQuota:  governor.DefaultDailyCap,
		Concurrency: governor.DefaultPoolSize,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithProvider sets the completion backend.
func WithProvider(p provider.Provider) Option {
	return func(c *ClientConfig) { c.Provider = p }
}

// WithEnabled gates the AI capability administratively.
func WithEnabled(enabled bool) Option {
	return func(c *ClientConfig) { c.Enabled = enabled }
}

// WithTimeout sets the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *ClientConfig) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithDailyQuota sets the per-caller daily call budget.
func WithDailyQuota(n int) Option {
	return func(c *ClientConfig) {
		if n > 0 {
			c.DailyQuota = n
		}
	}
}

// WithConcurrency sets the outbound permit pool size.
func WithConcurrency(n int) Option {
	return func(c *ClientConfig) {
		if n > 0 {
			c.Concurrency = n
		}
	}
}

// WithClock injects the quota clock.
func WithClock(clock governor.Clock) Option {
	return func(c *ClientConfig) { c.Clock = clock }
}

// WithRecorder sets the outcome sink.
func WithRecorder(s Sink) Option {
	return func(c *ClientConfig) { c.Recorder = s }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *ClientConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}
