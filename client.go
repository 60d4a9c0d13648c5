package aicore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowboard/aicore/internal/governor"
	"github.com/flowboard/aicore/internal/metrics"
	"github.com/flowboard/aicore/pkg/aierr"
)

// Client orchestrates completion calls: disabled gate, daily quota,
// concurrency permit, deadline race, outcome recording. It is safe for
// concurrent use by multiple goroutines.
type Client struct {
	config   *ClientConfig
	governor *governor.Governor
	recorder Sink
	ownsRec  bool
	logger   *slog.Logger
}

// New creates an orchestration client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Enabled && cfg.Provider == nil {
		return nil, fmt.Errorf("aicore: enabled client requires a provider")
	}

	c := &Client{
		config:   cfg,
		governor: governor.New(cfg.DailyQuota, cfg.Concurrency, cfg.Clock),
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
	}
	if c.recorder == nil {
		c.recorder = metrics.NewRecorder(0)
		c.ownsRec = true
	}

	providerName := "none"
	if cfg.Provider != nil {
		providerName = cfg.Provider.Name()
	}
	c.logger.Info("aicore client initialized",
		"provider", providerName,
		"enabled", cfg.Enabled,
		"daily_quota", cfg.DailyQuota,
		"concurrency", cfg.Concurrency,
		"timeout", cfg.Timeout,
	)
	return c, nil
}

// Complete runs one governed completion call and returns the raw model
// text. Every call terminates in exactly one state: the text, or one
// error from the aierr taxonomy, propagated from the layer that produced
// it and never relabeled.
func (c *Client) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	if req == nil {
		return "", aierr.NewProviderError("request is nil")
	}

	if !c.config.Enabled {
		return "", aierr.NewDisabled("AI features are disabled")
	}

	if err := c.governor.Allow(req.CallerID); err != nil {
		metrics.QuotaRejections.Inc()
		c.record(req.Kind, 0, err)
		return "", err
	}

	start := time.Now()

	if err := c.governor.Acquire(ctx); err != nil {
		err := aierr.NewProviderError(fmt.Sprintf("wait for permit: %v", err))
		c.record(req.Kind, time.Since(start), err)
		return "", err
	}
	defer c.governor.Release()

	metrics.InFlight.Inc()
	defer metrics.InFlight.Dec()

	text, err := c.race(ctx, req)
	elapsed := time.Since(start)
	c.record(req.Kind, elapsed, err)

	if err != nil {
		c.logger.Warn("ai call failed",
			"kind", req.Kind,
			"error_kind", string(aierr.KindOf(err)),
			"duration_ms", elapsed.Milliseconds(),
		)
		return "", err
	}

	c.logger.Debug("ai call completed",
		"kind", req.Kind,
		"duration_ms", elapsed.Milliseconds(),
	)
	return text, nil
}

type callResult struct {
	text string
	err  error
}

// race runs the provider call against the configured deadline. When the
// timer fires first the call is abandoned, not cancelled: its eventual
// result lands in the buffered channel and is discarded. The call was
// already charged against quota, which is the accepted pessimistic
// trade-off.
func (c *Client) race(ctx context.Context, req *CompletionRequest) (string, error) {
	timer := time.NewTimer(c.config.Timeout)
	defer timer.Stop()

	resultCh := make(chan callResult, 1)
	go func() {
		text, err := c.config.Provider.Complete(ctx, req)
		resultCh <- callResult{text: text, err: err}
	}()

	select {
	case res := <-resultCh:
		return res.text, res.err
	case <-timer.C:
		return "", aierr.NewTimeout(
			fmt.Sprintf("ai call exceeded %s deadline", c.config.Timeout))
	case <-ctx.Done():
		return "", aierr.NewTimeout(fmt.Sprintf("ai call abandoned: %v", ctx.Err()))
	}
}

func (c *Client) record(kind string, elapsed time.Duration, err error) {
	outcome := metrics.Outcome{
		Kind:     kind,
		Duration: elapsed,
		Success:  err == nil,
	}
	if err != nil {
		outcome.ErrorKind = string(aierr.KindOf(err))
	}
	c.recorder.Record(outcome)
}

// Health reports the provider-health probe payload.
func (c *Client) Health() Health {
	h := Health{Enabled: c.config.Enabled}
	if c.config.Provider != nil {
		h.Provider = c.config.Provider.Name()
	}
	return h
}

// Quota exposes the quota tracker, for stats endpoints and tests.
func (c *Client) Quota() *governor.Quota {
	return c.governor.Quota()
}

// Pool exposes the concurrency pool, for stats endpoints and tests.
func (c *Client) Pool() *governor.Semaphore {
	return c.governor.Pool()
}

// Close releases the client's resources. Only a recorder the client
// created itself is closed.
func (c *Client) Close() {
	if c.ownsRec {
		if r, ok := c.recorder.(*metrics.Recorder); ok {
			r.Close()
		}
	}
}
