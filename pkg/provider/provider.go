// Package provider defines the interface for LLM completion backends.
// The orchestration layer is written against this interface so feature
// adapters never know whether text came from a remote model or a canned
// offline variant.
package provider

import (
	"context"
	"time"
)

// CompletionRequest describes a single completion call. It is built once
// by a feature adapter and not mutated afterwards.
type CompletionRequest struct {
	// SystemPrompt sets the model's role and output contract.
	SystemPrompt string `json:"system_prompt"`

	// UserPrompt carries the domain data the model should reason about.
	UserPrompt string `json:"user_prompt"`

	// Kind tags the feature making the call, e.g. "risk_prediction".
	// Used for metrics labels and for shape-aware offline responses.
	Kind string `json:"kind"`

	// CallerID is the application-level identity charged against the
	// daily quota. Empty means an unmetered system call.
	CallerID string `json:"caller_id,omitempty"`

	// MaxOutputTokens bounds the response size. Zero means the
	// configured default applies.
	MaxOutputTokens int `json:"max_output_tokens,omitempty"`
}

// Provider is a completion backend. Implementations map their transport,
// auth, and protocol failures to aierr kinds; they never retry internally,
// so the governor's failure accounting stays accurate.
type Provider interface {
	// Name returns the provider identifier (e.g. "anthropic", "offline").
	Name() string

	// Complete performs exactly one completion call and returns the raw
	// model text.
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
}

// Config contains provider construction settings.
type Config struct {
	Name            string
	Type            string
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
	Headers         map[string]string
}

// Factory creates provider instances from configuration.
type Factory func(cfg Config) (Provider, error)
