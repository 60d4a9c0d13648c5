// Package aicore is the orchestration and resilience layer between the
// task-management application and its LLM completion provider. It bounds
// concurrent provider load, enforces per-caller daily quotas and call
// deadlines, and classifies every failure into a closed error taxonomy
// so feature code can decide between surfacing an error and serving a
// rule-based fallback.
//
// Basic usage:
//
//	client, err := aicore.New(
//	    aicore.WithProvider(anthropic.New(
//	        anthropic.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
//	    )),
//	    aicore.WithTimeout(60*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	text, err := client.Complete(ctx, &aicore.CompletionRequest{
//	    Kind:       "risk_prediction",
//	    CallerID:   user.Email,
//	    UserPrompt: prompt,
//	})
package aicore

import (
	"github.com/flowboard/aicore/pkg/provider"
)

// Version is the current version of the module.
const Version = "1.2.0"

// CompletionRequest is re-exported so callers need not import
// pkg/provider for the common case.
type CompletionRequest = provider.CompletionRequest

// Health reports the provider-health probe payload.
type Health struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider"`
}
