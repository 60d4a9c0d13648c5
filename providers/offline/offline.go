// Package offline implements the deterministic completion provider used
// for development and tests. Responses are canned but shaped per feature
// kind, wire-compatible with what the remote provider returns, so feature
// adapters cannot tell the two apart.
package offline

import (
	"context"

	"github.com/flowboard/aicore/pkg/provider"
)

// ProviderName is the identifier for this provider.
const ProviderName = "offline"

// Provider returns canned, kind-aware completions instantly.
type Provider struct {
	responses map[string]string
}

// New creates an offline provider with the built-in response set.
func New() *Provider {
	return &Provider{responses: map[string]string{
		"risk_prediction": "```json\n" +
			`{"level":"medium","score":50,"factors":["offline provider","no model consulted"],"summary":"Canned risk assessment from the offline provider."}` +
			"\n```",
		"breakdown": "```json\n" +
			`{"subtasks":[{"title":"Clarify requirements","estimate_hours":2},{"title":"Implement","estimate_hours":6},{"title":"Review and test","estimate_hours":3}]}` +
			"\n```",
		"priority_recommendation": "```json\n" +
			`{"priority":"medium","rationale":"Canned recommendation from the offline provider."}` +
			"\n```",
	}}
}

// NewFromConfig creates an offline provider; configuration is ignored.
func NewFromConfig(provider.Config) (provider.Provider, error) {
	return New(), nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return ProviderName
}

// Complete returns the canned response for the request's kind. Unknown
// kinds get a minimal valid object so adapters still have something to
// parse.
func (p *Provider) Complete(_ context.Context, req *provider.CompletionRequest) (string, error) {
	if text, ok := p.responses[req.Kind]; ok {
		return text, nil
	}
	return `{"result":"ok"}`, nil
}
