// Package anthropic implements the remote completion provider against
// the Anthropic Messages API. It performs exactly one outbound call per
// invocation; retries, if any, belong to the orchestration layer so
// failure accounting stays accurate.
package anthropic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/flowboard/aicore/pkg/aierr"
	"github.com/flowboard/aicore/pkg/provider"
)

const (
	// ProviderName is the identifier for this provider.
	ProviderName = "anthropic"

	// DefaultBaseURL is the default Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-3-5-haiku-latest"

	// DefaultMaxOutputTokens bounds responses when neither the request
	// nor the config sets a budget.
	DefaultMaxOutputTokens = 1024

	apiVersion = "2023-06-01"
)

// Provider implements the Anthropic Messages API adapter.
type Provider struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	headers         map[string]string
	httpClient      *http.Client
}

// Option configures the provider.
type Option func(*Provider)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(p *Provider) { p.apiKey = key }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		if url != "" {
			p.baseURL = url
		}
	}
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithMaxOutputTokens sets the default output token budget.
func WithMaxOutputTokens(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.maxOutputTokens = n
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// New creates a new Anthropic provider with the given options.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL:         DefaultBaseURL,
		model:           DefaultModel,
		maxOutputTokens: DefaultMaxOutputTokens,
		headers:         make(map[string]string),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromConfig creates a provider from a Config struct.
func NewFromConfig(cfg provider.Config) (provider.Provider, error) {
	p := New(
		WithAPIKey(cfg.APIKey),
		WithBaseURL(cfg.BaseURL),
		WithModel(cfg.Model),
		WithMaxOutputTokens(cfg.MaxOutputTokens),
	)
	for k, v := range cfg.Headers {
		p.headers[k] = v
	}
	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return ProviderName
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete issues a single Messages API call and returns the
// concatenated text content of the response.
func (p *Provider) Complete(ctx context.Context, req *provider.CompletionRequest) (string, error) {
	if p.apiKey == "" {
		return "", aierr.NewDisabled("anthropic provider has no API key")
	}

	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = p.maxOutputTokens
	}

	body, err := json.Marshal(messagesRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		System:    req.SystemPrompt,
		Messages:  []message{{Role: "user", Content: req.UserPrompt}},
	})
	if err != nil {
		return "", aierr.NewProviderError(fmt.Sprintf("marshal request: %v", err))
	}

	url := strings.TrimSuffix(p.baseURL, "/") + "/v1/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", aierr.NewProviderError(fmt.Sprintf("create request: %v", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	for k, v := range p.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", aierr.NewProviderError(fmt.Sprintf("anthropic call failed: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", aierr.NewProviderError(fmt.Sprintf("read response: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", p.mapError(resp.StatusCode, respBody)
	}

	var msg messagesResponse
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return "", aierr.NewProviderError(fmt.Sprintf("unmarshal response: %v", err))
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", aierr.NewProviderError("response contains no text content")
	}
	return text.String(), nil
}

// mapError converts an Anthropic error response into the shared taxonomy.
func (p *Provider) mapError(statusCode int, body []byte) error {
	msg := "anthropic request failed"
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}

	if statusCode == http.StatusTooManyRequests {
		return aierr.NewRateLimited(msg)
	}
	return aierr.NewProviderError(fmt.Sprintf("%s (status %d)", msg, statusCode))
}
