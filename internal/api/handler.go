// Package api provides the HTTP handlers for the AI feature endpoints.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/flowboard/aicore"
	"github.com/flowboard/aicore/internal/feature"
	"github.com/flowboard/aicore/internal/observability"
	"github.com/flowboard/aicore/pkg/aierr"
)

// CallerHeader names the header carrying the quota identity.
const CallerHeader = "X-Caller-ID"

// Handler serves the feature endpoints over HTTP.
type Handler struct {
	ai        *aicore.Client
	risk      *feature.RiskPredictor
	breakdown *feature.Breakdown
	priority  *feature.PriorityAdvisor
	logger    *slog.Logger
}

// NewHandler creates a handler wired to the AI client and feature adapters.
func NewHandler(ai *aicore.Client, deps feature.Deps, logger *slog.Logger) *Handler {
	return &Handler{
		ai:        ai,
		risk:      feature.NewRiskPredictor(deps),
		breakdown: feature.NewBreakdown(deps),
		priority:  feature.NewPriorityAdvisor(deps),
		logger:    logger,
	}
}

// TaskRisk handles POST /v1/tasks/{id}/risk.
func (h *Handler) TaskRisk(w http.ResponseWriter, r *http.Request) {
	result, err := h.risk.Predict(r.Context(), r.PathValue("id"), r.Header.Get(CallerHeader))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// TaskBreakdown handles POST /v1/tasks/{id}/breakdown.
func (h *Handler) TaskBreakdown(w http.ResponseWriter, r *http.Request) {
	result, err := h.breakdown.Split(r.Context(), r.PathValue("id"), r.Header.Get(CallerHeader))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// TaskPriority handles POST /v1/tasks/{id}/priority.
func (h *Handler) TaskPriority(w http.ResponseWriter, r *http.Request) {
	result, err := h.priority.Recommend(r.Context(), r.PathValue("id"), r.Header.Get(CallerHeader))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.ai.Health())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *aierr.Error
	if !errors.As(err, &ae) {
		ae = aierr.From(err)
	}

	h.logger.Warn("request failed",
		"path", r.URL.Path,
		"request_id", observability.RequestIDFromContext(r.Context()),
		"kind", ae.Kind,
		"status", ae.Status,
		"error", ae.Message,
	)

	h.writeJSON(w, ae.Status, ErrorResponse{Error: ErrorDetail{
		Message: ae.Message,
		Type:    string(ae.Kind),
	}})
}
