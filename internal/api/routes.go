package api

import "net/http"

// RegisterRoutes registers the feature and health endpoints on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/tasks/{id}/risk", h.TaskRisk)
	mux.HandleFunc("POST /v1/tasks/{id}/breakdown", h.TaskBreakdown)
	mux.HandleFunc("POST /v1/tasks/{id}/priority", h.TaskPriority)

	mux.HandleFunc("GET /healthz", h.Health)
}
