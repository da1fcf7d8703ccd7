package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RunsHandler handles run management requests.
type RunsHandler struct {
	deps Dependencies
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps Dependencies) *RunsHandler {
	return &RunsHandler{deps: deps}
}

// HandleCancel handles DELETE /v1/runs/{id}.
func (h *RunsHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	const op = "api.cancel_run"
	id := chi.URLParam(r, "id")
	if !h.deps.Cancel(r.Context(), id) {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
