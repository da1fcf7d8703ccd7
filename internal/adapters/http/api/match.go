package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/briefmatch/internal/domain/model"
)

// clientHeader names the client when the brief omits client_id.
const clientHeader = "X-Client-ID"

// MatchHandler handles match requests.
type MatchHandler struct {
	deps Dependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps Dependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

type matchResponse struct {
	RunID  string             `json:"run_id"`
	Events []model.MatchEvent `json:"events"`
}

// HandleMatch handles POST /v1/match. By default the run is streamed as
// server-sent events, one per phase, and the response ends when the run
// does. With stream=false the events are collected and returned as JSON.
func (h *MatchHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.match"
	var b model.Brief
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateBrief(&b); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if b.ClientID == "" {
		b.ClientID = r.Header.Get(clientHeader)
	}

	run, err := h.deps.Match(r.Context(), &b)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.Header().Set("X-Run-ID", run.ID)

	stream := true
	if v := r.URL.Query().Get("stream"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			stream = parsed
		}
	}
	flusher, ok := w.(http.Flusher)
	if !stream || !ok {
		resp := matchResponse{RunID: run.ID, Events: []model.MatchEvent{}}
		for ev := range run.Events() {
			resp.Events = append(resp.Events, ev)
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range run.Events() {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.Phase, ev.Phase, payload); err != nil {
			run.Cancel()
			return
		}
		flusher.Flush()
	}
}
