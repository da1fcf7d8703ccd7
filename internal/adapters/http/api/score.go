package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/briefmatch/internal/domain/model"
)

// ScoreHandler handles single-candidate scoring requests.
type ScoreHandler struct {
	deps Dependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

type scoreRequest struct {
	Brief     model.Brief     `json:"brief"`
	Candidate model.Candidate `json:"candidate"`
}

// HandleScore handles POST /v1/score.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Candidate.ID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing candidate.id")))
		return
	}
	if err := validateBrief(&req.Brief); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sc, err := h.deps.Score(r.Context(), &req.Candidate, &req.Brief)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}
