// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/briefmatch/internal/adapters/http/swagger"
	"github.com/okian/briefmatch/internal/domain/model"
	"github.com/okian/briefmatch/internal/domain/orchestrator"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	StatsProvider
	ReadinessChecker

	// Match starts a progressive run; the instant event is already buffered
	// on the returned run.
	Match(ctx context.Context, b *model.Brief) (*orchestrator.Run, error)
	// Cancel stops an active run. It reports whether the run was found.
	Cancel(ctx context.Context, runID string) bool
	// Score explains a single candidate against a brief.
	Score(ctx context.Context, c *model.Candidate, b *model.Brief) (model.ScoredCandidate, error)
}

// Server wires HTTP routes for the matching API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	matchHandler  *MatchHandler
	runsHandler   *RunsHandler
	scoreHandler  *ScoreHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler: NewHealthHandler(deps),
		statsHandler:  NewStatsHandler(deps),
		matchHandler:  NewMatchHandler(deps),
		runsHandler:   NewRunsHandler(deps),
		scoreHandler:  NewScoreHandler(deps),
	}
}

// Routes returns the router serving every endpoint.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Metrics)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", s.statsHandler.HandleStats)
	swagger.Register(r)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/match", s.matchHandler.HandleMatch)
		r.Post("/score", s.scoreHandler.HandleScore)
		r.Delete("/runs/{id}", s.runsHandler.HandleCancel)
	})
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, orchestrator.ErrNoMatch):
		writeError(w, http.StatusNotFound, "no_match", WrapKind(op, ErrNoMatch, err))
	case errors.Is(err, orchestrator.ErrNilBrief):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "canceled", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	}
}

func validateBrief(b *model.Brief) error {
	switch {
	case strings.TrimSpace(b.ProjectType) == "" &&
		strings.TrimSpace(b.Industry) == "" &&
		len(b.Styles) == 0 &&
		strings.TrimSpace(b.Requirements) == "":
		return errors.New("brief needs at least one of project_type, industry, styles or requirements")
	case b.Budget < 0:
		return errors.New("budget must not be negative")
	}
	return nil
}
