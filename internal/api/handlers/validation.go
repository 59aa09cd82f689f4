package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
	"github.com/solar-analytics/parquet-gate/internal/history"
	"github.com/solar-analytics/parquet-gate/internal/rules"
	"github.com/solar-analytics/parquet-gate/internal/validation"
	"github.com/solar-analytics/parquet-gate/pkg/logger"
	"github.com/solar-analytics/parquet-gate/pkg/redis"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// RunExecutor runs one validation and records it
type RunExecutor interface {
	Run(ctx context.Context, inputDir string) (*contracts.ValidationRun, error)
}

// ValidationHandler serves the gate's runs and rules
// ⭐ SSOT: validation API handlers live in this struct only
type ValidationHandler struct {
	runner    RunExecutor
	store     contracts.RunReader
	inputDir  string
	rules     rules.Rules
	rulesHash string
	logger    *logger.Logger
}

// NewValidationHandler creates the handler. inputDir is the only batch
// directory the API validates; requests cannot choose another path.
func NewValidationHandler(
	runner RunExecutor,
	store contracts.RunReader,
	inputDir string,
	r rules.Rules,
	rulesHash string,
	log *logger.Logger,
) *ValidationHandler {
	return &ValidationHandler{
		runner:    runner,
		store:     store,
		inputDir:  inputDir,
		rules:     r.Clone(),
		rulesHash: rulesHash,
		logger:    log,
	}
}

// RunResponse is a recorded run plus its printable summary
type RunResponse struct {
	Run     *contracts.ValidationRun `json:"run"`
	Summary string                   `json:"summary,omitempty"`
}

func newRunResponse(run *contracts.ValidationRun) RunResponse {
	resp := RunResponse{Run: run}
	if run.Report != nil {
		resp.Summary = validation.Summary(run.Report)
	}
	return resp
}

// GetLatest returns the most recent run
// GET /api/validation/latest
func (h *ValidationHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	run, err := h.store.Latest(r.Context())
	if errors.Is(err, history.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No validation run recorded yet")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest validation run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve latest run")
		return
	}

	respondJSON(w, http.StatusOK, newRunResponse(run))
}

// ListRuns returns recent runs, newest first
// GET /api/validation/runs?limit=20
func (h *ValidationHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list validation runs")
		respondError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun returns one run by ID
// GET /api/validation/runs/{id}
func (h *ValidationHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := h.store.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Validation run not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("run_id", id).Error("Failed to get validation run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve run")
		return
	}

	respondJSON(w, http.StatusOK, newRunResponse(run))
}

// TriggerRun validates the configured batch now.
// 200 passed, 422 critical failures, 409 another run in progress,
// 500 validation could not complete.
// POST /api/validation/run
func (h *ValidationHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithField("input_dir", h.inputDir)

	run, err := h.runner.Run(r.Context(), h.inputDir)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, newRunResponse(run))
		return
	case errors.Is(err, redis.ErrLocked):
		respondError(w, http.StatusConflict, "Another validation run is in progress")
		return
	}

	if _, ok := contracts.IsCriticalFailure(err); ok {
		log.WithField("run_id", run.ID).Warn("Batch failed quality gate")
		respondJSON(w, http.StatusUnprocessableEntity, newRunResponse(run))
		return
	}

	log.WithError(err).Error("Validation run failed")
	if run == nil {
		respondError(w, http.StatusInternalServerError, "Validation run failed")
		return
	}
	respondJSON(w, http.StatusInternalServerError, newRunResponse(run))
}

// GetRules returns the rules in effect and their hash
// GET /api/validation/rules
func (h *ValidationHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"rules": h.rules,
		"hash":  h.rulesHash,
	})
}
