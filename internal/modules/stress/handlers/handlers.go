// Package handlers provides HTTP handlers for stress testing operations.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aristath/sentinel-stress/internal/domain"
	"github.com/aristath/sentinel-stress/internal/modules/history"
	"github.com/aristath/sentinel-stress/internal/modules/stress"
	"github.com/aristath/sentinel-stress/internal/reliability"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"
	contentTypeYAML    = "application/yaml"

	maxBodyBytes   = 16 << 20
	archiveTimeout = 30 * time.Second
)

// Run outcomes reported to the RunRecorder
const (
	OutcomeOK              = "ok"
	OutcomeEmptyPortfolio  = "empty_portfolio"
	OutcomeInvalidScenario = "invalid_scenario"
	OutcomeInvalidPosition = "invalid_position"
	OutcomeBadRequest      = "bad_request"
	OutcomeError           = "error"
)

// RunRecorder receives one observation per stress run
type RunRecorder interface {
	RecordRun(outcome string, positions int, duration time.Duration)
}

// Handler handles stress testing HTTP requests
type Handler struct {
	engine   *stress.Engine
	history  history.RepositoryInterface
	archiver reliability.ReportArchiver
	recorder RunRecorder
	log      zerolog.Logger

	archives sync.WaitGroup
}

// NewHandler creates a new stress handler. history, archiver and recorder may be nil.
func NewHandler(
	engine *stress.Engine,
	historyRepo history.RepositoryInterface,
	archiver reliability.ReportArchiver,
	recorder RunRecorder,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		engine:   engine,
		history:  historyRepo,
		archiver: archiver,
		recorder: recorder,
		log:      log.With().Str("handler", "stress").Logger(),
	}
}

// Wait blocks until background report uploads have finished
func (h *Handler) Wait() {
	h.archives.Wait()
}

// HandleRun handles POST /api/stress/run
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var input domain.RunInput
	if err := decodeBody(w, r, &input); err != nil {
		outcome := outcomeFor(err)
		if outcome == OutcomeError {
			outcome = OutcomeBadRequest
		}
		h.record(outcome, 0, start)
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	positions := len(input.Portfolio.Positions)
	if err := input.Validate(); err != nil {
		h.fail(w, r, err, positions, start)
		return
	}

	result, err := h.engine.Run(input.Portfolio, input.Scenario)
	if err != nil {
		h.fail(w, r, err, positions, start)
		return
	}

	if err := stress.CheckInvariants(result); err != nil {
		h.log.Warn().Err(err).Str("scenario", input.Scenario.ID).Msg("Stress result failed invariant check")
	}

	runID := uuid.NewString()
	createdAt := time.Now().UTC()
	rounded := result.Rounded()

	metadata := map[string]interface{}{
		"run_id":         runID,
		"timestamp":      createdAt.Format(time.RFC3339),
		"portfolio_id":   input.Portfolio.ID,
		"portfolio_name": input.Portfolio.Name,
		"scenario_id":    input.Scenario.ID,
		"scenario_name":  input.Scenario.Name,
		"asset_count":    positions,
		"tables_version": result.TablesVersion,
		"duration_ms":    time.Since(start).Milliseconds(),
	}
	if input.Options.ConfidenceLevel > 0 {
		metadata["confidence_level"] = input.Options.ConfidenceLevel
	}
	if input.Options.TimeHorizonDays > 0 {
		metadata["time_horizon_days"] = input.Options.TimeHorizonDays
	}

	response := map[string]interface{}{
		"data":     rounded,
		"metadata": metadata,
	}

	h.persist(history.Run{
		ID:                 runID,
		PortfolioID:        input.Portfolio.ID,
		PortfolioName:      input.Portfolio.Name,
		ScenarioID:         input.Scenario.ID,
		ScenarioName:       input.Scenario.Name,
		PositionCount:      positions,
		PortfolioValue:     rounded.PortfolioValue,
		TotalImpact:        rounded.TotalImpact,
		TotalImpactPercent: rounded.TotalImpactPercent,
		TablesVersion:      result.TablesVersion,
		CreatedAt:          createdAt,
	}, response)

	h.record(OutcomeOK, positions, start)
	h.writeResponse(w, r, http.StatusOK, response)
}

// HandleSensitivities handles POST /api/stress/sensitivities
func (h *Handler) HandleSensitivities(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Portfolio domain.Portfolio `json:"portfolio"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	positions, err := h.engine.Sensitivities(body.Portfolio)
	if err != nil {
		h.writeError(w, r, statusFor(err), err)
		return
	}

	h.writeResponse(w, r, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"base_currency":  body.Portfolio.Base(),
			"tables_version": h.engine.Calculator().Tables().Version,
			"positions":      positions,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleTables handles GET /api/stress/tables (?format=yaml for YAML)
func (h *Handler) HandleTables(w http.ResponseWriter, r *http.Request) {
	tables := h.engine.Calculator().Tables()

	if strings.EqualFold(r.URL.Query().Get("format"), "yaml") {
		data, err := tables.YAML()
		if err != nil {
			h.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", contentTypeYAML)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			h.log.Error().Err(err).Msg("Failed to write tables response")
		}
		return
	}

	h.writeResponse(w, r, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"tables":                   tables,
			"volatility_amplification": h.engine.Config().VolatilityAmplification,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleListRuns handles GET /api/stress/runs
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, r, http.StatusNotFound, errors.New("run history is disabled"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}

	runs, err := h.history.List(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list stress runs")
		h.writeError(w, r, http.StatusInternalServerError, errors.New("failed to list stress runs"))
		return
	}

	h.writeResponse(w, r, http.StatusOK, map[string]interface{}{
		"data": runs,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"count":     len(runs),
		},
	})
}

// HandleGetRun handles GET /api/stress/runs/{id}
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, r, http.StatusNotFound, errors.New("run history is disabled"))
		return
	}

	id := chi.URLParam(r, "id")
	stored, err := h.history.Get(id)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", id).Msg("Failed to get stress run")
		h.writeError(w, r, http.StatusInternalServerError, errors.New("failed to get stress run"))
		return
	}
	if stored == nil {
		h.writeError(w, r, http.StatusNotFound, fmt.Errorf("stress run %s not found", id))
		return
	}

	var result interface{}
	if err := json.Unmarshal(stored.Result, &result); err != nil {
		h.log.Error().Err(err).Str("run_id", id).Msg("Stored stress result is corrupt")
		h.writeError(w, r, http.StatusInternalServerError, errors.New("stored stress result is corrupt"))
		return
	}

	h.writeResponse(w, r, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"run":    stored.Run,
			"result": result,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// persist stores the run and schedules the report upload. Failures are logged, never returned.
func (h *Handler) persist(run history.Run, response map[string]interface{}) {
	if h.history == nil && h.archiver == nil {
		return
	}

	report, err := json.Marshal(response)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to encode stress report")
		return
	}

	saved := false
	if h.history != nil {
		if err := h.history.Save(run, report); err != nil {
			h.log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to save stress run")
		} else {
			saved = true
		}
	}

	if h.archiver == nil {
		return
	}

	h.archives.Add(1)
	go func() {
		defer h.archives.Done()

		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		key, err := h.archiver.Archive(ctx, run.ID, run.CreatedAt, report)
		if err != nil {
			h.log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to archive stress report")
			return
		}
		if saved {
			if err := h.history.SetArchiveKey(run.ID, key); err != nil {
				h.log.Warn().Err(err).Str("run_id", run.ID).Msg("Failed to record archive key")
			}
		}
	}()
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, positions int, start time.Time) {
	h.record(outcomeFor(err), positions, start)
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Stress run failed")
	} else {
		h.log.Debug().Err(err).Msg("Stress run rejected")
	}
	h.writeError(w, r, status, err)
}

func (h *Handler) record(outcome string, positions int, start time.Time) {
	if h.recorder != nil {
		h.recorder.RecordRun(outcome, positions, time.Since(start))
	}
}

// statusFor maps engine errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyPortfolio):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidScenario), errors.Is(err, domain.ErrInvalidPosition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyPortfolio):
		return OutcomeEmptyPortfolio
	case errors.Is(err, domain.ErrInvalidScenario):
		return OutcomeInvalidScenario
	case errors.Is(err, domain.ErrInvalidPosition):
		return OutcomeInvalidPosition
	default:
		return OutcomeError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	h.writeResponse(w, r, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    outcomeForStatus(status, err),
			"message": err.Error(),
		},
	})
}

func outcomeForStatus(status int, err error) string {
	if status == http.StatusNotFound {
		return "not_found"
	}
	code := outcomeFor(err)
	if code == OutcomeError && status == http.StatusBadRequest {
		return OutcomeBadRequest
	}
	return code
}

// writeResponse encodes as msgpack when the client asks for it, JSON otherwise
func (h *Handler) writeResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack) {
		h.writeMsgpack(w, status, data)
		return
	}
	h.writeJSON(w, status, data)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeMsgpack(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", contentTypeMsgpack)
	w.WriteHeader(status)

	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode msgpack response")
	}
}
