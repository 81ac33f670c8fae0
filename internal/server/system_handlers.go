package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/sentinel-stress/internal/database"
	"github.com/aristath/sentinel-stress/internal/scheduler"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

const healthCheckTimeout = 5 * time.Second

// SystemHandlers serves health and job endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	historyDB   *database.DB
	scheduler   *scheduler.Scheduler
	jobs        map[string]scheduler.Job
	jobOrder    []string

	// systemStats is replaceable in tests
	systemStats func() (float64, float64)
}

// NewSystemHandlers creates system handlers. historyDB and sched may be nil.
func NewSystemHandlers(log zerolog.Logger, historyDB *database.DB, sched *scheduler.Scheduler, jobs []scheduler.Job) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		historyDB:   historyDB,
		scheduler:   sched,
		jobs:        make(map[string]scheduler.Job, len(jobs)),
	}
	for _, job := range jobs {
		if _, dup := h.jobs[job.Name()]; !dup {
			h.jobOrder = append(h.jobOrder, job.Name())
		}
		h.jobs[job.Name()] = job
	}
	h.systemStats = h.getSystemStats
	return h
}

// HandleHealth handles GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.systemStats()

	status := "healthy"
	statusCode := http.StatusOK
	historyStatus := "disabled"

	if h.historyDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := h.historyDB.HealthCheck(ctx); err != nil {
			h.log.Warn().Err(err).Msg("History database health check failed")
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
			historyStatus = "unhealthy"
		} else {
			historyStatus = "healthy"
		}
	}

	writeJSON(h.log, w, statusCode, map[string]interface{}{
		"status":         status,
		"version":        Version,
		"service":        "sentinel-stress",
		"uptime_seconds": time.Since(h.startupTime).Seconds(),
		"cpu_percent":    cpuPercent,
		"memory_percent": memPercent,
		"history":        historyStatus,
	})
}

// HandleJobs handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobs(w http.ResponseWriter, r *http.Request) {
	jobs := make([]map[string]interface{}, 0, len(h.jobOrder))
	for _, name := range h.jobOrder {
		entry := map[string]interface{}{"name": name}
		if h.scheduler != nil {
			if next := h.scheduler.NextRun(name); !next.IsZero() {
				entry["next_run"] = next.UTC().Format(time.RFC3339)
			}
		}
		jobs = append(jobs, entry)
	}

	writeJSON(h.log, w, http.StatusOK, map[string]interface{}{
		"data": jobs,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleRunJob handles POST /api/system/jobs/{name}/run
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		writeJSON(h.log, w, http.StatusNotFound, map[string]string{
			"status":  "error",
			"message": "unknown job " + name,
		})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job run triggered")

	var err error
	if h.scheduler != nil {
		err = h.scheduler.RunNow(job)
	} else {
		err = job.Run()
	}
	if err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		writeJSON(h.log, w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	writeJSON(h.log, w, http.StatusOK, map[string]string{
		"status": "success",
		"job":    name,
	})
}

// getSystemStats returns CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms sample keeps the health endpoint responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
