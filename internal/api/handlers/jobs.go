package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/cohesion/internal/pipeline"
	"github.com/wonny/cohesion/internal/scheduler"
	"github.com/wonny/cohesion/pkg/logger"
)

// JobScheduler exposes scheduler stats and manual triggers
type JobScheduler interface {
	GetJobStats() []scheduler.JobStats
	RunJob(name string) error
}

// RunHistory lists recorded pipeline runs
type RunHistory interface {
	Recent(ctx context.Context, limit int) ([]pipeline.Run, error)
}

// recentRunLimit is the number of pipeline runs listed
const recentRunLimit = 20

// JobsHandler handles scheduler and pipeline run endpoints
type JobsHandler struct {
	scheduler JobScheduler
	runs      RunHistory
	logger    *logger.Logger
}

// NewJobsHandler creates a new jobs handler. Either dependency may be nil.
func NewJobsHandler(s JobScheduler, runs RunHistory, log *logger.Logger) *JobsHandler {
	return &JobsHandler{
		scheduler: s,
		runs:      runs,
		logger:    log,
	}
}

// GetJobs returns per-job scheduler stats
// GET /api/jobs
func (h *JobsHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondJSON(w, http.StatusOK, []scheduler.JobStats{})
		return
	}
	respondJSON(w, http.StatusOK, h.scheduler.GetJobStats())
}

// RunJob triggers a job outside its schedule
// POST /api/jobs/{name}/run
func (h *JobsHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if h.scheduler == nil {
		respondError(w, http.StatusServiceUnavailable, "Scheduler is disabled")
		return
	}
	if err := h.scheduler.RunJob(name); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "triggered", "job": name})
}

// GetRuns lists the latest pipeline runs
// GET /api/pipeline/runs
func (h *JobsHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondJSON(w, http.StatusOK, []pipeline.Run{})
		return
	}
	runs, err := h.runs.Recent(r.Context(), recentRunLimit)
	if err != nil {
		respondServiceError(w, h.logger, err, "list pipeline runs")
		return
	}
	if runs == nil {
		runs = []pipeline.Run{}
	}
	respondJSON(w, http.StatusOK, runs)
}
