package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/solar-analytics/parquet-gate/internal/scheduler"
)

// JobReporter exposes what the scheduler knows about its jobs
type JobReporter interface {
	GetJobStats() map[string]scheduler.JobStats
	GetJobHistory(jobName string) (*scheduler.JobHistory, error)
}

// SchedulerHandler serves scheduled job status
type SchedulerHandler struct {
	jobs JobReporter
}

// NewSchedulerHandler creates the handler
func NewSchedulerHandler(jobs JobReporter) *SchedulerHandler {
	return &SchedulerHandler{jobs: jobs}
}

// ListJobs returns statistics for every registered job
// GET /api/scheduler/jobs
func (h *SchedulerHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	stats := h.jobs.GetJobStats()

	jobs := make([]scheduler.JobStats, 0, len(stats))
	for _, s := range stats {
		jobs = append(jobs, s)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].JobName < jobs[j].JobName })

	respondJSON(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetJobHistory returns the latest results of one job, newest last
// GET /api/scheduler/jobs/{name}/history?limit=N
func (h *SchedulerHandler) GetJobHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunsLimit)
	}

	jobHistory, err := h.jobs.GetJobHistory(name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	results := jobHistory.GetLatestResults(limit)
	respondJSON(w, http.StatusOK, map[string]any{
		"job":     name,
		"results": results,
		"count":   len(results),
	})
}
