package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-linerecord-pipeline/internal/model"
	"go-linerecord-pipeline/internal/pipeline"
	"go-linerecord-pipeline/internal/records"
	"go-linerecord-pipeline/internal/source"
	"go-linerecord-pipeline/internal/store"
)

const jobsPrefix = "/api/v1/jobs/"

// JobHandler serves the jobs API.
type JobHandler struct {
	Store      *store.DB
	Runner     *pipeline.Runner
	Defaults   records.Config
	JobTimeout string
	// DataDir confines file sources; see source.Confine.
	DataDir string
	Logger  *zap.Logger

	running sync.WaitGroup
}

// Wait blocks until every job started by CreateJob has finished.
func (h *JobHandler) Wait() {
	h.running.Wait()
}

func (h *JobHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// jobIDFrom extracts the id between the jobs prefix and suffix.
func jobIDFrom(path, suffix string) (string, bool) {
	if !strings.HasPrefix(path, jobsPrefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	id := path[len(jobsPrefix) : len(path)-len(suffix)]
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// lookupJob writes the error response and returns false when the job is unknown.
func (h *JobHandler) lookupJob(w http.ResponseWriter, r *http.Request, suffix string) (string, bool) {
	jobID, ok := jobIDFrom(r.URL.Path, suffix)
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return "", false
	}
	if _, err := h.Store.GetJob(jobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Job not found", http.StatusNotFound)
		} else {
			http.Error(w, "Failed to fetch job", http.StatusInternalServerError)
		}
		return "", false
	}
	return jobID, true
}

// CreateJob creates and starts a new line-record job
// @Summary Create a new job
// @Description Validate, store and asynchronously run a line-record job
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body model.JobSpec true "Job configuration"
// @Success 202 {object} map[string]interface{} "Job created"
// @Failure 400 {string} string "Invalid request payload"
// @Failure 500 {string} string "Internal server error"
// @Router /jobs [post]
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var spec model.JobSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	spec.ApplyDefaults(h.Defaults)
	if spec.Timeout == "" {
		spec.Timeout = h.JobTimeout
	}
	if err := spec.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	location, err := source.Confine(h.DataDir, spec.Source.Location)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	spec.Source.Location = location

	jobID := uuid.New().String()
	if err := h.Store.SaveJob(jobID, spec); err != nil {
		h.logger().Error("failed to save job", zap.String("job_id", jobID), zap.Error(err))
		http.Error(w, "Failed to save job", http.StatusInternalServerError)
		return
	}

	h.running.Add(1)
	go func() {
		defer h.running.Done()
		// errors are recorded by the runner against the job
		h.Runner.Run(context.Background(), jobID, spec)
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"message":   "Job created",
		"jobID":     jobID,
		"status":    model.StatusPending,
		"createdAt": time.Now().UTC(),
	})
}

// ListJobs retrieves all jobs
// @Summary List jobs
// @Description List every job with its current status
// @Tags jobs
// @Produce json
// @Success 200 {array} model.JobSummary
// @Failure 500 {string} string "Internal server error"
// @Router /jobs [get]
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Store.ListJobs()
	if err != nil {
		http.Error(w, "Failed to fetch jobs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// GetJob retrieves a specific job
// @Summary Get job
// @Description Job specification and status
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} model.Job
// @Failure 404 {string} string "Job not found"
// @Router /jobs/{id} [get]
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFrom(r.URL.Path, "")
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	job, err := h.Store.GetJob(jobID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch job", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// GetJobResults retrieves stored results for a job
// @Summary Get job results
// @Description Mapping entries, filtered records, count or summary rows of a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Param limit query int false "Maximum number of rows"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {string} string "Job not found"
// @Router /jobs/{id}/results [get]
func (h *JobHandler) GetJobResults(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.lookupJob(w, r, "/results")
	if !ok {
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results, err := h.Store.GetResults(jobID, limit)
	if err != nil {
		http.Error(w, "Failed to retrieve results", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":  jobID,
		"results": results,
		"count":   len(results),
	})
}

// GetJobErrors retrieves errors for a job
// @Summary Get job errors
// @Description Errors recorded while the job ran
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {string} string "Job not found"
// @Router /jobs/{id}/errors [get]
func (h *JobHandler) GetJobErrors(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.lookupJob(w, r, "/errors")
	if !ok {
		return
	}

	errs, err := h.Store.GetJobErrors(jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id": jobID,
		"errors": errs,
		"count":  len(errs),
	})
}

// GetJobMetrics retrieves run metrics for a job
// @Summary Get job metrics
// @Description Lines read, records kept, lines dropped and duration of the last run
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} model.JobMetrics
// @Failure 404 {string} string "Job or metrics not found"
// @Router /jobs/{id}/metrics [get]
func (h *JobHandler) GetJobMetrics(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.lookupJob(w, r, "/metrics")
	if !ok {
		return
	}

	metrics, err := h.Store.GetJobMetrics(jobID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Metrics not available yet", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to retrieve metrics", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
