package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/qrafiq/truck-etl/internal/api/middleware"
	"github.com/qrafiq/truck-etl/internal/jobs"
	"github.com/qrafiq/truck-etl/internal/report"
)

// ReportHandler serves the daily summary in JSON and HTML form.
type ReportHandler struct {
	warehouse report.Warehouse
	log       zerolog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(wh report.Warehouse, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{warehouse: wh, log: log}
}

// GetReport handles GET /api/report?date=YYYY-MM-DD (default: yesterday).
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.window(w, r)
	if !ok {
		return
	}

	summary, err := report.Summarize(r.Context(), h.warehouse, start, end)
	if err != nil {
		h.log.Error().Err(err).Str("date", summary.Date).Msg("Report aggregation failed")
		// The contract for a failed report run is an explicit
		// no-data signal, not an error trace.
		middleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error":   true,
			"message": "No data retrieved",
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, summary)
}

// GetReportHTML handles GET /api/report/html?date=YYYY-MM-DD.
func (h *ReportHandler) GetReportHTML(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.window(w, r)
	if !ok {
		return
	}

	summary, err := report.Summarize(r.Context(), h.warehouse, start, end)
	if err != nil {
		h.log.Error().Err(err).Msg("Report aggregation failed")
		middleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error":   true,
			"message": "No data retrieved",
		})
		return
	}

	page, err := report.RenderHTML(summary)
	if err != nil {
		h.log.Error().Err(err).Msg("Report rendering failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

func (h *ReportHandler) window(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		start, end := report.PreviousDay(time.Now())
		return start, end, true
	}

	day, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	start, end := report.DayWindow(day)
	return start, end, true
}

// RunsHandler manages queued pipeline runs.
type RunsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	log       zerolog.Logger
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(publisher jobs.Publisher, store jobs.JobStore, log zerolog.Logger) *RunsHandler {
	return &RunsHandler{publisher: publisher, store: store, log: log}
}

// CreateRun handles POST /api/runs.
func (h *RunsHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bucket     string `json:"bucket"`
		Prefix     string `json:"prefix"`
		SampleSize int    `json:"sample_size"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	job := &jobs.EtlRunJob{
		JobID:      uuid.NewString(),
		Bucket:     req.Bucket,
		Prefix:     req.Prefix,
		SampleSize: req.SampleSize,
	}

	if err := h.publisher.PublishEtlRun(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue run")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue run")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Msg("Enqueued pipeline run")
	middleware.WriteJSON(w, http.StatusAccepted, job)
}

// GetRun handles GET /api/runs/{id}.
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Run ID is required")
		return
	}

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Run not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListRuns handles GET /api/runs.
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(r.URL.Query().Get("status")),
	}
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	runs, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}
