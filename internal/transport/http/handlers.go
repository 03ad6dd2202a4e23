package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/joshdurbin/js4hs-edge/internal/domain"
	"github.com/joshdurbin/js4hs-edge/internal/repository"
	"github.com/joshdurbin/js4hs-edge/internal/service"
)

const maxRequestBody = 1 << 20

// HealthChecker reports whether a dependency is usable
type HealthChecker func(ctx context.Context) error

// Handler holds the HTTP handlers for the job board and QR links
type Handler struct {
	jobs   service.JobBoard
	links  service.LinkService
	health HealthChecker
}

// NewHandler creates a new HTTP handler. health may be nil.
func NewHandler(jobs service.JobBoard, links service.LinkService, health HealthChecker) *Handler {
	return &Handler{
		jobs:   jobs,
		links:  links,
		health: health,
	}
}

// CreateJob handles POST /api/jobs
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateJobRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("invalid JSON in create job request")
		writeError(w, r, http.StatusBadRequest, "Invalid JSON")
		return
	}

	job, err := h.jobs.CreateJob(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err, "failed to create job")
		return
	}

	writeJSON(w, r, http.StatusCreated, job)
}

// GetJob handles GET /api/jobs/{id}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.jobs.GetJob(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err, "failed to get job")
		return
	}

	writeJSON(w, r, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs?page=N
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, service.ErrInvalidPage.Error())
			return
		}
		page = p
	}

	result, err := h.jobs.ListJobs(r.Context(), page)
	if err != nil {
		h.serviceError(w, r, err, "failed to list jobs")
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// IssueLink handles GET /api/qr/link?target=URL
func (h *Handler) IssueLink(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		writeError(w, r, http.StatusBadRequest, "target is required")
		return
	}

	link, err := h.links.IssueLink(target)
	if err != nil {
		h.serviceError(w, r, err, "failed to issue link")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, r, http.StatusOK, link)
}

// ValidateLink handles GET /api/qr/validate?url=URL. The answer is
// advisory, so an invalid link is still a 200.
func (h *Handler) ValidateLink(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, r, http.StatusBadRequest, "url is required")
		return
	}

	res := h.links.ValidateLink(rawURL)

	resp := domain.LinkValidationResponse{
		IsValid: res.Valid,
		Reason:  res.Reason,
	}
	if res.Valid && res.Timestamped {
		remaining := res.RemainingSeconds()
		resp.TimeRemaining = &remaining
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, r, http.StatusOK, resp)
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("health check failed")
			writeError(w, r, http.StatusServiceUnavailable, "unavailable")
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte("ok")); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("failed to write health response")
	}
}

// serviceError maps service and repository errors to status codes
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrJobNotFound):
		writeError(w, r, http.StatusNotFound, repository.ErrJobNotFound.Error())
	case errors.Is(err, service.ErrInvalidJob),
		errors.Is(err, service.ErrInvalidPage),
		errors.Is(err, service.ErrInvalidTarget):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Msg(msg)
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to encode response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, domain.ErrorResponse{Error: msg})
}
