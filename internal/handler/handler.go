// Package handler exposes the interview session and the results dashboard
// as a JSON API, with HTML pages for reviewing results.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	appI18n "github.com/pavelanni/mockinterview/internal/i18n"
	"github.com/pavelanni/mockinterview/internal/metrics"
	"github.com/pavelanni/mockinterview/internal/resume"
	"github.com/pavelanni/mockinterview/internal/session"
	"github.com/pavelanni/mockinterview/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	ctrl    *session.Controller
	store   *store.Store
	events  *EventLog
	metrics *metrics.Metrics
	now     func() time.Time
}

// Config wires a Handler. Controller, Store and Events are required.
type Config struct {
	Controller *session.Controller
	Store      *store.Store
	Events     *EventLog
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// New creates a new Handler.
func New(cfg Config) (*Handler, error) {
	if cfg.Controller == nil || cfg.Store == nil || cfg.Events == nil {
		return nil, errors.New("handler: controller, store and event log are required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Handler{
		ctrl:    cfg.Controller,
		store:   cfg.Store,
		events:  cfg.Events,
		metrics: cfg.Metrics,
		now:     cfg.Now,
	}, nil
}

// Router builds the full HTTP router.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)
	r.Use(appI18n.Middleware)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})
	r.Get("/dashboard", h.handleDashboardPage)
	r.Get("/dashboard/candidates/{candidateID}", h.handleCandidatePage)
	r.Route("/api", h.Routes)
	return r
}

// Routes registers the API routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/state", h.handleState)
	r.Get("/events", h.handleEvents)
	r.Post("/begin", h.handleBegin)
	r.Post("/upload", h.handleUpload)
	r.Post("/info", h.handleInfo)
	r.Post("/draft", h.handleDraft)
	r.Post("/answer", h.handleAnswer)
	r.Post("/resume", h.handleResume)
	r.Post("/new", h.handleStartNew)

	r.Get("/candidates", h.handleCandidates)
	r.Get("/candidates/export.csv", h.handleExportCSV)
	r.Get("/candidates/{candidateID}", h.handleCandidate)
	r.Get("/dashboard/metrics", h.handleDashboardMetrics)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(); err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError maps domain errors to a status code and a localized message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msgID := classify(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Message: appI18n.T(r.Context(), msgID)})
}

func classify(err error) (int, string) {
	var ve *resume.ValidationError
	var se *session.StepError
	switch {
	case errors.As(err, &ve):
		if ve.Code == resume.CodeTooLarge {
			return http.StatusBadRequest, session.MsgErrFileTooLarge
		}
		return http.StatusBadRequest, session.MsgErrInvalidFileType
	case errors.Is(err, session.ErrEmptyAnswer):
		return http.StatusBadRequest, "ErrEmptyAnswer"
	case errors.Is(err, session.ErrEmptyValue):
		return http.StatusBadRequest, "ErrEmptyValue"
	case errors.As(err, &se):
		return http.StatusConflict, "ErrWrongStep"
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict, "ErrBusy"
	case errors.Is(err, session.ErrNoSnapshot):
		return http.StatusNotFound, "ErrNoSnapshot"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "ErrNotFound"
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable, "ErrInternal"
	}
	return http.StatusInternalServerError, "ErrInternal"
}
