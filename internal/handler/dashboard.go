package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/mockinterview/internal/dashboard"
	appI18n "github.com/pavelanni/mockinterview/internal/i18n"
	"github.com/pavelanni/mockinterview/internal/model"
	"github.com/pavelanni/mockinterview/internal/store"
	"github.com/pavelanni/mockinterview/internal/views"
)

type candidateRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	FinalScore  int    `json:"finalScore"`
	Category    string `json:"category"`
	CompletedAt string `json:"completedAt"`
}

type candidatesResponse struct {
	Count      int            `json:"count"`
	Candidates []candidateRow `json:"candidates"`
}

// filtered loads completed candidates and applies the request's query.
func (h *Handler) filtered(w http.ResponseWriter, r *http.Request) ([]model.CompletedCandidate, bool) {
	q, err := dashboard.ParseQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Message: appI18n.T(r.Context(), "ErrInternal")})
		return nil, false
	}
	list, err := h.store.ListCompleted()
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return dashboard.Apply(list, q), true
}

func (h *Handler) handleCandidates(w http.ResponseWriter, r *http.Request) {
	list, ok := h.filtered(w, r)
	if !ok {
		return
	}
	resp := candidatesResponse{Count: len(list), Candidates: make([]candidateRow, 0, len(list))}
	for _, c := range list {
		d := dashboard.BuildDetails(c)
		resp.Candidates = append(resp.Candidates, candidateRow{
			ID:          c.ID,
			Name:        c.Name,
			Email:       c.Email,
			Phone:       c.Phone,
			FinalScore:  d.FinalScore,
			Category:    d.Category,
			CompletedAt: d.CompletedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCompleted(chi.URLParam(r, "candidateID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.BuildDetails(c))
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	list, ok := h.filtered(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+dashboard.ExportFilename(h.now())+`"`)
	if err := dashboard.WriteCSV(w, list); err != nil {
		slog.Error("csv export failed", "error", err)
	}
}

func (h *Handler) handleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListCompleted()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Summarize(list))
}

func (h *Handler) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	q, err := dashboard.ParseQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	list, err := h.store.ListCompleted()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := views.DashboardData{Summary: dashboard.Summarize(list), Query: q}
	for _, c := range dashboard.Apply(list, q) {
		data.Rows = append(data.Rows, dashboard.BuildDetails(c))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.DashboardPage(data).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleCandidatePage(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCompleted(chi.URLParam(r, "candidateID"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.CandidatePage(dashboard.BuildDetails(c)).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}
