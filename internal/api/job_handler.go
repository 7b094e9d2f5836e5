package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetJob возвращает job.
// GET /api/v1/jobs/{id}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.orch.GetJob(r.Context(), chi.URLParam(r, "id"))
	if HandleError(w, h.logger, err) {
		return
	}
	Success(w, JobFromDomain(job))
}

// GetJobResult возвращает вывод job.
// GET /api/v1/jobs/{id}/result
func (h *Handler) GetJobResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.orch.GetResult(r.Context(), chi.URLParam(r, "id"))
	if HandleError(w, h.logger, err) {
		return
	}
	Success(w, res)
}

// CancelJob отменяет job и его зависимых.
// POST /api/v1/jobs/{id}/cancel
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if HandleError(w, h.logger, h.orch.CancelJob(r.Context(), id)) {
		return
	}

	job, err := h.orch.GetJob(r.Context(), id)
	if HandleError(w, h.logger, err) {
		return
	}
	Success(w, JobFromDomain(job))
}
