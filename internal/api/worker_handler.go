package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaiso/Conveyor/internal/kv"
)

// healthProbeKey — ключ, которым /healthz проверяет хранилище.
const healthProbeKey = "health:probe"

// Health проверяет доступность хранилища.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	_, err := h.store.Get(r.Context(), healthProbeKey)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		h.logger.Warn("health check failed", "error", err)
		JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListWorkers возвращает реестр воркеров.
// GET /api/v1/workers
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.orch.Workers(r.Context())
	if HandleError(w, h.logger, err) {
		return
	}

	now := h.now()
	result := make([]WorkerResponse, len(workers))
	for i, info := range workers {
		result[i] = WorkerFromDomain(info, now, h.staleAfter)
	}
	List(w, result, len(result))
}

// GetWorker возвращает запись воркера.
// GET /api/v1/workers/{id}
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	info, err := h.orch.Worker(r.Context(), chi.URLParam(r, "id"))
	if HandleError(w, h.logger, err) {
		return
	}
	Success(w, WorkerFromDomain(info, h.now(), h.staleAfter))
}

// ShutdownWorker просит воркера остановиться: следующий heartbeat получит DRAIN.
// POST /api/v1/workers/{id}/shutdown
func (h *Handler) ShutdownWorker(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if HandleError(w, h.logger, h.orch.RequestShutdown(r.Context(), id)) {
		return
	}

	info, err := h.orch.Worker(r.Context(), id)
	if HandleError(w, h.logger, err) {
		return
	}
	Accepted(w, WorkerFromDomain(info, h.now(), h.staleAfter))
}
