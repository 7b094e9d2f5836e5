package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaiso/Conveyor/internal/domain"
)

// maxPlanBody — ограничение размера тела POST /plans.
const maxPlanBody = 1 << 20

// SubmitPlan отправляет plan.
// POST /api/v1/plans
func (h *Handler) SubmitPlan(w http.ResponseWriter, r *http.Request) {
	var plan domain.Plan
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlanBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&plan); err != nil {
		BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	rec, err := h.orch.SubmitPlan(r.Context(), &plan)
	if HandleError(w, h.logger, err) {
		return
	}

	Created(w, PlanFromDomain(rec))
}

// GetPlan возвращает plan со сводкой статусов.
// GET /api/v1/plans/{id}
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	rec, err := h.orch.GetPlan(r.Context(), chi.URLParam(r, "id"))
	if HandleError(w, h.logger, err) {
		return
	}

	resp := PlanFromDomain(rec)
	resp.Statuses = make(map[domain.JobStatus]int)
	for _, id := range rec.JobIDs {
		job, err := h.orch.GetJob(r.Context(), id)
		if HandleError(w, h.logger, err) {
			return
		}
		resp.Statuses[job.Status]++
	}

	Success(w, resp)
}
