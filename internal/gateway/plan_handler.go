package gateway

import (
	"context"
	"encoding/json"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/resp"
)

// SubmitPlan обрабатывает PLAN.SUBMIT <plan-json>.
// Ответ — bulk с ID plan.
func (h *Handler) SubmitPlan(ctx context.Context, req *resp.Request) resp.Value {
	var plan domain.Plan
	if err := json.Unmarshal(req.Args[0], &plan); err != nil {
		return invalid("malformed plan: %v", err)
	}

	rec, err := h.orch.SubmitPlan(ctx, &plan)
	if err != nil {
		return errorReply(ctx, err)
	}
	return resp.BulkString(rec.PlanID)
}

// GetPlan обрабатывает PLAN.GET <plan-id>.
func (h *Handler) GetPlan(ctx context.Context, req *resp.Request) resp.Value {
	rec, err := h.orch.GetPlan(ctx, req.Arg(0))
	if err != nil {
		return errorReply(ctx, err)
	}
	return h.jsonReply(ctx, rec)
}

func (h *Handler) jsonReply(ctx context.Context, v any) resp.Value {
	data, err := json.Marshal(v)
	if err != nil {
		return errorReply(ctx, err)
	}
	return resp.Bulk(data)
}
