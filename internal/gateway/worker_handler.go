package gateway

import (
	"context"

	"github.com/shaiso/Conveyor/internal/resp"
)

// Heartbeat обрабатывает WORKER.HEARTBEAT <worker-id>.
// Ответ +DRAIN означает запрос на остановку.
func (h *Handler) Heartbeat(ctx context.Context, req *resp.Request) resp.Value {
	workerID := req.Arg(0)
	if workerID == "" {
		return invalid("worker id is required")
	}

	drain, err := h.orch.Heartbeat(ctx, workerID)
	if err != nil {
		return errorReply(ctx, err)
	}
	if drain {
		return resp.Simple(resp.ReplyDrain)
	}
	return resp.OK()
}

// RegisterTools обрабатывает WORKER.TOOLS <worker-id> [tool ...].
func (h *Handler) RegisterTools(ctx context.Context, req *resp.Request) resp.Value {
	if err := h.orch.RegisterTools(ctx, req.Arg(0), restArgs(req)); err != nil {
		return errorReply(ctx, err)
	}
	return resp.OK()
}

// RegisterTags обрабатывает WORKER.TAGS <worker-id> [tag ...].
func (h *Handler) RegisterTags(ctx context.Context, req *resp.Request) resp.Value {
	if err := h.orch.RegisterTags(ctx, req.Arg(0), restArgs(req)); err != nil {
		return errorReply(ctx, err)
	}
	return resp.OK()
}

// RequestShutdown обрабатывает WORKER.SHUTDOWN <worker-id>.
func (h *Handler) RequestShutdown(ctx context.Context, req *resp.Request) resp.Value {
	if err := h.orch.RequestShutdown(ctx, req.Arg(0)); err != nil {
		return errorReply(ctx, err)
	}
	return resp.OK()
}

func restArgs(req *resp.Request) []string {
	out := make([]string, 0, len(req.Args)-1)
	for _, a := range req.Args[1:] {
		out = append(out, string(a))
	}
	return out
}
