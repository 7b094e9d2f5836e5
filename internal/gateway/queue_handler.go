package gateway

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shaiso/Conveyor/internal/kv"
	"github.com/shaiso/Conveyor/internal/resp"
)

// BRPopLPush обрабатывает BRPOPLPUSH <src> <dst> <timeout-secs>.
// Ответ — bulk с элементом или $-1 по таймауту.
func (h *Handler) BRPopLPush(ctx context.Context, req *resp.Request) resp.Value {
	secs, err := strconv.ParseFloat(req.Arg(2), 64)
	if err != nil || secs < 0 {
		return invalid("timeout is not a non-negative number: %q", req.Arg(2))
	}

	timeout := time.Duration(secs * float64(time.Second))
	if timeout == 0 || timeout > h.maxBlock {
		timeout = h.maxBlock
	}

	v, err := h.store.BRPopLPush(ctx, req.Arg(0), req.Arg(1), timeout)
	if errors.Is(err, kv.ErrTimeout) {
		return resp.NullBulk()
	}
	if err != nil {
		if ctx.Err() != nil {
			return resp.Errorf(CodeErr, "server shutting down")
		}
		return errorReply(ctx, err)
	}
	return resp.Bulk(v)
}

// LRem обрабатывает LREM <list> <count> <value>.
func (h *Handler) LRem(ctx context.Context, req *resp.Request) resp.Value {
	count, err := strconv.Atoi(req.Arg(1))
	if err != nil {
		return invalid("count is not an integer: %q", req.Arg(1))
	}

	n, err := h.store.LRem(ctx, req.Arg(0), count, req.Args[2])
	if err != nil {
		return errorReply(ctx, err)
	}
	return resp.Integer(int64(n))
}
