package gateway

import (
	"context"
	"errors"

	"github.com/shaiso/Conveyor/internal/orchestrator"
	"github.com/shaiso/Conveyor/internal/resp"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

// Коды ошибок протокола.
const (
	CodeErr      = "ERR"
	CodeNotFound = "NOTFOUND"
	CodeInvalid  = "INVALID"
	CodeConflict = "CONFLICT"
)

// errorReply переводит ошибку orchestrator в ответ протокола.
// Внутренние ошибки логируются логгером соединения из ctx.
func errorReply(ctx context.Context, err error) resp.Value {
	switch {
	case errors.Is(err, orchestrator.ErrJobNotFound),
		errors.Is(err, orchestrator.ErrPlanNotFound),
		errors.Is(err, orchestrator.ErrWorkerNotFound),
		errors.Is(err, orchestrator.ErrResultNotFound):
		return resp.Errorf(CodeNotFound, "%v", err)

	case errors.Is(err, orchestrator.ErrInvalidPlan),
		errors.Is(err, orchestrator.ErrInvalidJobs):
		return resp.Errorf(CodeInvalid, "%v", err)

	case errors.Is(err, orchestrator.ErrPlanExists),
		errors.Is(err, orchestrator.ErrInvalidTransition):
		return resp.Errorf(CodeConflict, "%v", err)
	}

	telemetry.FromContext(ctx).Error("command failed", "error", err)
	return resp.Errorf(CodeErr, "internal error")
}

func invalid(format string, args ...any) resp.Value {
	return resp.Errorf(CodeInvalid, format, args...)
}
