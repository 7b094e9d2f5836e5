package gateway

import (
	"context"
	"errors"
	"strconv"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/orchestrator"
	"github.com/shaiso/Conveyor/internal/resp"
)

// GetJob обрабатывает JOB.GET <job-id>.
func (h *Handler) GetJob(ctx context.Context, req *resp.Request) resp.Value {
	job, err := h.orch.GetJob(ctx, req.Arg(0))
	if err != nil {
		return errorReply(ctx, err)
	}
	return h.jsonReply(ctx, job)
}

// StartJob обрабатывает JOB.START <worker-id> <job-id>.
func (h *Handler) StartJob(ctx context.Context, req *resp.Request) resp.Value {
	workerID, jobID := req.Arg(0), req.Arg(1)
	if workerID == "" || jobID == "" {
		return invalid("worker id and job id are required")
	}
	if err := h.orch.StartJob(ctx, jobID, workerID); err != nil {
		return errorReply(ctx, err)
	}
	return resp.OK()
}

// PostJobResult обрабатывает
// JOB.RESULT <worker-id> <job-id> <completed|failed> <exit-code> <stdout> <stderr>.
//
// Результат от воркера, который не владеет running job, отклоняется с CONFLICT.
func (h *Handler) PostJobResult(ctx context.Context, req *resp.Request) resp.Value {
	workerID, jobID := req.Arg(0), req.Arg(1)

	status, ok := domain.ParseResultStatus(req.Arg(2))
	if !ok {
		return invalid("result status must be completed or failed, got %q", req.Arg(2))
	}
	exitCode, err := strconv.Atoi(req.Arg(3))
	if err != nil {
		return invalid("exit code is not an integer: %q", req.Arg(3))
	}

	job, err := h.orch.GetJob(ctx, jobID)
	if err != nil {
		return errorReply(ctx, err)
	}
	if job.Status == domain.JobStatusRunning && job.WorkerID != workerID {
		return resp.Errorf(CodeConflict, "job %s is owned by worker %s", jobID, job.WorkerID)
	}

	res := &domain.JobResult{
		JobID:    jobID,
		WorkerID: workerID,
		Status:   status,
		ExitCode: exitCode,
		Stdout:   req.Arg(4),
		Stderr:   req.Arg(5),
	}
	if err := h.orch.RecordResult(ctx, res); err != nil {
		return errorReply(ctx, err)
	}
	return resp.OK()
}

// JobOutput обрабатывает JOB.OUTPUT <job-id>.
// Ответ — bulk со stdout или $-1, если результата ещё нет.
func (h *Handler) JobOutput(ctx context.Context, req *resp.Request) resp.Value {
	res, err := h.orch.GetResult(ctx, req.Arg(0))
	if errors.Is(err, orchestrator.ErrResultNotFound) {
		return resp.NullBulk()
	}
	if err != nil {
		return errorReply(ctx, err)
	}
	return resp.BulkString(res.Stdout)
}

// CancelJob обрабатывает JOB.CANCEL <job-id>.
func (h *Handler) CancelJob(ctx context.Context, req *resp.Request) resp.Value {
	if err := h.orch.CancelJob(ctx, req.Arg(0)); err != nil {
		return errorReply(ctx, err)
	}
	return resp.OK()
}
