package worker

import (
	"context"
	"fmt"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/executor"
	"github.com/shaiso/Conveyor/internal/resp"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

// fetch ждёт id в queue не дольше FetchTimeout, загружает и проверяет job.
//
// Job, который нельзя выполнять (удалён, отменён, битый), убирается
// из processing-списка, и fetch возвращает nil.
func (w *Worker) fetch(ctx context.Context, c Client, queue string) (*domain.Job, error) {
	id, ok, err := c.BRPopLPush(ctx, queue, w.processing, w.cfg.FetchTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, queue, err)
	}
	if !ok {
		return nil, nil
	}

	logger := telemetry.WithJobID(w.logger, id)

	job, err := c.GetJob(ctx, id)
	if resp.IsCode(err, codeNotFound) {
		logger.Warn("fetched job does not exist, dropping")
		return nil, w.release(ctx, c, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get job %s: %w", ErrFetch, id, err)
	}

	if err := validateJob(id, job); err != nil {
		logger.Warn("fetched job is not runnable, dropping", "reason", err)
		return nil, w.release(ctx, c, id)
	}

	logger.Info("job fetched", "queue", queue, "plan_id", job.PlanID, "task_number", job.TaskNumber)
	return job, nil
}

func validateJob(id string, job *domain.Job) error {
	switch {
	case job.ID == "" || job.ID != id:
		return fmt.Errorf("%w: id mismatch %q != %q", ErrInvalidJob, job.ID, id)
	case job.Command == "":
		return fmt.Errorf("%w: empty command", ErrInvalidJob)
	case job.Status != domain.JobStatusReady:
		return fmt.Errorf("%w: status is %s", ErrInvalidJob, job.Status)
	}
	return nil
}

// process — единица выполнения: JOB.START, вход от upstream, выполнение,
// JOB.RESULT, удаление из processing.
func (w *Worker) process(ctx context.Context, c Client, job *domain.Job) error {
	logger := telemetry.WithJobID(w.logger, job.ID)

	if err := c.StartJob(ctx, w.cfg.WorkerID, job.ID); err != nil {
		if resp.IsCode(err, codeConflict) {
			logger.Info("job is no longer runnable, dropping", "reason", err)
			return w.release(ctx, c, job.ID)
		}
		return fmt.Errorf("start job: %w", err)
	}

	res := w.execute(ctx, c, job)

	status := domain.ResultCompleted
	if !res.Success {
		status = domain.ResultFailed
	}

	err := c.PostJobResult(ctx, w.cfg.WorkerID, job.ID, status, res.ExitCode, res.Stdout, res.Stderr)
	switch {
	case resp.IsCode(err, codeConflict):
		logger.Warn("result rejected by server", "reason", err)
	case err != nil:
		return fmt.Errorf("post result: %w", err)
	default:
		logger.Info("job result posted",
			"status", status,
			"exit_code", res.ExitCode,
			"duration_ms", res.DurationMs,
		)
	}

	return w.release(ctx, c, job.ID)
}

// execute выполняет job. Ошибки до запуска (вход, шаблоны) становятся
// неуспешным результатом с exit -1: job уже running и должен получить итог.
func (w *Worker) execute(ctx context.Context, c Client, job *domain.Job) *executor.TaskResult {
	var stdin []byte
	if job.InputFrom != "" {
		out, ok, err := c.JobOutput(ctx, job.InputFrom)
		if err != nil {
			return failedResult(job, fmt.Errorf("read input from %s: %w", job.InputFrom, err))
		}
		if ok {
			stdin = []byte(out)
		}
	}

	res, err := w.executor.ExecuteJob(ctx, job, stdin)
	if err != nil {
		return failedResult(job, err)
	}
	return res
}

func failedResult(job *domain.Job, err error) *executor.TaskResult {
	return &executor.TaskResult{
		TaskNumber: job.TaskNumber,
		ExitCode:   -1,
		Stderr:     err.Error(),
	}
}

// release убирает id из processing-списка.
func (w *Worker) release(ctx context.Context, c Client, id string) error {
	if _, err := c.LRem(ctx, w.processing, 1, id); err != nil {
		return fmt.Errorf("release %s: %w", id, err)
	}
	return nil
}
