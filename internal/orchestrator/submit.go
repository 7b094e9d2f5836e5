package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/engine"
	"github.com/shaiso/Conveyor/internal/repo"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

// SubmitPlan проверяет plan, разворачивает его в job и отправляет их.
//
// Если plan_id пуст, назначается новый. Повторная отправка того же plan_id
// отклоняется с ErrPlanExists.
func (o *Orchestrator) SubmitPlan(ctx context.Context, plan *domain.Plan) (*domain.PlanRecord, error) {
	if plan == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidPlan)
	}
	if err := engine.ValidatePlan(plan); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	p := *plan
	if p.PlanID == "" {
		p.PlanID = uuid.NewString()
	}

	unlock := o.locks.Lock(repo.PlanKey(p.PlanID))
	defer unlock()

	digest, err := engine.PlanDigest(&p)
	if err != nil {
		return nil, err
	}

	actionID := uuid.NewString()
	jobs, err := engine.ExpandPlan(&p, actionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	rec := &domain.PlanRecord{
		PlanID:      p.PlanID,
		ActionID:    actionID,
		Description: p.Description,
		Digest:      digest,
		JobIDs:      make([]string, 0, len(jobs)),
		SubmittedAt: o.now(),
	}
	for _, job := range jobs {
		rec.JobIDs = append(rec.JobIDs, job.ID)
	}

	if err := o.plans.Create(ctx, rec); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %s", ErrPlanExists, p.PlanID)
		}
		return nil, fmt.Errorf("create plan record: %w", err)
	}

	if err := o.SubmitJobs(ctx, jobs); err != nil {
		return nil, err
	}
	o.metrics.PlansSubmitted.Inc()

	telemetry.WithPlanID(o.logger, rec.PlanID).Info("plan submitted",
		"action_id", actionID,
		"jobs", len(jobs),
		"digest", digest,
	)
	return rec, nil
}

// GetPlan возвращает запись об отправленном plan.
func (o *Orchestrator) GetPlan(ctx context.Context, planID string) (*domain.PlanRecord, error) {
	rec, err := o.plans.Get(ctx, planID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return rec, nil
}

// RecordResult сохраняет вывод job и переводит его в completed или failed.
//
// Результат пишется под блокировкой job и только если переход допустим:
// отвергнутый результат (job уже отменён или провален reaper'ом) не
// перезаписывает сохранённый.
func (o *Orchestrator) RecordResult(ctx context.Context, res *domain.JobResult) error {
	save := func(*domain.Job) error {
		res.RecordedAt = o.now()
		if err := o.results.Save(ctx, res); err != nil {
			return fmt.Errorf("save result: %w", err)
		}
		return nil
	}

	if res.Status == domain.ResultCompleted {
		return o.completeJob(ctx, res.JobID, res.ExitCode, save)
	}
	return o.failJob(ctx, res.JobID, res.ExitCode, save)
}

// GetResult возвращает записанный результат job.
func (o *Orchestrator) GetResult(ctx context.Context, jobID string) (*domain.JobResult, error) {
	if _, err := o.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	res, err := o.results.Get(ctx, jobID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	return res, nil
}
