package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/repo"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

// Heartbeat отмечает воркера живым. Неизвестный воркер регистрируется.
// Возвращает true, если для воркера запрошена остановка.
func (o *Orchestrator) Heartbeat(ctx context.Context, workerID string) (bool, error) {
	var draining bool
	err := o.updateWorker(ctx, workerID, func(w *domain.WorkerInfo) {
		w.LastHeartbeat = o.now()
		draining = w.Draining
	})
	if err != nil {
		return false, err
	}
	o.metrics.Heartbeats.Inc()
	return draining, nil
}

// RegisterTools запоминает инструменты воркера.
func (o *Orchestrator) RegisterTools(ctx context.Context, workerID string, tools []string) error {
	return o.updateWorker(ctx, workerID, func(w *domain.WorkerInfo) {
		w.Tools = append([]string(nil), tools...)
	})
}

// RegisterTags запоминает capability-теги воркера.
func (o *Orchestrator) RegisterTags(ctx context.Context, workerID string, tags []string) error {
	return o.updateWorker(ctx, workerID, func(w *domain.WorkerInfo) {
		w.Tags = append([]string(nil), tags...)
	})
}

// RequestShutdown помечает воркера к остановке; он узнает об этом
// из ответа на следующий heartbeat.
func (o *Orchestrator) RequestShutdown(ctx context.Context, workerID string) error {
	unlock := o.locks.Lock(repo.WorkerKey(workerID))
	defer unlock()

	w, err := o.Worker(ctx, workerID)
	if err != nil {
		return err
	}
	w.Draining = true
	if err := o.workers.Save(ctx, w); err != nil {
		return fmt.Errorf("save worker: %w", err)
	}

	telemetry.WithWorkerID(o.logger, workerID).Info("worker shutdown requested")
	return nil
}

// Worker возвращает запись воркера.
func (o *Orchestrator) Worker(ctx context.Context, workerID string) (*domain.WorkerInfo, error) {
	w, err := o.workers.Get(ctx, workerID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrWorkerNotFound, workerID)
	}
	if err != nil {
		return nil, fmt.Errorf("get worker: %w", err)
	}
	return w, nil
}

// Workers возвращает всех зарегистрированных воркеров.
func (o *Orchestrator) Workers(ctx context.Context) ([]*domain.WorkerInfo, error) {
	return o.workers.List(ctx)
}

func (o *Orchestrator) updateWorker(ctx context.Context, workerID string, fn func(w *domain.WorkerInfo)) error {
	unlock := o.locks.Lock(repo.WorkerKey(workerID))
	defer unlock()

	w, err := o.workers.Get(ctx, workerID)
	if errors.Is(err, repo.ErrNotFound) {
		now := o.now()
		w = &domain.WorkerInfo{
			ID:            workerID,
			Tools:         []string{},
			Tags:          []string{},
			RegisteredAt:  now,
			LastHeartbeat: now,
		}
		telemetry.WithWorkerID(o.logger, workerID).Info("worker registered")
	} else if err != nil {
		return fmt.Errorf("get worker: %w", err)
	}

	fn(w)
	if err := o.workers.Save(ctx, w); err != nil {
		return fmt.Errorf("save worker: %w", err)
	}
	return nil
}
