package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
)

// defaultStaleAfter — через сколько без heartbeat воркер считается потерянным.
const defaultStaleAfter = 90 * time.Second

// ReapStats — итог одного прохода reaper'а.
type ReapStats struct {
	Scanned  int
	Removed  int // финальные или несуществующие job
	Failed   int // running job потерянных воркеров
	Requeued int // ready job, застрявшие в processing
}

// Reaper разбирает processing-список: записи, которые воркер взял, но не подтвердил.
//
// Правила для каждого id:
//   - job не существует или уже финальный → убрать из processing
//   - running, воркер неизвестен или молчит дольше StaleAfter → failed (exit -1), убрать
//   - ready два прохода подряд (воркер взял id и пропал до JOB.START) → вернуть в очередь
type Reaper struct {
	orch       *Orchestrator
	staleAfter time.Duration
	logger     *slog.Logger

	mu   sync.Mutex
	seen map[string]int
}

// ReaperConfig — конфигурация Reaper.
type ReaperConfig struct {
	StaleAfter time.Duration
	Logger     *slog.Logger
}

// NewReaper создаёт Reaper поверх orchestrator.
func NewReaper(orch *Orchestrator, cfg ReaperConfig) *Reaper {
	staleAfter := cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	logger := cfg.Logger
	if logger == nil {
		logger = orch.logger
	}
	return &Reaper{
		orch:       orch,
		staleAfter: staleAfter,
		logger:     logger,
		seen:       make(map[string]int),
	}
}

// Sweep выполняет один проход. Ошибка одной записи не останавливает остальные.
func (r *Reaper) Sweep(ctx context.Context) (ReapStats, error) {
	var stats ReapStats
	o := r.orch

	entries, err := o.store.LRange(ctx, o.processingQueue, 0, -1)
	if err != nil {
		return stats, fmt.Errorf("list processing: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	present := make(map[string]bool, len(entries))
	var errs []error

	for _, entry := range entries {
		id := string(entry)
		present[id] = true
		stats.Scanned++

		action, err := r.inspect(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("reap %s: %w", id, err))
			continue
		}

		switch action {
		case "removed":
			stats.Removed++
		case "failed":
			stats.Failed++
		case "requeued":
			stats.Requeued++
		default:
			continue
		}
		o.metrics.ReaperActions.WithLabelValues(action).Inc()
	}

	// Забываем id, которых больше нет в processing.
	for id := range r.seen {
		if !present[id] {
			delete(r.seen, id)
		}
	}

	if stats.Removed+stats.Failed+stats.Requeued > 0 {
		r.logger.Info("reaper sweep",
			"scanned", stats.Scanned,
			"removed", stats.Removed,
			"failed", stats.Failed,
			"requeued", stats.Requeued,
		)
	}
	return stats, errors.Join(errs...)
}

// inspect решает судьбу одной записи. Возвращает действие или "".
func (r *Reaper) inspect(ctx context.Context, id string) (string, error) {
	o := r.orch

	job, err := o.GetJob(ctx, id)
	if errors.Is(err, ErrJobNotFound) {
		return "removed", r.remove(ctx, id)
	}
	if err != nil {
		return "", err
	}

	switch {
	case job.Status.IsTerminal():
		delete(r.seen, id)
		return "removed", r.remove(ctx, id)

	case job.Status == domain.JobStatusRunning:
		if r.workerAlive(ctx, job.WorkerID) {
			return "", nil
		}
		r.logger.Warn("worker lost, failing job", "job_id", id, "worker_id", job.WorkerID)
		if err := o.failLost(ctx, id); err != nil {
			return "", err
		}
		delete(r.seen, id)
		return "failed", r.remove(ctx, id)

	case job.Status == domain.JobStatusReady:
		r.seen[id]++
		if r.seen[id] < 2 {
			return "", nil
		}
		delete(r.seen, id)
		return "requeued", r.requeue(ctx, job)
	}

	return "", nil
}

func (r *Reaper) workerAlive(ctx context.Context, workerID string) bool {
	if workerID == "" {
		return false
	}
	w, err := r.orch.Worker(ctx, workerID)
	if err != nil {
		return false
	}
	return !w.IsStale(r.orch.now(), r.staleAfter)
}

func (r *Reaper) remove(ctx context.Context, id string) error {
	_, err := r.orch.store.LRem(ctx, r.orch.processingQueue, 0, []byte(id))
	return err
}

// requeue возвращает id в очередь: сначала push, потом удаление из processing,
// чтобы id всегда был виден хотя бы в одном списке.
func (r *Reaper) requeue(ctx context.Context, job *domain.Job) error {
	o := r.orch
	queue := o.router.QueueFor(job.Tags)
	if err := o.store.LPush(ctx, queue, []byte(job.ID)); err != nil {
		return fmt.Errorf("push %s: %w", queue, err)
	}
	return r.remove(ctx, job.ID)
}

// failLost помечает running job потерянного воркера как failed с exit -1.
func (o *Orchestrator) failLost(ctx context.Context, jobID string) error {
	var failed *domain.Job
	err := o.withJob(ctx, jobID, func(job *domain.Job) error {
		if job.Status != domain.JobStatusRunning {
			return nil
		}
		job.MarkFailed(-1)
		job.Error = "worker " + job.WorkerID + " lost"
		failed = job
		return o.persistTransition(ctx, job)
	})
	if err != nil || failed == nil {
		return err
	}
	if o.failurePolicy != FailureCascadeCancel {
		return nil
	}
	return o.cancelDependents(ctx, failed, "dependency "+jobID+" failed")
}
