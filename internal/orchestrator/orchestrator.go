package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/engine"
	"github.com/shaiso/Conveyor/internal/kv"
	"github.com/shaiso/Conveyor/internal/repo"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

// FailurePolicy определяет судьбу зависимых при падении job.
type FailurePolicy string

const (
	// FailureCascadeCancel — транзитивно отменить все нефинальные зависимые.
	FailureCascadeCancel FailurePolicy = "cascade-cancel"

	// FailureHold — оставить зависимых в pending (их разбирает внешняя политика).
	FailureHold FailurePolicy = "hold"
)

// EventPublisher получает каждый переход статуса job.
// Ошибка публикации не откатывает переход.
type EventPublisher interface {
	PublishJobEvent(ctx context.Context, job *domain.Job) error
}

// Orchestrator владеет жизненным циклом DAG.
//
// Orchestrator:
//   - Разворачивает Plan в Job и сохраняет их
//   - Ставит в очередь job без незавершённых зависимостей
//   - При завершении job оценивает только его зависимых (обратный индекс)
//   - Ведёт реестр воркеров
//
// Хранилище не даёт многоключевых транзакций, поэтому каждая
// read-modify-write операция над job выполняется под мьютексом его ID.
// Это защищает от гонок внутри одного процесса-сервера.
type Orchestrator struct {
	store   kv.Store
	jobs    *repo.JobRepo
	results *repo.ResultRepo
	plans   *repo.PlanRepo
	workers *repo.WorkerRepo

	router          *domain.Router
	processingQueue string
	failurePolicy   FailurePolicy

	events  EventPublisher
	metrics *telemetry.Metrics
	logger  *slog.Logger

	locks *keyedMutex
	now   func() time.Time
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Store — хранилище (обязательно).
	Store kv.Store

	// Router — маршрутизация по тегам (default: gpu → queue:gpu).
	Router *domain.Router

	// ProcessingQueue — список взятых в работу id (default: queue:processing).
	ProcessingQueue string

	// FailurePolicy — что делать с зависимыми упавшего job (default: cascade-cancel).
	FailurePolicy FailurePolicy

	// Events — публикация переходов (опционально).
	Events EventPublisher

	Metrics *telemetry.Metrics
	Logger  *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	router := cfg.Router
	if router == nil {
		router = domain.DefaultRouter()
	}

	processing := cfg.ProcessingQueue
	if processing == "" {
		processing = domain.QueueProcessing
	}

	policy := cfg.FailurePolicy
	if policy == "" {
		policy = FailureCascadeCancel
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		store:           cfg.Store,
		jobs:            repo.NewJobRepo(cfg.Store),
		results:         repo.NewResultRepo(cfg.Store),
		plans:           repo.NewPlanRepo(cfg.Store),
		workers:         repo.NewWorkerRepo(cfg.Store),
		router:          router,
		processingQueue: processing,
		failurePolicy:   policy,
		events:          cfg.Events,
		metrics:         metrics,
		logger:          logger,
		locks:           newKeyedMutex(),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Router возвращает маршрутизатор очередей.
func (o *Orchestrator) Router() *domain.Router {
	return o.router
}

// ProcessingQueue возвращает имя processing-списка.
func (o *Orchestrator) ProcessingQueue() string {
	return o.processingQueue
}

// SubmitJobs сохраняет все job, затем ставит в очередь те, у которых нет зависимостей.
//
// Пакет проверяется целиком до записи: уникальные ID, взаимные рёбра,
// зависимости только внутри пакета, отсутствие циклов.
// Все записи сохраняются раньше, чем любой id попадает в очередь.
func (o *Orchestrator) SubmitJobs(ctx context.Context, jobs []*domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	if err := engine.ValidateJobs(jobs); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJobs, err)
	}

	for _, job := range jobs {
		job.Status = domain.JobStatusPending
		if err := o.jobs.Save(ctx, job); err != nil {
			return fmt.Errorf("save job %s: %w", job.ID, err)
		}
	}
	o.metrics.JobsSubmitted.Add(float64(len(jobs)))

	for _, job := range jobs {
		if len(job.Dependencies) > 0 {
			continue
		}
		if err := o.withJob(ctx, job.ID, func(current *domain.Job) error {
			if current.Status != domain.JobStatusPending {
				return nil
			}
			return o.enqueueJob(ctx, current)
		}); err != nil {
			return err
		}
	}

	return nil
}

// CompleteJob переводит job в completed и оценивает его зависимых.
// Повторный вызов для уже completed job снова оценивает зависимых:
// это восстанавливает прогресс, если прошлый вызов прервался между записью и оценкой.
func (o *Orchestrator) CompleteJob(ctx context.Context, jobID string, exitCode int) error {
	return o.completeJob(ctx, jobID, exitCode, nil)
}

func (o *Orchestrator) completeJob(ctx context.Context, jobID string, exitCode int, record recordFunc) error {
	job, err := o.finishJob(ctx, jobID, domain.JobStatusCompleted, exitCode, record)
	if err != nil {
		return err
	}
	return o.triggerDependents(ctx, job)
}

// FailJob переводит job в failed. При политике cascade-cancel
// все транзитивные нефинальные зависимые отменяются.
func (o *Orchestrator) FailJob(ctx context.Context, jobID string, exitCode int) error {
	return o.failJob(ctx, jobID, exitCode, nil)
}

func (o *Orchestrator) failJob(ctx context.Context, jobID string, exitCode int, record recordFunc) error {
	job, err := o.finishJob(ctx, jobID, domain.JobStatusFailed, exitCode, record)
	if err != nil {
		return err
	}
	if o.failurePolicy != FailureCascadeCancel {
		return nil
	}
	return o.cancelDependents(ctx, job, "dependency "+job.ID+" failed")
}

// StartJob переводит ready job в running и запоминает воркера.
func (o *Orchestrator) StartJob(ctx context.Context, jobID, workerID string) error {
	return o.withJob(ctx, jobID, func(job *domain.Job) error {
		if job.Status == domain.JobStatusRunning && job.WorkerID == workerID {
			return nil
		}
		if !job.Status.CanTransitionTo(domain.JobStatusRunning) {
			return fmt.Errorf("%w: job %s is %s", ErrInvalidTransition, job.ID, job.Status)
		}

		job.MarkRunning(workerID)
		return o.persistTransition(ctx, job)
	})
}

// CancelJob отменяет нефинальный job и всех его зависимых.
func (o *Orchestrator) CancelJob(ctx context.Context, jobID string) error {
	var cancelled *domain.Job
	err := o.withJob(ctx, jobID, func(job *domain.Job) error {
		if job.Status == domain.JobStatusCancelled {
			cancelled = job
			return nil
		}
		if job.Status.IsTerminal() {
			return fmt.Errorf("%w: job %s is %s", ErrInvalidTransition, job.ID, job.Status)
		}

		job.MarkCancelled("cancelled by request")
		if err := o.persistTransition(ctx, job); err != nil {
			return err
		}
		cancelled = job
		return nil
	})
	if err != nil {
		return err
	}
	return o.cancelDependents(ctx, cancelled, "dependency "+jobID+" cancelled")
}

// GetJob возвращает job по ID.
func (o *Orchestrator) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := o.jobs.Get(ctx, jobID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// recordFunc сохраняет сопутствующую запись (результат) под блокировкой job,
// после проверки перехода и до сохранения нового статуса.
type recordFunc func(job *domain.Job) error

// finishJob переводит job в финальный статус. Если job уже в этом статусе,
// запись не меняется.
//
// record вызывается, только если переход допустим. Повтор того же статуса
// с record принимается лишь с тем же кодом выхода: иначе результат
// противоречил бы записи job.
func (o *Orchestrator) finishJob(ctx context.Context, jobID string, status domain.JobStatus, exitCode int, record recordFunc) (*domain.Job, error) {
	var finished *domain.Job
	err := o.withJob(ctx, jobID, func(job *domain.Job) error {
		finished = job
		if job.Status == status {
			if record == nil {
				return nil
			}
			if job.ExitCode != nil && *job.ExitCode != exitCode {
				return fmt.Errorf("%w: job %s is already %s with exit code %d",
					ErrInvalidTransition, job.ID, job.Status, *job.ExitCode)
			}
			return record(job)
		}
		if !job.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: job %s is %s", ErrInvalidTransition, job.ID, job.Status)
		}
		if record != nil {
			if err := record(job); err != nil {
				return err
			}
		}

		if status == domain.JobStatusCompleted {
			job.MarkCompleted(exitCode)
		} else {
			job.MarkFailed(exitCode)
		}
		return o.persistTransition(ctx, job)
	})
	return finished, err
}

// triggerDependents оценивает готовность каждого зависимого независимо.
// Ошибка одного зависимого не мешает остальным.
func (o *Orchestrator) triggerDependents(ctx context.Context, job *domain.Job) error {
	var errs []error
	for _, depID := range job.Dependents {
		if err := o.evaluateDependent(ctx, depID); err != nil {
			errs = append(errs, fmt.Errorf("dependent %s: %w", depID, err))
		}
	}
	return errors.Join(errs...)
}

// evaluateDependent ставит зависимого в очередь, если он pending и все его
// зависимости completed. Запись перечитывается под мьютексом, поэтому
// два одновременных завершения не поставят job в очередь дважды.
func (o *Orchestrator) evaluateDependent(ctx context.Context, jobID string) error {
	return o.withJob(ctx, jobID, func(job *domain.Job) error {
		if job.Status != domain.JobStatusPending {
			o.metrics.DependentsChecks.WithLabelValues("skipped").Inc()
			return nil
		}

		met, err := o.checkDependenciesMet(ctx, job)
		if err != nil {
			return err
		}
		if !met {
			o.metrics.DependentsChecks.WithLabelValues("waiting").Inc()
			return nil
		}

		o.metrics.DependentsChecks.WithLabelValues("enqueued").Inc()
		return o.enqueueJob(ctx, job)
	})
}

// checkDependenciesMet возвращает true, если каждая зависимость completed.
func (o *Orchestrator) checkDependenciesMet(ctx context.Context, job *domain.Job) (bool, error) {
	for _, depID := range job.Dependencies {
		dep, err := o.GetJob(ctx, depID)
		if err != nil {
			return false, err
		}
		if dep.Status != domain.JobStatusCompleted {
			return false, nil
		}
	}
	return true, nil
}

// enqueueJob переводит job в ready, сохраняет и кладёт id в очередь по тегам.
// Вызывается под мьютексом job.
func (o *Orchestrator) enqueueJob(ctx context.Context, job *domain.Job) error {
	if !job.Status.CanTransitionTo(domain.JobStatusReady) {
		return fmt.Errorf("%w: job %s is %s", ErrInvalidTransition, job.ID, job.Status)
	}

	job.MarkReady()
	if err := o.persistTransition(ctx, job); err != nil {
		return err
	}

	queue := o.router.QueueFor(job.Tags)
	if err := o.store.LPush(ctx, queue, []byte(job.ID)); err != nil {
		return fmt.Errorf("push %s to %s: %w", job.ID, queue, err)
	}
	o.metrics.JobsEnqueued.WithLabelValues(queue).Inc()

	telemetry.WithJobID(o.logger, job.ID).Debug("job enqueued",
		"plan_id", job.PlanID,
		"task_number", job.TaskNumber,
		"queue", queue,
	)
	return nil
}

// cancelDependents обходит зависимых в ширину и отменяет нефинальных.
func (o *Orchestrator) cancelDependents(ctx context.Context, root *domain.Job, reason string) error {
	queue := append([]string(nil), root.Dependents...)
	visited := make(map[string]bool)
	var errs []error

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		err := o.withJob(ctx, id, func(job *domain.Job) error {
			if job.Status.IsTerminal() {
				return nil
			}
			job.MarkCancelled(reason)
			if err := o.persistTransition(ctx, job); err != nil {
				return err
			}
			queue = append(queue, job.Dependents...)
			return nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("cancel %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// withJob загружает job под его мьютексом и вызывает fn.
func (o *Orchestrator) withJob(ctx context.Context, jobID string, fn func(job *domain.Job) error) error {
	unlock := o.locks.Lock(jobID)
	defer unlock()

	job, err := o.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	return fn(job)
}

// persistTransition сохраняет job, пишет метрику, лог и событие.
func (o *Orchestrator) persistTransition(ctx context.Context, job *domain.Job) error {
	if err := o.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	o.metrics.JobTransitions.WithLabelValues(job.Status.String()).Inc()

	logger := telemetry.WithJobID(o.logger, job.ID)
	if job.Status.IsTerminal() {
		logger.Info("job finished",
			"status", job.Status,
			"plan_id", job.PlanID,
			"worker_id", job.WorkerID,
			"exit_code", job.ExitCode,
			"reason", job.Error,
		)
	}

	if o.events != nil {
		if err := o.events.PublishJobEvent(ctx, job); err != nil {
			logger.Warn("failed to publish job event", "status", job.Status, "error", err)
		}
	}
	return nil
}
