package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/executor"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

// Worker — процесс, выполняющий job по одному.
//
// Цикл Run:
//   - Heartbeat по таймеру; проверяется первым на каждой итерации
//   - Fetch из очередей своих тегов, только когда воркер свободен
//   - Job выполняется в отдельной горутине на своём соединении
//   - Завершение job забирается через канал (паника логируется)
//   - Остановка по ctx (сигнал) или ответу +DRAIN: fetch прекращается,
//     job в работе ждём не дольше ShutdownTimeout
type Worker struct {
	cfg        Config
	dial       DialFunc
	executor   *executor.Executor
	queues     []string
	processing string

	metrics *telemetry.Metrics
	logger  *slog.Logger

	nextQueue int
}

// Deps — зависимости Worker.
type Deps struct {
	// Dial открывает соединения с сервером (обязательно).
	Dial DialFunc

	// Executor — выполнение job (default: executor.New с plain sandbox).
	Executor *executor.Executor

	// Router — маршрутизация тегов в очереди (default: domain.DefaultRouter).
	Router *domain.Router

	// ProcessingQueue — default: queue:processing.
	ProcessingQueue string

	Metrics *telemetry.Metrics
	Logger  *slog.Logger
}

// New проверяет конфигурацию и создаёт Worker.
func New(cfg Config, deps Deps) (*Worker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Dial == nil {
		return nil, fmt.Errorf("%w: dial function is required", ErrInvalidConfig)
	}

	router := deps.Router
	if router == nil {
		router = domain.DefaultRouter()
	}
	processing := deps.ProcessingQueue
	if processing == "" {
		processing = domain.QueueProcessing
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = telemetry.WithWorkerID(logger, cfg.WorkerID).With("worker_name", cfg.Name)

	exec := deps.Executor
	if exec == nil {
		exec = executor.New(executor.Config{Metrics: metrics, Logger: logger})
	}

	return &Worker{
		cfg:        cfg,
		dial:       deps.Dial,
		executor:   exec,
		queues:     router.QueuesForWorker(cfg.Tags),
		processing: processing,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// ID возвращает идентификатор воркера.
func (w *Worker) ID() string {
	return w.cfg.WorkerID
}

// Queues возвращает очереди, которые обслуживает воркер.
func (w *Worker) Queues() []string {
	return w.queues
}

type fetchResult struct {
	job *domain.Job // nil — очередь пуста или job пропущен
	err error
}

type execResult struct {
	jobID string
	err   error
}

// Run выполняет цикл воркера до остановки.
//
// Возвращает nil при штатной остановке (ctx отменён или сервер прислал DRAIN)
// и ошибку, если сломался heartbeat или fetch.
func (w *Worker) Run(ctx context.Context) error {
	main, err := w.dial(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer main.Close()

	if err := w.register(ctx, main); err != nil {
		return err
	}

	fetchConn, err := w.dial(ctx)
	if err != nil {
		return fmt.Errorf("connect fetch: %w", err)
	}
	defer fetchConn.Close()

	jobConn, err := w.dial(ctx)
	if err != nil {
		return fmt.Errorf("connect job: %w", err)
	}
	defer jobConn.Close()

	// fetch и job живут дольше ctx: сигнал останавливает только приём новых job.
	fetchCtx, cancelFetch := context.WithCancel(context.Background())
	defer cancelFetch()
	jobCtx, cancelJob := context.WithCancel(context.Background())
	defer cancelJob()

	var (
		fetchCh  chan fetchResult
		doneCh   chan execResult
		current  string
		shutdown bool
		deadline <-chan time.Time
		signals  = ctx.Done()
	)

	beginShutdown := func(reason string) {
		if shutdown {
			return
		}
		shutdown = true
		signals = nil
		cancelFetch()

		if doneCh == nil {
			w.logger.Info("shutdown requested, worker idle", "reason", reason)
			return
		}
		w.logger.Info("shutdown requested, waiting for in-flight job",
			"reason", reason,
			"job_id", current,
			"timeout", w.cfg.ShutdownTimeout,
		)
		if w.cfg.ShutdownTimeout > 0 {
			deadline = time.After(w.cfg.ShutdownTimeout)
		}
	}

	heartbeat := func() error {
		drain, err := w.heartbeat(main)
		if err != nil {
			return err
		}
		if drain {
			beginShutdown("drain requested by server")
		}
		return nil
	}

	// Первый heartbeat сразу: сервер видит воркера до первого fetch.
	if err := heartbeat(); err != nil {
		return err
	}

	ticker := time.NewTicker(w.cfg.HeartbeatInterval)
	defer ticker.Stop()

	w.logger.Info("worker started",
		"queues", w.queues,
		"tags", w.cfg.Tags,
		"heartbeat", w.cfg.HeartbeatInterval,
		"sandbox", w.executor.Sandbox().Name(),
	)

	for {
		// Heartbeat выигрывает у остальных событий.
		select {
		case <-ticker.C:
			if err := heartbeat(); err != nil {
				return err
			}
		default:
		}

		if shutdown && doneCh == nil {
			w.logger.Info("worker stopped")
			return nil
		}

		if !shutdown && doneCh == nil && fetchCh == nil {
			fetchCh = w.startFetch(fetchCtx, fetchConn)
		}

		select {
		case <-ticker.C:
			if err := heartbeat(); err != nil {
				return err
			}

		case <-signals:
			beginShutdown("signal")

		case r := <-fetchCh:
			fetchCh = nil
			if shutdown {
				// id, взятый прерванным fetch, остаётся в processing до reaper.
				continue
			}
			if r.err != nil {
				return r.err
			}
			if r.job != nil {
				current = r.job.ID
				doneCh = w.startExecution(jobCtx, jobConn, r.job)
			}

		case r := <-doneCh:
			doneCh = nil
			current = ""
			w.join(r)

		case <-deadline:
			w.logger.Warn("shutdown timeout exceeded, job result may be incomplete",
				"job_id", current,
				"timeout", w.cfg.ShutdownTimeout,
			)
			cancelJob()
			return nil
		}
	}
}

func (w *Worker) register(ctx context.Context, c Client) error {
	if len(w.cfg.Tools) > 0 {
		if err := c.RegisterTools(ctx, w.cfg.WorkerID, w.cfg.Tools); err != nil {
			return fmt.Errorf("register tools: %w", err)
		}
	}
	if err := c.RegisterTags(ctx, w.cfg.WorkerID, w.cfg.Tags); err != nil {
		return fmt.Errorf("register tags: %w", err)
	}
	return nil
}

// heartbeat отправляет сигнал жизни. Ограничен интервалом heartbeat,
// чтобы зависший сервер не блокировал цикл дольше одного периода.
func (w *Worker) heartbeat(c Client) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.HeartbeatInterval)
	defer cancel()

	drain, err := c.Heartbeat(ctx, w.cfg.WorkerID)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrHeartbeat, err)
	}
	w.metrics.Heartbeats.Inc()
	w.logger.Debug("heartbeat sent", "drain", drain)
	return drain, nil
}

// startFetch запускает один fetch из следующей очереди (round-robin).
func (w *Worker) startFetch(ctx context.Context, c Client) chan fetchResult {
	queue := w.queues[w.nextQueue%len(w.queues)]
	w.nextQueue++

	ch := make(chan fetchResult, 1)
	go func() {
		job, err := w.fetch(ctx, c, queue)
		ch <- fetchResult{job: job, err: err}
	}()
	return ch
}

// startExecution запускает единицу выполнения job.
// Результат, включая перехваченную панику, приходит в канал.
func (w *Worker) startExecution(ctx context.Context, c Client, job *domain.Job) chan execResult {
	w.metrics.WorkerBusy.Set(1)

	ch := make(chan execResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- execResult{jobID: job.ID, err: fmt.Errorf("%w: %v", ErrExecutionPanic, r)}
			}
		}()
		ch <- execResult{jobID: job.ID, err: w.process(ctx, c, job)}
	}()
	return ch
}

// join фиксирует завершение единицы выполнения.
func (w *Worker) join(r execResult) {
	w.metrics.WorkerBusy.Set(0)

	logger := telemetry.WithJobID(w.logger, r.jobID)
	if r.err != nil {
		logger.Error("job execution unit failed", "error", r.err)
		return
	}
	logger.Debug("job execution unit finished")
}
