package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/engine"
	"github.com/shaiso/Conveyor/internal/sandbox"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

// Task — одна команда для выполнения.
type Task struct {
	TaskNumber uint32
	Command    string
	Args       []string

	// Env — окружение ребёнка, KEY=VALUE.
	Env []string

	// Stdin — вход задачи (stdout upstream-задачи).
	Stdin []byte

	// Timeout — 0 означает без ограничения.
	Timeout time.Duration
}

// Executor запускает задачи через Sandbox.
type Executor struct {
	sandbox sandbox.Sandbox
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// Config — конфигурация Executor.
type Config struct {
	// Sandbox — вариант изоляции (default: sandbox.Process).
	Sandbox sandbox.Sandbox

	Metrics *telemetry.Metrics
	Logger  *slog.Logger
}

// New создаёт новый Executor.
func New(cfg Config) *Executor {
	sb := cfg.Sandbox
	if sb == nil {
		sb = sandbox.NewProcess()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{sandbox: sb, metrics: metrics, logger: logger}
}

// Sandbox возвращает используемый sandbox.
func (e *Executor) Sandbox() sandbox.Sandbox {
	return e.sandbox
}

// ExecuteTask выполняет задачу. Ошибка возвращается только для пустой команды.
func (e *Executor) ExecuteTask(ctx context.Context, task Task) (*TaskResult, error) {
	if task.Command == "" {
		return nil, ErrEmptyCommand
	}

	runCtx := ctx
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	logger := e.logger.With("task_number", task.TaskNumber, "command", task.Command)
	logger.Debug("executing task", "args", task.Args, "sandbox", e.sandbox.Name())

	start := time.Now()
	out, err := e.sandbox.Run(runCtx, sandbox.Command{
		Path:  task.Command,
		Args:  task.Args,
		Env:   task.Env,
		Stdin: task.Stdin,
	})
	elapsed := time.Since(start)

	res := &TaskResult{
		TaskNumber: task.TaskNumber,
		DurationMs: elapsed.Milliseconds(),
	}
	outcome := "success"

	switch {
	case err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded):
		res.ExitCode = -1
		res.Stderr = fmt.Sprintf("task timed out after %ds", int64(task.Timeout.Seconds()))
		if out != nil {
			res.Stdout = string(out.Stdout)
		}
		outcome = "timeout"
		logger.Warn("task timed out", "timeout", task.Timeout)

	case err != nil:
		res.ExitCode = -1
		res.Stderr = fmt.Sprintf("sandbox execution failed: %v", err)
		outcome = "sandbox_error"
		logger.Error("sandbox execution failed", "error", err)

	default:
		res.Stdout = string(out.Stdout)
		res.Stderr = string(out.Stderr)
		res.ExitCode = out.ExitCode
		res.Success = out.Success()
		if !res.Success {
			outcome = "failure"
		}
		logger.Info("task execution completed",
			"exit_code", res.ExitCode,
			"duration_ms", res.DurationMs,
		)
	}

	e.metrics.TaskExecutions.WithLabelValues(outcome).Inc()
	e.metrics.TaskDuration.Observe(elapsed.Seconds())
	return res, nil
}

// ExecuteJob выполняет job: окружение и шаблоны аргументов берутся из job.Env.
func (e *Executor) ExecuteJob(ctx context.Context, job *domain.Job, stdin []byte) (*TaskResult, error) {
	env, err := job.EnvMap()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	args, err := engine.RenderArgs(job.Args, env)
	if err != nil {
		return nil, fmt.Errorf("%w: job %s: %w", ErrInvalidJob, job.ID, err)
	}

	return e.ExecuteTask(ctx, Task{
		TaskNumber: job.TaskNumber,
		Command:    job.Command,
		Args:       args,
		Env:        domain.EnvPairs(env),
		Stdin:      stdin,
		Timeout:    job.Timeout(),
	})
}

// ExecutePlan выполняет задачи plan по порядку и останавливается на первой неудаче.
// Возвращает все результаты, собранные до остановки.
func (e *Executor) ExecutePlan(ctx context.Context, jobID string, plan *domain.Plan) (*PlanResult, error) {
	logger := telemetry.WithPlanID(e.logger, plan.PlanID).With("job_id", jobID)
	logger.Info("executing plan", "tasks", len(plan.Tasks))

	envMap := plan.EnvMap()
	env := domain.EnvPairs(envMap)
	outputs := make(map[uint32][]byte, len(plan.Tasks))
	results := make([]TaskResult, 0, len(plan.Tasks))

	for i := range plan.Tasks {
		tmpl := &plan.Tasks[i]

		var stdin []byte
		if tmpl.InputFromTask != nil {
			stdin = outputs[*tmpl.InputFromTask]
		}

		args, err := engine.RenderArgs(tmpl.Args, envMap)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", tmpl.TaskNumber, err)
		}

		res, err := e.ExecuteTask(ctx, Task{
			TaskNumber: tmpl.TaskNumber,
			Command:    tmpl.Command,
			Args:       args,
			Env:        env,
			Stdin:      stdin,
			Timeout:    tmpl.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", tmpl.TaskNumber, err)
		}

		outputs[tmpl.TaskNumber] = []byte(res.Stdout)
		results = append(results, *res)

		if !res.Success {
			logger.Warn("task failed, halting plan execution",
				"task_number", tmpl.TaskNumber,
				"exit_code", res.ExitCode,
			)
			break
		}
	}

	result := newPlanResult(jobID, plan.PlanID, results)
	logger.Info("plan execution completed",
		"executed", len(result.TaskResults),
		"success", result.Success,
	)
	return result, nil
}
