package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Ошибки планировщика.
var (
	// ErrInvalidSchedule — выражение не разбирается.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrDuplicateEntry — задача с таким именем уже добавлена.
	ErrDuplicateEntry = errors.New("duplicate schedule entry")
)

// JobFunc — периодическая задача.
type JobFunc func(ctx context.Context) error

type entry struct {
	name     string
	expr     string
	schedule cron.Schedule
	fn       JobFunc
	next     time.Time
}

// Scheduler выполняет периодические задачи сервера (например, reaper).
// Задачи одного тика выполняются последовательно.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry

	tickInterval time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// Config — конфигурация Scheduler.
type Config struct {
	TickInterval time.Duration // частота проверки (default: 1s)
	Logger       *slog.Logger
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		tickInterval: tick,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Add регистрирует задачу. Первое выполнение — по расписанию после текущего момента.
func (s *Scheduler) Add(name, expr string, fn JobFunc) error {
	schedule, err := ParseSchedule(expr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
		}
	}

	s.entries = append(s.entries, &entry{
		name:     name,
		expr:     expr,
		schedule: schedule,
		fn:       fn,
		next:     schedule.Next(s.now()),
	})
	return nil
}

// Tick выполняет задачи, чьё время наступило.
//
// Ошибки одной задачи не блокируют остальные; все они возвращаются вместе.
// Возвращает число выполненных задач.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	now := s.now()

	s.mu.Lock()
	var due []*entry
	for _, e := range s.entries {
		if !e.next.After(now) {
			due = append(due, e)
			e.next = e.schedule.Next(now)
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, e := range due {
		start := time.Now()
		if err := e.fn(ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", e.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
			continue
		}
		s.logger.Debug("scheduled job completed",
			"job", e.name,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return len(due), errors.Join(errs...)
}

// Run крутит тики до отмены ctx.
func (s *Scheduler) Run(ctx context.Context) {
	tk := time.NewTicker(s.tickInterval)
	defer tk.Stop()

	s.mu.Lock()
	entries := len(s.entries)
	s.mu.Unlock()
	s.logger.Info("scheduler started", "entries", entries, "tick", s.tickInterval)

	for {
		select {
		case <-tk.C:
			_, _ = s.Tick(ctx)
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		}
	}
}
