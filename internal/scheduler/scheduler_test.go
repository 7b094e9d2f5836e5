package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestScheduler(now *time.Time) *Scheduler {
	s := New(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	s.now = func() time.Time { return *now }
	return s
}

// --- Cron Tests ---

func TestNextDue(t *testing.T) {
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		expr string
		want time.Time
	}{
		{"@every 30s", from.Add(30 * time.Second)},
		{"*/5 * * * *", from.Add(5 * time.Minute)},
		{"0 12 * * *", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"@hourly", from.Add(time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := NextDue(tt.expr, from)
			if err != nil {
				t.Fatalf("NextDue() error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateCronExpr_Invalid(t *testing.T) {
	for _, expr := range []string{"", "not a cron", "* * *", "@every nope"} {
		if err := ValidateCronExpr(expr); !errors.Is(err, ErrInvalidSchedule) {
			t.Errorf("ValidateCronExpr(%q) error = %v, want ErrInvalidSchedule", expr, err)
		}
	}
}

// --- Scheduler Tests ---

func TestScheduler_TickRunsDueEntries(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestScheduler(&now)

	var runs int
	if err := s.Add("sweep", "@every 30s", func(context.Context) error {
		runs++
		return nil
	}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	ctx := context.Background()

	if n, _ := s.Tick(ctx); n != 0 {
		t.Fatalf("Tick() before due ran %d, want 0", n)
	}

	now = now.Add(31 * time.Second)
	if n, err := s.Tick(ctx); n != 1 || err != nil {
		t.Fatalf("Tick() = %d, %v; want 1, nil", n, err)
	}

	// Следующий запуск пересчитан от момента тика.
	if n, _ := s.Tick(ctx); n != 0 {
		t.Errorf("Tick() right after run ran %d, want 0", n)
	}
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestScheduler_ErrorsDoNotBlockOthers(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestScheduler(&now)

	boom := errors.New("boom")
	var secondRan bool

	_ = s.Add("first", "@every 1s", func(context.Context) error { return boom })
	_ = s.Add("second", "@every 1s", func(context.Context) error {
		secondRan = true
		return nil
	})

	now = now.Add(2 * time.Second)
	n, err := s.Tick(context.Background())
	if n != 2 {
		t.Errorf("Tick() ran %d, want 2", n)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Tick() error = %v, want boom", err)
	}
	if !secondRan {
		t.Error("second entry should run despite the first failing")
	}
}

func TestScheduler_AddRejectsDuplicatesAndBadExpr(t *testing.T) {
	now := time.Now()
	s := newTestScheduler(&now)
	noop := func(context.Context) error { return nil }

	if err := s.Add("a", "@every 1m", noop); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := s.Add("a", "@every 1m", noop); !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("Add() duplicate error = %v, want ErrDuplicateEntry", err)
	}
	if err := s.Add("b", "bogus", noop); !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("Add() bad expr error = %v, want ErrInvalidSchedule", err)
	}
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	s := New(Config{TickInterval: 10 * time.Millisecond, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
