package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/kv"
)

func TestJobRepo_SaveGet(t *testing.T) {
	ctx := context.Background()
	jobs := NewJobRepo(kv.NewMemory())

	job := domain.NewJob("j1", "a", "p", 1, "echo", []string{"hi"})
	if err := jobs.Save(ctx, job); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := jobs.Get(ctx, "j1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Command != "echo" || got.Status != domain.JobStatusPending {
		t.Errorf("unexpected job: %+v", got)
	}

	if _, err := jobs.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestJobRepo_Corrupt(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	_ = store.Set(ctx, JobKey("bad"), []byte("{not json"))

	_, err := NewJobRepo(store).Get(ctx, "bad")
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestPlanRepo_CreateRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	plans := NewPlanRepo(kv.NewMemory())

	rec := &domain.PlanRecord{PlanID: "p1", ActionID: "a1", SubmittedAt: time.Now().UTC()}
	if err := plans.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := plans.Create(ctx, rec); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestWorkerRepo_IndexOnce(t *testing.T) {
	ctx := context.Background()
	workers := NewWorkerRepo(kv.NewMemory())

	w := &domain.WorkerInfo{ID: "cvw-1", Tags: []string{"cpu"}}
	if err := workers.Save(ctx, w); err != nil {
		t.Fatalf("save: %v", err)
	}
	w.LastHeartbeat = time.Now().UTC()
	if err := workers.Save(ctx, w); err != nil {
		t.Fatalf("save: %v", err)
	}

	list, err := workers.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 worker, got %d", len(list))
	}
}
