package orchestrator

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/kv"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

func newTestOrchestrator(t *testing.T, policy FailurePolicy) (*Orchestrator, *kv.Memory) {
	t.Helper()
	store := kv.NewMemory()
	t.Cleanup(func() { _ = store.Close() })

	o := New(Config{
		Store:         store,
		FailurePolicy: policy,
		Logger:        telemetry.Discard(),
	})
	return o, store
}

// newJobs строит пакет job; edges: id → его зависимости.
func newJobs(ids []string, edges map[string][]string) []*domain.Job {
	byID := make(map[string]*domain.Job, len(ids))
	jobs := make([]*domain.Job, 0, len(ids))
	for i, id := range ids {
		job := domain.NewJob(id, "action-1", "plan-1", uint32(i+1), "echo", []string{id})
		byID[id] = job
		jobs = append(jobs, job)
	}
	for id, deps := range edges {
		for _, dep := range deps {
			byID[id].AddDependency(dep)
			byID[dep].AddDependent(id)
		}
	}
	return jobs
}

func queueContents(t *testing.T, store kv.Store, queue string) []string {
	t.Helper()
	items, err := store.LRange(context.Background(), queue, 0, -1)
	if err != nil {
		t.Fatalf("LRange(%s) error: %v", queue, err)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, string(item))
	}
	return out
}

func countOf(list []string, id string) int {
	n := 0
	for _, v := range list {
		if v == id {
			n++
		}
	}
	return n
}

func mustStatus(t *testing.T, o *Orchestrator, id string, want domain.JobStatus) *domain.Job {
	t.Helper()
	job, err := o.GetJob(context.Background(), id)
	if err != nil {
		t.Fatalf("GetJob(%s) error: %v", id, err)
	}
	if job.Status != want {
		t.Fatalf("job %s status = %s, want %s", id, job.Status, want)
	}
	return job
}

// --- SubmitJobs Tests ---

func TestSubmitJobs_EnqueuesRoots(t *testing.T) {
	o, store := newTestOrchestrator(t, "")
	ctx := context.Background()

	jobs := newJobs([]string{"a", "b", "c"}, map[string][]string{"b": {"a"}})
	if err := o.SubmitJobs(ctx, jobs); err != nil {
		t.Fatalf("SubmitJobs() error: %v", err)
	}

	mustStatus(t, o, "a", domain.JobStatusReady)
	mustStatus(t, o, "b", domain.JobStatusPending)
	mustStatus(t, o, "c", domain.JobStatusReady)

	queue := queueContents(t, store, domain.QueueDefault)
	if len(queue) != 2 || !slices.Contains(queue, "a") || !slices.Contains(queue, "c") {
		t.Errorf("queue = %v, want [a c] in any order", queue)
	}
}

func TestSubmitJobs_RoutesByTag(t *testing.T) {
	o, store := newTestOrchestrator(t, "")
	ctx := context.Background()

	jobs := newJobs([]string{"train"}, nil)
	jobs[0].Tags = []string{"gpu"}
	if err := o.SubmitJobs(ctx, jobs); err != nil {
		t.Fatalf("SubmitJobs() error: %v", err)
	}

	if got := queueContents(t, store, domain.QueueGPU); !slices.Equal(got, []string{"train"}) {
		t.Errorf("gpu queue = %v, want [train]", got)
	}
	if got := queueContents(t, store, domain.QueueDefault); len(got) != 0 {
		t.Errorf("default queue = %v, want empty", got)
	}
}

func TestSubmitJobs_RejectsCycle(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")
	ctx := context.Background()

	jobs := newJobs([]string{"a", "b"}, map[string][]string{"a": {"b"}, "b": {"a"}})
	err := o.SubmitJobs(ctx, jobs)
	if !errors.Is(err, ErrInvalidJobs) {
		t.Fatalf("SubmitJobs() error = %v, want ErrInvalidJobs", err)
	}

	if _, err := o.GetJob(ctx, "a"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("GetJob(a) error = %v, want ErrJobNotFound", err)
	}
}

func TestSubmitJobs_RejectsForeignDependency(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")

	jobs := newJobs([]string{"a"}, nil)
	jobs[0].AddDependency("elsewhere")

	if err := o.SubmitJobs(context.Background(), jobs); !errors.Is(err, ErrInvalidJobs) {
		t.Errorf("SubmitJobs() error = %v, want ErrInvalidJobs", err)
	}
}

// --- Dependency Trigger Tests ---

func TestCompleteJob_EnqueuesWhenAllDependenciesComplete(t *testing.T) {
	o, store := newTestOrchestrator(t, "")
	ctx := context.Background()

	jobs := newJobs([]string{"b", "c", "d"}, map[string][]string{"d": {"b", "c"}})
	if err := o.SubmitJobs(ctx, jobs); err != nil {
		t.Fatalf("SubmitJobs() error: %v", err)
	}

	if err := o.CompleteJob(ctx, "b", 0); err != nil {
		t.Fatalf("CompleteJob(b) error: %v", err)
	}
	mustStatus(t, o, "d", domain.JobStatusPending)

	if err := o.CompleteJob(ctx, "c", 0); err != nil {
		t.Fatalf("CompleteJob(c) error: %v", err)
	}
	mustStatus(t, o, "d", domain.JobStatusReady)

	// Повторное завершение не ставит d в очередь второй раз.
	if err := o.CompleteJob(ctx, "c", 0); err != nil {
		t.Fatalf("CompleteJob(c) repeat error: %v", err)
	}

	if n := countOf(queueContents(t, store, domain.QueueDefault), "d"); n != 1 {
		t.Errorf("d enqueued %d times, want 1", n)
	}
}

func TestCompleteJob_NotFound(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")

	err := o.CompleteJob(context.Background(), "missing", 0)
	if !errors.Is(err, ErrJobNotFound) {
		t.Errorf("CompleteJob() error = %v, want ErrJobNotFound", err)
	}
}

func TestCompleteJob_ConcurrentParentsEnqueueOnce(t *testing.T) {
	o, store := newTestOrchestrator(t, "")
	ctx := context.Background()

	parents := []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7"}
	ids := append(slices.Clone(parents), "child")
	jobs := newJobs(ids, map[string][]string{"child": parents})
	if err := o.SubmitJobs(ctx, jobs); err != nil {
		t.Fatalf("SubmitJobs() error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(parents))
	for _, id := range parents {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			errs <- o.CompleteJob(ctx, id, 0)
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("CompleteJob() error: %v", err)
		}
	}

	mustStatus(t, o, "child", domain.JobStatusReady)
	if n := countOf(queueContents(t, store, domain.QueueDefault), "child"); n != 1 {
		t.Errorf("child enqueued %d times, want 1", n)
	}
	if n := o.locks.size(); n != 0 {
		t.Errorf("locks held after completion = %d, want 0", n)
	}
}

// --- Failure Policy Tests ---

func TestFailJob_CascadeCancel(t *testing.T) {
	o, _ := newTestOrchestrator(t, FailureCascadeCancel)
	ctx := context.Background()

	jobs := newJobs([]string{"a", "b", "c"}, map[string][]string{"b": {"a"}, "c": {"b"}})
	if err := o.SubmitJobs(ctx, jobs); err != nil {
		t.Fatalf("SubmitJobs() error: %v", err)
	}

	if err := o.FailJob(ctx, "a", 3); err != nil {
		t.Fatalf("FailJob() error: %v", err)
	}

	a := mustStatus(t, o, "a", domain.JobStatusFailed)
	if a.ExitCode == nil || *a.ExitCode != 3 {
		t.Errorf("exit code = %v, want 3", a.ExitCode)
	}
	b := mustStatus(t, o, "b", domain.JobStatusCancelled)
	if b.Error == "" {
		t.Error("cancelled job should carry a reason")
	}
	mustStatus(t, o, "c", domain.JobStatusCancelled)
}

func TestFailJob_Hold(t *testing.T) {
	o, _ := newTestOrchestrator(t, FailureHold)
	ctx := context.Background()

	jobs := newJobs([]string{"a", "b"}, map[string][]string{"b": {"a"}})
	if err := o.SubmitJobs(ctx, jobs); err != nil {
		t.Fatalf("SubmitJobs() error: %v", err)
	}

	if err := o.FailJob(ctx, "a", 1); err != nil {
		t.Fatalf("FailJob() error: %v", err)
	}
	mustStatus(t, o, "b", domain.JobStatusPending)
}

// --- Start / Cancel Tests ---

func TestStartJob(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")
	ctx := context.Background()

	jobs := newJobs([]string{"a", "b"}, map[string][]string{"b": {"a"}})
	if err := o.SubmitJobs(ctx, jobs); err != nil {
		t.Fatalf("SubmitJobs() error: %v", err)
	}

	if err := o.StartJob(ctx, "a", "w1"); err != nil {
		t.Fatalf("StartJob() error: %v", err)
	}
	a := mustStatus(t, o, "a", domain.JobStatusRunning)
	if a.WorkerID != "w1" || a.StartedAt == nil {
		t.Errorf("worker = %q, started = %v", a.WorkerID, a.StartedAt)
	}

	// Тот же воркер повторно — без ошибки.
	if err := o.StartJob(ctx, "a", "w1"); err != nil {
		t.Errorf("StartJob() repeat error: %v", err)
	}
	if err := o.StartJob(ctx, "a", "w2"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("StartJob() by other worker error = %v, want ErrInvalidTransition", err)
	}
	if err := o.StartJob(ctx, "b", "w1"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("StartJob(pending) error = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelJob(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")
	ctx := context.Background()

	jobs := newJobs([]string{"a", "b", "c"}, map[string][]string{"b": {"a"}})
	if err := o.SubmitJobs(ctx, jobs); err != nil {
		t.Fatalf("SubmitJobs() error: %v", err)
	}

	if err := o.CancelJob(ctx, "a"); err != nil {
		t.Fatalf("CancelJob() error: %v", err)
	}
	mustStatus(t, o, "a", domain.JobStatusCancelled)
	mustStatus(t, o, "b", domain.JobStatusCancelled)

	if err := o.CancelJob(ctx, "a"); err != nil {
		t.Errorf("CancelJob() repeat error: %v", err)
	}

	if err := o.CompleteJob(ctx, "c", 0); err != nil {
		t.Fatalf("CompleteJob(c) error: %v", err)
	}
	if err := o.CancelJob(ctx, "c"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("CancelJob(completed) error = %v, want ErrInvalidTransition", err)
	}
}

// --- Plan Tests ---

func testPlan(id string) *domain.Plan {
	input := uint32(1)
	return &domain.Plan{
		PlanID: id,
		Tasks: []domain.TaskTemplate{
			{TaskNumber: 1, Command: "echo", Args: []string{"hello"}},
			{TaskNumber: 2, Command: "wc", Args: []string{"-c"}, InputFromTask: &input},
		},
	}
}

func TestSubmitPlan(t *testing.T) {
	o, store := newTestOrchestrator(t, "")
	ctx := context.Background()

	rec, err := o.SubmitPlan(ctx, testPlan("build"))
	if err != nil {
		t.Fatalf("SubmitPlan() error: %v", err)
	}
	if rec.PlanID != "build" || len(rec.JobIDs) != 2 || rec.Digest == "" {
		t.Fatalf("record = %+v", rec)
	}

	first := mustStatus(t, o, rec.JobIDs[0], domain.JobStatusReady)
	second := mustStatus(t, o, rec.JobIDs[1], domain.JobStatusPending)
	if second.InputFrom != first.ID {
		t.Errorf("InputFrom = %q, want %q", second.InputFrom, first.ID)
	}
	if !slices.Equal(queueContents(t, store, domain.QueueDefault), []string{first.ID}) {
		t.Errorf("queue should hold only the first job")
	}

	got, err := o.GetPlan(ctx, "build")
	if err != nil {
		t.Fatalf("GetPlan() error: %v", err)
	}
	if !slices.Equal(got.JobIDs, rec.JobIDs) {
		t.Errorf("GetPlan() jobs = %v, want %v", got.JobIDs, rec.JobIDs)
	}
}

func TestSubmitPlan_DuplicateID(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")
	ctx := context.Background()

	if _, err := o.SubmitPlan(ctx, testPlan("dup")); err != nil {
		t.Fatalf("SubmitPlan() error: %v", err)
	}
	if _, err := o.SubmitPlan(ctx, testPlan("dup")); !errors.Is(err, ErrPlanExists) {
		t.Errorf("SubmitPlan() duplicate error = %v, want ErrPlanExists", err)
	}
}

func TestSubmitPlan_AssignsID(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")

	rec, err := o.SubmitPlan(context.Background(), testPlan(""))
	if err != nil {
		t.Fatalf("SubmitPlan() error: %v", err)
	}
	if rec.PlanID == "" {
		t.Error("plan id should be assigned")
	}
}

func TestSubmitPlan_Invalid(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")

	plan := &domain.Plan{PlanID: "bad"}
	if _, err := o.SubmitPlan(context.Background(), plan); !errors.Is(err, ErrInvalidPlan) {
		t.Errorf("SubmitPlan() error = %v, want ErrInvalidPlan", err)
	}
	if _, err := o.GetPlan(context.Background(), "bad"); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("GetPlan() error = %v, want ErrPlanNotFound", err)
	}
}

func TestRecordResult(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")
	ctx := context.Background()

	rec, err := o.SubmitPlan(ctx, testPlan("p"))
	if err != nil {
		t.Fatalf("SubmitPlan() error: %v", err)
	}
	first := rec.JobIDs[0]

	if _, err := o.GetResult(ctx, first); !errors.Is(err, ErrResultNotFound) {
		t.Errorf("GetResult() before result error = %v, want ErrResultNotFound", err)
	}

	if err := o.StartJob(ctx, first, "w1"); err != nil {
		t.Fatalf("StartJob() error: %v", err)
	}
	res := &domain.JobResult{
		JobID:    first,
		WorkerID: "w1",
		Status:   domain.ResultCompleted,
		Stdout:   "hello\n",
	}
	if err := o.RecordResult(ctx, res); err != nil {
		t.Fatalf("RecordResult() error: %v", err)
	}

	mustStatus(t, o, first, domain.JobStatusCompleted)
	mustStatus(t, o, rec.JobIDs[1], domain.JobStatusReady)

	got, err := o.GetResult(ctx, first)
	if err != nil {
		t.Fatalf("GetResult() error: %v", err)
	}
	if got.Stdout != "hello\n" {
		t.Errorf("stdout = %q, want %q", got.Stdout, "hello\n")
	}

	missing := &domain.JobResult{JobID: "nope", Status: domain.ResultFailed}
	if err := o.RecordResult(ctx, missing); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("RecordResult(missing) error = %v, want ErrJobNotFound", err)
	}
}

func TestRecordResult_RejectedResultNotStored(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")
	ctx := context.Background()

	rec, err := o.SubmitPlan(ctx, testPlan("rejected"))
	if err != nil {
		t.Fatalf("SubmitPlan() error: %v", err)
	}
	first := rec.JobIDs[0]

	if err := o.StartJob(ctx, first, "w1"); err != nil {
		t.Fatalf("StartJob() error: %v", err)
	}
	failed := &domain.JobResult{JobID: first, WorkerID: "w1", Status: domain.ResultFailed, ExitCode: 3, Stderr: "boom"}
	if err := o.RecordResult(ctx, failed); err != nil {
		t.Fatalf("RecordResult(failed) error: %v", err)
	}

	late := &domain.JobResult{JobID: first, WorkerID: "w1", Status: domain.ResultCompleted, Stdout: "late"}
	if err := o.RecordResult(ctx, late); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("RecordResult(completed after failed) error = %v, want ErrInvalidTransition", err)
	}

	job := mustStatus(t, o, first, domain.JobStatusFailed)
	if job.ExitCode == nil || *job.ExitCode != 3 {
		t.Errorf("job exit code = %v, want 3", job.ExitCode)
	}
	got, err := o.GetResult(ctx, first)
	if err != nil {
		t.Fatalf("GetResult() error: %v", err)
	}
	if got.Status != domain.ResultFailed || got.ExitCode != 3 || got.Stdout != "" {
		t.Errorf("stored result = %+v, want the failed result", got)
	}

	// Повтор того же итога идемпотентен.
	if err := o.RecordResult(ctx, failed); err != nil {
		t.Errorf("RecordResult(repeat) error: %v", err)
	}
}

func TestRecordResult_AfterReaperFailure(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")
	ctx := context.Background()

	rec, err := o.SubmitPlan(ctx, testPlan("lost"))
	if err != nil {
		t.Fatalf("SubmitPlan() error: %v", err)
	}
	first := rec.JobIDs[0]

	if err := o.StartJob(ctx, first, "w1"); err != nil {
		t.Fatalf("StartJob() error: %v", err)
	}
	if err := o.FailJob(ctx, first, -1); err != nil {
		t.Fatalf("FailJob() error: %v", err)
	}

	res := &domain.JobResult{JobID: first, WorkerID: "w1", Status: domain.ResultFailed, ExitCode: 3}
	if err := o.RecordResult(ctx, res); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("RecordResult() error = %v, want ErrInvalidTransition", err)
	}
	if _, err := o.GetResult(ctx, first); !errors.Is(err, ErrResultNotFound) {
		t.Errorf("GetResult() error = %v, want ErrResultNotFound", err)
	}
}

func TestRecordResult_AfterCancel(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")
	ctx := context.Background()

	rec, err := o.SubmitPlan(ctx, testPlan("cancelled"))
	if err != nil {
		t.Fatalf("SubmitPlan() error: %v", err)
	}
	first := rec.JobIDs[0]

	if err := o.StartJob(ctx, first, "w1"); err != nil {
		t.Fatalf("StartJob() error: %v", err)
	}
	if err := o.CancelJob(ctx, first); err != nil {
		t.Fatalf("CancelJob() error: %v", err)
	}

	res := &domain.JobResult{JobID: first, WorkerID: "w1", Status: domain.ResultCompleted, Stdout: "done"}
	if err := o.RecordResult(ctx, res); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("RecordResult() error = %v, want ErrInvalidTransition", err)
	}
	mustStatus(t, o, first, domain.JobStatusCancelled)
	if _, err := o.GetResult(ctx, first); !errors.Is(err, ErrResultNotFound) {
		t.Errorf("GetResult() error = %v, want ErrResultNotFound", err)
	}
}

// --- Worker Registry Tests ---

func TestHeartbeat_RegistersAndDrains(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")
	ctx := context.Background()

	if err := o.RequestShutdown(ctx, "w1"); !errors.Is(err, ErrWorkerNotFound) {
		t.Errorf("RequestShutdown(unknown) error = %v, want ErrWorkerNotFound", err)
	}

	drain, err := o.Heartbeat(ctx, "w1")
	if err != nil || drain {
		t.Fatalf("Heartbeat() = %v, %v; want false, nil", drain, err)
	}
	if err := o.RegisterTags(ctx, "w1", []string{"gpu", "cpu"}); err != nil {
		t.Fatalf("RegisterTags() error: %v", err)
	}
	if err := o.RegisterTools(ctx, "w1", []string{"python3"}); err != nil {
		t.Fatalf("RegisterTools() error: %v", err)
	}

	w, err := o.Worker(ctx, "w1")
	if err != nil {
		t.Fatalf("Worker() error: %v", err)
	}
	if !slices.Equal(w.Tags, []string{"gpu", "cpu"}) || !slices.Equal(w.Tools, []string{"python3"}) {
		t.Errorf("worker = %+v", w)
	}

	if err := o.RequestShutdown(ctx, "w1"); err != nil {
		t.Fatalf("RequestShutdown() error: %v", err)
	}
	drain, err = o.Heartbeat(ctx, "w1")
	if err != nil || !drain {
		t.Errorf("Heartbeat() after shutdown = %v, %v; want true, nil", drain, err)
	}

	workers, err := o.Workers(ctx)
	if err != nil {
		t.Fatalf("Workers() error: %v", err)
	}
	if len(workers) != 1 {
		t.Errorf("len(Workers()) = %d, want 1", len(workers))
	}
}

// --- Reaper Tests ---

func claim(t *testing.T, store kv.Store, queue string) string {
	t.Helper()
	v, err := store.BRPopLPush(context.Background(), queue, domain.QueueProcessing, time.Second)
	if err != nil {
		t.Fatalf("BRPopLPush() error: %v", err)
	}
	return string(v)
}

func TestReaper_RemovesFinishedAndUnknown(t *testing.T) {
	o, store := newTestOrchestrator(t, "")
	ctx := context.Background()

	if err := o.SubmitJobs(ctx, newJobs([]string{"a"}, nil)); err != nil {
		t.Fatalf("SubmitJobs() error: %v", err)
	}
	id := claim(t, store, domain.QueueDefault)
	if err := o.CompleteJob(ctx, id, 0); err != nil {
		t.Fatalf("CompleteJob() error: %v", err)
	}
	if err := store.LPush(ctx, domain.QueueProcessing, []byte("ghost")); err != nil {
		t.Fatalf("LPush() error: %v", err)
	}

	stats, err := NewReaper(o, ReaperConfig{}).Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if stats.Removed != 2 {
		t.Errorf("Removed = %d, want 2", stats.Removed)
	}
	if got := queueContents(t, store, domain.QueueProcessing); len(got) != 0 {
		t.Errorf("processing = %v, want empty", got)
	}
}

func TestReaper_FailsJobsOfLostWorkers(t *testing.T) {
	o, store := newTestOrchestrator(t, FailureCascadeCancel)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	o.now = func() time.Time { return now }

	jobs := newJobs([]string{"a", "b"}, map[string][]string{"b": {"a"}})
	if err := o.SubmitJobs(ctx, jobs); err != nil {
		t.Fatalf("SubmitJobs() error: %v", err)
	}
	if _, err := o.Heartbeat(ctx, "w1"); err != nil {
		t.Fatalf("Heartbeat() error: %v", err)
	}
	id := claim(t, store, domain.QueueDefault)
	if err := o.StartJob(ctx, id, "w1"); err != nil {
		t.Fatalf("StartJob() error: %v", err)
	}

	reaper := NewReaper(o, ReaperConfig{StaleAfter: time.Minute})

	stats, err := reaper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if stats.Failed != 0 {
		t.Fatalf("live worker: Failed = %d, want 0", stats.Failed)
	}
	mustStatus(t, o, "a", domain.JobStatusRunning)

	now = now.Add(2 * time.Minute)
	stats, err = reaper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}

	a := mustStatus(t, o, "a", domain.JobStatusFailed)
	if a.ExitCode == nil || *a.ExitCode != -1 {
		t.Errorf("exit code = %v, want -1", a.ExitCode)
	}
	mustStatus(t, o, "b", domain.JobStatusCancelled)
	if got := queueContents(t, store, domain.QueueProcessing); len(got) != 0 {
		t.Errorf("processing = %v, want empty", got)
	}
}

func TestReaper_RequeuesUnstartedClaims(t *testing.T) {
	o, store := newTestOrchestrator(t, "")
	ctx := context.Background()

	if err := o.SubmitJobs(ctx, newJobs([]string{"a"}, nil)); err != nil {
		t.Fatalf("SubmitJobs() error: %v", err)
	}
	claim(t, store, domain.QueueDefault)

	reaper := NewReaper(o, ReaperConfig{})

	stats, _ := reaper.Sweep(ctx)
	if stats.Requeued != 0 {
		t.Fatalf("first sweep Requeued = %d, want 0", stats.Requeued)
	}

	stats, err := reaper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if stats.Requeued != 1 {
		t.Errorf("second sweep Requeued = %d, want 1", stats.Requeued)
	}
	if got := queueContents(t, store, domain.QueueDefault); !slices.Equal(got, []string{"a"}) {
		t.Errorf("default queue = %v, want [a]", got)
	}
	if got := queueContents(t, store, domain.QueueProcessing); len(got) != 0 {
		t.Errorf("processing = %v, want empty", got)
	}
}
