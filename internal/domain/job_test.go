package domain

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestJob_RoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	started := created.Add(2 * time.Second)
	completed := started.Add(5 * time.Second)
	exitCode := 0

	job := &Job{
		ID:           "job-2",
		ActionID:     "action-1",
		PlanID:       "plan-1",
		TaskNumber:   2,
		Command:      "wc",
		Args:         []string{"-l"},
		Env:          json.RawMessage(`{"LANG":"C","RETRIES":3}`),
		Status:       JobStatusCompleted,
		Dependencies: []string{"job-1"},
		Dependents:   []string{"job-3", "job-4"},
		InputFrom:    "job-1",
		TimeoutSecs:  30,
		WorkerID:     "cvw-1",
		CreatedAt:    created,
		StartedAt:    &started,
		CompletedAt:  &completed,
		ExitCode:     &exitCode,
		Tags:         []string{"gpu"},
	}

	data, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Job
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(job, &decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, *job)
	}
}

func TestJob_StatusSerializesLowercase(t *testing.T) {
	job := NewJob("j", "a", "p", 1, "echo", nil)

	data, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["status"] != "pending" {
		t.Errorf("expected status pending, got %v", raw["status"])
	}
}

func TestJob_AddDependencyDeduplicates(t *testing.T) {
	job := NewJob("j", "a", "p", 1, "echo", nil)
	job.AddDependency("b")
	job.AddDependency("a")
	job.AddDependency("b")

	if !reflect.DeepEqual(job.Dependencies, []string{"a", "b"}) {
		t.Errorf("unexpected dependencies: %v", job.Dependencies)
	}
	if !job.DependsOn("a") || job.DependsOn("c") {
		t.Error("DependsOn returned wrong answer")
	}
}

func TestJob_EnvList(t *testing.T) {
	job := NewJob("j", "a", "p", 1, "echo", nil)
	job.Env = json.RawMessage(`{"B":"two","A":1,"FLAG":true,"NESTED":{"x":1}}`)

	env, err := job.EnvList()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"A=1", "B=two", "FLAG=true"}
	if !reflect.DeepEqual(env, want) {
		t.Errorf("expected %v, got %v", want, env)
	}
}

func TestJob_EnvListRejectsNonObject(t *testing.T) {
	job := NewJob("j", "a", "p", 1, "echo", nil)
	job.Env = json.RawMessage(`[1,2]`)

	if _, err := job.EnvList(); err == nil {
		t.Error("expected error for array env")
	}
}

// --- Status Tests ---

func TestJobStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobStatusPending, JobStatusReady, true},
		{JobStatusPending, JobStatusRunning, false},
		{JobStatusPending, JobStatusCancelled, true},
		{JobStatusReady, JobStatusRunning, true},
		{JobStatusRunning, JobStatusCompleted, true},
		{JobStatusRunning, JobStatusReady, false},
		{JobStatusCompleted, JobStatusFailed, false},
		{JobStatusFailed, JobStatusReady, false},
		{JobStatusCancelled, JobStatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestJobStatus_NoExitFromTerminal(t *testing.T) {
	all := []JobStatus{
		JobStatusPending, JobStatusReady, JobStatusRunning,
		JobStatusCompleted, JobStatusFailed, JobStatusCancelled,
	}
	for _, from := range all {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range all {
			if from.CanTransitionTo(to) {
				t.Errorf("terminal %s must not transition to %s", from, to)
			}
		}
	}
}

// --- Routing Tests ---

func TestRouter_QueueFor(t *testing.T) {
	r := DefaultRouter()

	if q := r.QueueFor([]string{"cpu", "gpu"}); q != QueueGPU {
		t.Errorf("expected %s, got %s", QueueGPU, q)
	}
	if q := r.QueueFor([]string{"cpu"}); q != QueueDefault {
		t.Errorf("expected %s, got %s", QueueDefault, q)
	}
	if q := r.QueueFor(nil); q != QueueDefault {
		t.Errorf("expected %s, got %s", QueueDefault, q)
	}
}

func TestRouter_FirstRouteWins(t *testing.T) {
	r := NewRouter("q:any", Route{Tag: "gpu", Queue: "q:gpu"}, Route{Tag: "arm", Queue: "q:arm"})

	if q := r.QueueFor([]string{"arm", "gpu"}); q != "q:gpu" {
		t.Errorf("expected q:gpu, got %s", q)
	}
	if q := r.QueueFor([]string{"arm"}); q != "q:arm" {
		t.Errorf("expected q:arm, got %s", q)
	}
}

func TestRouter_QueuesForWorker(t *testing.T) {
	r := DefaultRouter()

	got := r.QueuesForWorker([]string{"gpu"})
	if !reflect.DeepEqual(got, []string{QueueGPU, QueueDefault}) {
		t.Errorf("unexpected queues: %v", got)
	}

	got = r.QueuesForWorker([]string{"cpu"})
	if !reflect.DeepEqual(got, []string{QueueDefault}) {
		t.Errorf("unexpected queues: %v", got)
	}
}
