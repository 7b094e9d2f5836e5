package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/Conveyor/internal/domain"
)

func u32(v uint32) *uint32 { return &v }

func TestGraph_SortChain(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")

	order, err := g.Sort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := ""
	for _, n := range order {
		got += n.ID
	}
	if got != "ABC" {
		t.Errorf("expected order ABC, got %s", got)
	}
}

func TestGraph_DuplicateEdge(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B")
	g.AddEdge("A", "B")

	if g.Nodes["B"].InDegree != 1 {
		t.Errorf("expected inDegree 1, got %d", g.Nodes["B"].InDegree)
	}
}

func TestGraph_Cycle(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddEdge("C", "A")
	g.AddNode("D")

	_, err := g.Sort()
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("expected ErrCyclicDependency, got %v", err)
	}
}

// --- Plan Tests ---

func TestPlanDependencies_ImplicitChain(t *testing.T) {
	plan := &domain.Plan{
		PlanID: "p",
		Tasks: []domain.TaskTemplate{
			{TaskNumber: 1, Command: "echo"},
			{TaskNumber: 2, Command: "wc"},
			{TaskNumber: 3, Command: "cat", DependsOn: []uint32{}},
		},
	}

	deps, err := PlanDependencies(plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps[1]) != 0 {
		t.Errorf("task 1 should have no deps, got %v", deps[1])
	}
	if len(deps[2]) != 1 || deps[2][0] != 1 {
		t.Errorf("task 2 should depend on 1, got %v", deps[2])
	}
	if len(deps[3]) != 0 {
		t.Errorf("explicit empty depends_on should mean no deps, got %v", deps[3])
	}
}

func TestPlanDependencies_InputFromAddsEdge(t *testing.T) {
	plan := &domain.Plan{
		Tasks: []domain.TaskTemplate{
			{TaskNumber: 1, Command: "echo"},
			{TaskNumber: 2, Command: "echo"},
			{TaskNumber: 3, Command: "wc", InputFromTask: u32(1), DependsOn: []uint32{2}},
		},
	}

	deps, err := PlanDependencies(plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps[3]) != 2 {
		t.Errorf("task 3 should depend on 2 and 1, got %v", deps[3])
	}
}

func TestValidatePlan_Errors(t *testing.T) {
	tests := []struct {
		name string
		plan *domain.Plan
		want error
	}{
		{"empty", &domain.Plan{}, ErrEmptyPlan},
		{"zero task number", &domain.Plan{Tasks: []domain.TaskTemplate{{TaskNumber: 0, Command: "x"}}}, ErrInvalidTaskNumber},
		{"duplicate", &domain.Plan{Tasks: []domain.TaskTemplate{
			{TaskNumber: 1, Command: "x"}, {TaskNumber: 1, Command: "y"},
		}}, ErrDuplicateTask},
		{"empty command", &domain.Plan{Tasks: []domain.TaskTemplate{{TaskNumber: 1}}}, ErrEmptyCommand},
		{"unknown dep", &domain.Plan{Tasks: []domain.TaskTemplate{
			{TaskNumber: 1, Command: "x", DependsOn: []uint32{7}},
		}}, ErrMissingDependency},
		{"self input", &domain.Plan{Tasks: []domain.TaskTemplate{
			{TaskNumber: 1, Command: "x", InputFromTask: u32(1)},
		}}, ErrSelfDependency},
		{"cycle", &domain.Plan{Tasks: []domain.TaskTemplate{
			{TaskNumber: 1, Command: "x", DependsOn: []uint32{2}},
			{TaskNumber: 2, Command: "y", DependsOn: []uint32{1}},
		}}, ErrCyclicDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlan(tt.plan)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValidatePlan_ValidationErrorContext(t *testing.T) {
	plan := &domain.Plan{Tasks: []domain.TaskTemplate{{TaskNumber: 3}}}

	var verr *ValidationError
	if !errors.As(ValidatePlan(plan), &verr) {
		t.Fatal("expected ValidationError")
	}
	if verr.Node != "task 3" || verr.Field != "command" {
		t.Errorf("unexpected context: %+v", verr)
	}
}

// --- Expand Tests ---

func TestExpandPlan_MutualEdges(t *testing.T) {
	timeout := uint64(10)
	plan := &domain.Plan{
		PlanID: "plan-1",
		Tags:   []string{"cpu"},
		Env:    map[string]any{"LANG": "C"},
		Tasks: []domain.TaskTemplate{
			{TaskNumber: 1, Command: "echo", Args: []string{"hi"}},
			{TaskNumber: 2, Command: "wc", Args: []string{"-l"}, InputFromTask: u32(1), TimeoutSecs: &timeout, Tags: []string{"gpu"}},
		},
	}

	jobs, err := ExpandPlan(plan, "action-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	first, second := jobs[0], jobs[1]

	if !second.DependsOn(first.ID) || !first.HasDependent(second.ID) {
		t.Error("edges must be mirrored between jobs")
	}
	if second.InputFrom != first.ID {
		t.Errorf("expected input_from %s, got %s", first.ID, second.InputFrom)
	}
	if second.TimeoutSecs != 10 {
		t.Errorf("expected timeout 10, got %d", second.TimeoutSecs)
	}
	if first.Tags[0] != "cpu" || second.Tags[0] != "gpu" {
		t.Errorf("unexpected tags: %v %v", first.Tags, second.Tags)
	}
	if first.Status != domain.JobStatusPending || first.ActionID != "action-1" || first.PlanID != "plan-1" {
		t.Errorf("unexpected job fields: %+v", first)
	}
	if string(first.Env) != `{"LANG":"C"}` {
		t.Errorf("unexpected env: %s", first.Env)
	}

	if err := ValidateJobs(jobs); err != nil {
		t.Errorf("expanded jobs should validate: %v", err)
	}
}

func TestValidateJobs_AsymmetricEdge(t *testing.T) {
	a := domain.NewJob("a", "x", "p", 1, "echo", nil)
	b := domain.NewJob("b", "x", "p", 2, "echo", nil)
	b.AddDependency("a")

	err := ValidateJobs([]*domain.Job{a, b})
	if !errors.Is(err, ErrAsymmetricEdge) {
		t.Errorf("expected ErrAsymmetricEdge, got %v", err)
	}
}

func TestValidateJobs_Cycle(t *testing.T) {
	a := domain.NewJob("a", "x", "p", 1, "echo", nil)
	b := domain.NewJob("b", "x", "p", 2, "echo", nil)
	a.AddDependency("b")
	b.AddDependent("a")
	b.AddDependency("a")
	a.AddDependent("b")

	err := ValidateJobs([]*domain.Job{a, b})
	if !errors.Is(err, ErrCyclicDependency) {
		t.Errorf("expected ErrCyclicDependency, got %v", err)
	}
}

// --- Template Tests ---

func TestRenderArgs(t *testing.T) {
	env := map[string]string{"NAME": "world", "EMPTY": ""}

	args, err := RenderArgs([]string{"hello", "{{ .NAME }}", `{{ .EMPTY | default "x" }}`}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args[0] != "hello" || args[1] != "world" || args[2] != "x" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestRenderArgs_MissingKey(t *testing.T) {
	_, err := RenderArgs([]string{"{{ .MISSING }}"}, map[string]string{})
	if !errors.Is(err, ErrTemplateRender) {
		t.Errorf("expected ErrTemplateRender, got %v", err)
	}
}

// --- Digest Tests ---

func TestPlanDigest_IgnoresPlanID(t *testing.T) {
	a := &domain.Plan{PlanID: "one", Tasks: []domain.TaskTemplate{{TaskNumber: 1, Command: "echo"}}}
	b := &domain.Plan{PlanID: "two", Tasks: []domain.TaskTemplate{{TaskNumber: 1, Command: "echo"}}}
	c := &domain.Plan{PlanID: "one", Tasks: []domain.TaskTemplate{{TaskNumber: 1, Command: "cat"}}}

	da, _ := PlanDigest(a)
	db, _ := PlanDigest(b)
	dc, _ := PlanDigest(c)

	if da != db {
		t.Error("digest should not depend on plan id")
	}
	if da == dc {
		t.Error("digest should depend on commands")
	}
	if len(da) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(da))
	}
}
