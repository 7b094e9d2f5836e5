package executor

import "strings"

// TaskResult — результат выполнения одной задачи.
type TaskResult struct {
	TaskNumber uint32 `json:"task_number"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ExitCode   int    `json:"exit_code"`
	Success    bool   `json:"success"`
	DurationMs int64  `json:"duration_ms"`
}

// PlanResult — результат выполнения plan.
type PlanResult struct {
	JobID       string       `json:"job_id"`
	PlanID      string       `json:"plan_id"`
	TaskResults []TaskResult `json:"task_results"`

	// Success — все выполненные задачи успешны.
	Success bool `json:"success"`
}

// newPlanResult считает Success как AND по всем результатам.
func newPlanResult(jobID, planID string, results []TaskResult) *PlanResult {
	success := true
	for _, r := range results {
		success = success && r.Success
	}
	return &PlanResult{
		JobID:       jobID,
		PlanID:      planID,
		TaskResults: results,
		Success:     success,
	}
}

// CombinedStdout склеивает stdout всех задач без разделителей.
func (r *PlanResult) CombinedStdout() string {
	var b strings.Builder
	for _, t := range r.TaskResults {
		b.WriteString(t.Stdout)
	}
	return b.String()
}

// CombinedStderr склеивает stderr всех задач без разделителей.
func (r *PlanResult) CombinedStderr() string {
	var b strings.Builder
	for _, t := range r.TaskResults {
		b.WriteString(t.Stderr)
	}
	return b.String()
}
