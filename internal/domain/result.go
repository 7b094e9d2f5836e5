package domain

import "time"

// ResultStatus — итог выполнения, который воркер присылает в JOB.RESULT.
type ResultStatus string

const (
	ResultCompleted ResultStatus = "completed"
	ResultFailed    ResultStatus = "failed"
)

// JobResult — захваченный вывод выполненного job.
type JobResult struct {
	JobID      string       `json:"job_id"`
	WorkerID   string       `json:"worker_id"`
	Status     ResultStatus `json:"status"`
	ExitCode   int          `json:"exit_code"`
	Stdout     string       `json:"stdout"`
	Stderr     string       `json:"stderr"`
	RecordedAt time.Time    `json:"recorded_at"`
}

// ParseResultStatus проверяет статус результата.
func ParseResultStatus(s string) (ResultStatus, bool) {
	switch ResultStatus(s) {
	case ResultCompleted, ResultFailed:
		return ResultStatus(s), true
	default:
		return "", false
	}
}
