package api

import (
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
)

// Job DTOs

// JobResponse — ответ с job.
type JobResponse struct {
	ID           string           `json:"id"`
	ActionID     string           `json:"action_id"`
	PlanID       string           `json:"plan_id"`
	TaskNumber   uint32           `json:"task_number"`
	Command      string           `json:"command"`
	Args         []string         `json:"args"`
	Status       domain.JobStatus `json:"status"`
	Dependencies []string         `json:"dependencies"`
	Dependents   []string         `json:"dependents"`
	InputFrom    string           `json:"input_from,omitempty"`
	Tags         []string         `json:"tags"`
	WorkerID     string           `json:"worker_id,omitempty"`
	ExitCode     *int             `json:"exit_code,omitempty"`
	Error        string           `json:"error,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	StartedAt    *time.Time       `json:"started_at,omitempty"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
	DurationMs   int64            `json:"duration_ms,omitempty"`
}

// JobFromDomain конвертирует domain.Job в JobResponse.
func JobFromDomain(j *domain.Job) JobResponse {
	return JobResponse{
		ID:           j.ID,
		ActionID:     j.ActionID,
		PlanID:       j.PlanID,
		TaskNumber:   j.TaskNumber,
		Command:      j.Command,
		Args:         j.Args,
		Status:       j.Status,
		Dependencies: j.Dependencies,
		Dependents:   j.Dependents,
		InputFrom:    j.InputFrom,
		Tags:         j.Tags,
		WorkerID:     j.WorkerID,
		ExitCode:     j.ExitCode,
		Error:        j.Error,
		CreatedAt:    j.CreatedAt,
		StartedAt:    j.StartedAt,
		CompletedAt:  j.CompletedAt,
		DurationMs:   j.Duration().Milliseconds(),
	}
}

// Plan DTOs

// PlanResponse — запись plan со сводкой статусов его job.
type PlanResponse struct {
	PlanID      string                   `json:"plan_id"`
	ActionID    string                   `json:"action_id"`
	Description string                   `json:"plan_description,omitempty"`
	Digest      string                   `json:"digest"`
	JobIDs      []string                 `json:"job_ids"`
	SubmittedAt time.Time                `json:"submitted_at"`
	Statuses    map[domain.JobStatus]int `json:"statuses,omitempty"`
}

// PlanFromDomain конвертирует domain.PlanRecord в PlanResponse.
func PlanFromDomain(p *domain.PlanRecord) PlanResponse {
	return PlanResponse{
		PlanID:      p.PlanID,
		ActionID:    p.ActionID,
		Description: p.Description,
		Digest:      p.Digest,
		JobIDs:      p.JobIDs,
		SubmittedAt: p.SubmittedAt,
	}
}

// Worker DTOs

// WorkerResponse — ответ с записью воркера.
type WorkerResponse struct {
	ID            string    `json:"id"`
	Tools         []string  `json:"tools"`
	Tags          []string  `json:"tags"`
	RegisteredAt  time.Time `json:"registered_at"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	Draining      bool      `json:"draining"`
	Alive         bool      `json:"alive"`
}

// WorkerFromDomain конвертирует domain.WorkerInfo; alive считается от now.
func WorkerFromDomain(w *domain.WorkerInfo, now time.Time, staleAfter time.Duration) WorkerResponse {
	return WorkerResponse{
		ID:            w.ID,
		Tools:         w.Tools,
		Tags:          w.Tags,
		RegisteredAt:  w.RegisteredAt,
		LastHeartbeat: w.LastHeartbeat,
		Draining:      w.Draining,
		Alive:         !w.IsStale(now, staleAfter),
	}
}

// Queue DTOs

// QueueResponse — длина списка.
type QueueResponse struct {
	Name   string `json:"name"`
	Length int    `json:"length"`
}
