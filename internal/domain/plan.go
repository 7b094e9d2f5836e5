package domain

import (
	"encoding/json"
	"time"
)

// Plan — именованный шаблон: упорядоченный список задач.
// После отправки не изменяется и служит только источником Job.
type Plan struct {
	// PlanID — идентификатор plan. Если пуст, назначается сервером.
	PlanID string `json:"plan_id" yaml:"plan_id"`

	// Description — описание для людей.
	Description string `json:"plan_description,omitempty" yaml:"plan_description,omitempty"`

	// Tasks — задачи в порядке выполнения.
	Tasks []TaskTemplate `json:"tasks" yaml:"tasks"`

	// Tags — теги по умолчанию для всех задач.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Env — окружение, копируемое в каждый job.
	Env map[string]any `json:"env,omitempty" yaml:"env,omitempty"`
}

// TaskTemplate — определение одной задачи в plan.
type TaskTemplate struct {
	TaskNumber uint32   `json:"task_number" yaml:"task_number"`
	Command    string   `json:"command" yaml:"command"`
	Args       []string `json:"args" yaml:"args"`

	// InputFromTask — номер задачи, чей stdout становится stdin.
	InputFromTask *uint32 `json:"input_from_task,omitempty" yaml:"input_from_task,omitempty"`

	// TimeoutSecs — ограничение времени выполнения.
	TimeoutSecs *uint64 `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty"`

	// DependsOn — явные зависимости по номерам задач.
	// nil означает неявную зависимость: input_from_task или предыдущая задача.
	DependsOn []uint32 `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	// Tags — теги задачи; переопределяют Plan.Tags.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Timeout возвращает ограничение времени (0 — без ограничения).
func (t *TaskTemplate) Timeout() time.Duration {
	if t.TimeoutSecs == nil {
		return 0
	}
	return time.Duration(*t.TimeoutSecs) * time.Second
}

// EnvJSON сериализует Plan.Env для записи в Job.Env.
func (p *Plan) EnvJSON() (json.RawMessage, error) {
	if len(p.Env) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(p.Env)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// EnvMap возвращает скалярные значения Plan.Env строками.
func (p *Plan) EnvMap() map[string]string {
	return StringEnv(p.Env)
}

// PlanRecord — сохранённая запись об отправленном plan.
type PlanRecord struct {
	PlanID      string    `json:"plan_id"`
	ActionID    string    `json:"action_id"`
	Description string    `json:"plan_description,omitempty"`
	Digest      string    `json:"digest"`
	JobIDs      []string  `json:"job_ids"`
	SubmittedAt time.Time `json:"submitted_at"`
}
