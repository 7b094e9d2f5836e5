package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"time"
)

// Job — одна исполняемая единица DAG.
//
// Job создаётся Orchestrator'ом при разворачивании Plan (один job на TaskTemplate).
// Статус меняет только Orchestrator: воркер сообщает о прогрессе через
// протокольные команды, которые Orchestrator переводит в те же мутации.
type Job struct {
	// ID — уникальный идентификатор job.
	ID string `json:"id"`

	// ActionID — идентификатор отправки plan, породившей job.
	ActionID string `json:"action_id"`

	// PlanID — ссылка на исходный plan.
	PlanID string `json:"plan_id"`

	// TaskNumber — номер задачи внутри plan (начиная с 1).
	TaskNumber uint32 `json:"task_number"`

	// Command и Args — запускаемая программа.
	Command string   `json:"command"`
	Args    []string `json:"args"`

	// Env — непрозрачный JSON-объект: переменные окружения и значения для подстановки в Args.
	Env json.RawMessage `json:"env,omitempty"`

	// Status — текущий статус job.
	Status JobStatus `json:"status"`

	// Dependencies — job, которые должны быть completed до запуска этого.
	Dependencies []string `json:"dependencies"`

	// Dependents — обратный индекс: job, ждущие этот.
	Dependents []string `json:"dependents"`

	// InputFrom — job, чей stdout подаётся на stdin.
	InputFrom string `json:"input_from,omitempty"`

	// TimeoutSecs — ограничение времени выполнения (0 — без ограничения).
	TimeoutSecs uint64 `json:"timeout_secs,omitempty"`

	// WorkerID — воркер, выполняющий job.
	WorkerID string `json:"worker_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// ExitCode — код завершения процесса.
	ExitCode *int `json:"exit_code,omitempty"`

	// Tags — требуемые capability-теги, определяют очередь.
	Tags []string `json:"tags"`

	// Error — причина отмены или принудительного завершения.
	Error string `json:"error,omitempty"`
}

// NewJob создаёт job в статусе pending.
func NewJob(id, actionID, planID string, taskNumber uint32, command string, args []string) *Job {
	if args == nil {
		args = []string{}
	}
	return &Job{
		ID:           id,
		ActionID:     actionID,
		PlanID:       planID,
		TaskNumber:   taskNumber,
		Command:      command,
		Args:         args,
		Status:       JobStatusPending,
		Dependencies: []string{},
		Dependents:   []string{},
		Tags:         []string{},
		CreatedAt:    time.Now().UTC(),
	}
}

// AddDependency добавляет зависимость (без дубликатов, порядок отсортирован).
func (j *Job) AddDependency(id string) {
	j.Dependencies = insertSorted(j.Dependencies, id)
}

// AddDependent добавляет job в обратный индекс.
func (j *Job) AddDependent(id string) {
	j.Dependents = insertSorted(j.Dependents, id)
}

// DependsOn проверяет наличие зависимости.
func (j *Job) DependsOn(id string) bool {
	return slices.Contains(j.Dependencies, id)
}

// HasDependent проверяет наличие job в обратном индексе.
func (j *Job) HasDependent(id string) bool {
	return slices.Contains(j.Dependents, id)
}

// Timeout возвращает ограничение времени выполнения.
func (j *Job) Timeout() time.Duration {
	return time.Duration(j.TimeoutSecs) * time.Second
}

// Duration возвращает продолжительность выполнения.
func (j *Job) Duration() time.Duration {
	if j.StartedAt == nil || j.CompletedAt == nil {
		return 0
	}
	return j.CompletedAt.Sub(*j.StartedAt)
}

// MarkReady переводит job в ready.
func (j *Job) MarkReady() {
	j.Status = JobStatusReady
}

// MarkRunning фиксирует воркера и время старта.
func (j *Job) MarkRunning(workerID string) {
	now := time.Now().UTC()
	j.Status = JobStatusRunning
	j.WorkerID = workerID
	j.StartedAt = &now
}

// MarkCompleted переводит job в completed.
func (j *Job) MarkCompleted(exitCode int) {
	j.finish(JobStatusCompleted, exitCode)
}

// MarkFailed переводит job в failed.
func (j *Job) MarkFailed(exitCode int) {
	j.finish(JobStatusFailed, exitCode)
}

// MarkCancelled переводит job в cancelled с причиной.
func (j *Job) MarkCancelled(reason string) {
	now := time.Now().UTC()
	j.Status = JobStatusCancelled
	j.CompletedAt = &now
	j.Error = reason
}

func (j *Job) finish(status JobStatus, exitCode int) {
	now := time.Now().UTC()
	j.Status = status
	j.CompletedAt = &now
	j.ExitCode = &exitCode
}

// EnvMap разбирает Env как объект. Строки, числа и bool превращаются в строки,
// вложенные объекты и массивы пропускаются.
func (j *Job) EnvMap() (map[string]string, error) {
	if len(j.Env) == 0 || string(j.Env) == "null" {
		return map[string]string{}, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(j.Env, &raw); err != nil {
		return nil, fmt.Errorf("job %s: env is not a JSON object: %w", j.ID, err)
	}

	return StringEnv(raw), nil
}

// EnvList возвращает окружение в виде KEY=VALUE, отсортированное по ключу.
func (j *Job) EnvList() ([]string, error) {
	env, err := j.EnvMap()
	if err != nil {
		return nil, err
	}
	return EnvPairs(env), nil
}

// StringEnv оставляет скалярные значения окружения в виде строк.
func StringEnv(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = formatNumber(val)
		case int:
			out[k] = strconv.Itoa(val)
		case int64:
			out[k] = strconv.FormatInt(val, 10)
		case uint64:
			out[k] = strconv.FormatUint(val, 10)
		case bool:
			out[k] = strconv.FormatBool(val)
		}
	}
	return out
}

// EnvPairs превращает map в отсортированный список KEY=VALUE.
func EnvPairs(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+env[k])
	}
	return pairs
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

func insertSorted(list []string, id string) []string {
	i, found := slices.BinarySearch(list, id)
	if found {
		return list
	}
	return slices.Insert(list, i, id)
}
