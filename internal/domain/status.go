package domain

// JobStatus — статус job.
//
// Жизненный цикл:
//
//	pending → ready → running → completed
//	                          ↘ failed
//	(из любого нефинального) → cancelled
type JobStatus string

const (
	// JobStatusPending — job создан, ждёт завершения зависимостей.
	JobStatusPending JobStatus = "pending"

	// JobStatusReady — все зависимости выполнены, id лежит в очереди.
	JobStatusReady JobStatus = "ready"

	// JobStatusRunning — job взят воркером.
	JobStatusRunning JobStatus = "running"

	// JobStatusCompleted — job завершился успешно.
	JobStatusCompleted JobStatus = "completed"

	// JobStatusFailed — job завершился с ошибкой.
	JobStatusFailed JobStatus = "failed"

	// JobStatusCancelled — job отменён до завершения.
	JobStatusCancelled JobStatus = "cancelled"
)

// transitions — допустимые переходы между статусами.
var transitions = map[JobStatus][]JobStatus{
	JobStatusPending: {JobStatusReady, JobStatusCancelled},
	JobStatusReady:   {JobStatusRunning, JobStatusCompleted, JobStatusFailed, JobStatusCancelled},
	JobStatusRunning: {JobStatusCompleted, JobStatusFailed, JobStatusCancelled},
}

// IsTerminal возвращает true, если статус финальный.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo проверяет, допустим ли переход в next.
// Из финального статуса переходов нет.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid возвращает true для известных статусов.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusReady, JobStatusRunning,
		JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление JobStatus.
func (s JobStatus) String() string {
	return string(s)
}
