package engine

import "errors"

// Ошибки валидации Plan.
var (
	// ErrEmptyPlan — plan не содержит задач.
	ErrEmptyPlan = errors.New("plan has no tasks")

	// ErrInvalidTaskNumber — номер задачи меньше 1.
	ErrInvalidTaskNumber = errors.New("task number must be >= 1")

	// ErrDuplicateTask — несколько задач с одинаковым номером.
	ErrDuplicateTask = errors.New("duplicate task number")

	// ErrEmptyCommand — задача без команды.
	ErrEmptyCommand = errors.New("command is empty")

	// ErrMissingDependency — ссылка на несуществующую задачу или job.
	ErrMissingDependency = errors.New("depends on unknown node")

	// ErrSelfDependency — узел зависит от самого себя.
	ErrSelfDependency = errors.New("node depends on itself")

	// ErrCyclicDependency — обнаружен цикл в зависимостях.
	ErrCyclicDependency = errors.New("cyclic dependency detected")
)

// Ошибки пакета Job.
var (
	// ErrEmptyJobID — job без идентификатора.
	ErrEmptyJobID = errors.New("job has empty ID")

	// ErrDuplicateJobID — несколько job с одинаковым ID.
	ErrDuplicateJobID = errors.New("duplicate job ID")

	// ErrAsymmetricEdge — dependencies и dependents не согласованы.
	ErrAsymmetricEdge = errors.New("dependency edge is not mirrored in dependents")
)

// Ошибки рендеринга аргументов.
var (
	// ErrTemplateParse — ошибка парсинга шаблона.
	ErrTemplateParse = errors.New("template parse failed")

	// ErrTemplateRender — ошибка рендеринга шаблона.
	ErrTemplateRender = errors.New("template render failed")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	Node    string // "task 2" или "job <id>"
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Node != "" {
		return e.Node + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(node, field, message string, err error) *ValidationError {
	return &ValidationError{
		Node:    node,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
