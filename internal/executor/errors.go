package executor

import "errors"

var (
	// ErrEmptyCommand — у задачи нет команды.
	ErrEmptyCommand = errors.New("command cannot be empty")

	// ErrInvalidJob — job нельзя выполнить (битое окружение, шаблон аргументов).
	ErrInvalidJob = errors.New("invalid job")
)
