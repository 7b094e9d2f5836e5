package worker

import "errors"

// Ошибки воркера.
var (
	// ErrInvalidConfig — настройки воркера некорректны.
	ErrInvalidConfig = errors.New("invalid worker config")

	// ErrHeartbeat — heartbeat не прошёл; цикл воркера завершается.
	ErrHeartbeat = errors.New("heartbeat failed")

	// ErrFetch — не удалось получить job из очереди.
	ErrFetch = errors.New("fetch failed")

	// ErrInvalidJob — полученный job нельзя выполнять.
	ErrInvalidJob = errors.New("invalid job")

	// ErrExecutionPanic — паника внутри единицы выполнения.
	ErrExecutionPanic = errors.New("execution panicked")
)
