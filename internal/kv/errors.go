package kv

import "errors"

var (
	// ErrNotFound — ключ отсутствует.
	ErrNotFound = errors.New("key not found")

	// ErrTimeout — блокирующая операция не дождалась элемента.
	ErrTimeout = errors.New("blocking operation timed out")

	// ErrUnknownBackend — неизвестное имя backend'а в конфигурации.
	ErrUnknownBackend = errors.New("unknown store backend")
)
