package repo

import "errors"

// Общие ошибки репозиториев.
var (
	// ErrNotFound — запись не найдена в хранилище.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — запись уже существует.
	ErrAlreadyExists = errors.New("already exists")

	// ErrCorrupt — запись не разбирается как JSON.
	ErrCorrupt = errors.New("corrupt record")
)
