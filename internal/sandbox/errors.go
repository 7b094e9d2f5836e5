package sandbox

import "errors"

var (
	// ErrSpawn — процесс не удалось запустить (нет бинарника, нет прав).
	ErrSpawn = errors.New("spawn failed")

	// ErrEmptyCommand — не задана команда.
	ErrEmptyCommand = errors.New("empty command")

	// ErrUnknownKind — неизвестный вариант sandbox.
	ErrUnknownKind = errors.New("unknown sandbox kind")
)
