package kv

import (
	"context"
	"fmt"
)

// Backend — имя реализации хранилища в конфигурации.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
)

// Options — параметры подключения для Open.
type Options struct {
	Backend  Backend
	RedisURL string
	DSN      string
}

// Open создаёт хранилище выбранного backend'а.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendRedis:
		if opts.RedisURL == "" {
			opts.RedisURL = "redis://localhost:6379/0"
		}
		return NewRedis(ctx, opts.RedisURL)
	case BackendPostgres:
		pool, err := NewPool(ctx, opts.DSN)
		if err != nil {
			return nil, err
		}
		store, err := NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
	}
}
