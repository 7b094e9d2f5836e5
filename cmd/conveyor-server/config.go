package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shaiso/Conveyor/internal/kv"
	"github.com/shaiso/Conveyor/internal/orchestrator"
	"github.com/shaiso/Conveyor/internal/scheduler"
)

// config — настройки сервера из окружения.
type config struct {
	listen        string
	httpAddr      string
	sessionKey    string
	store         kv.Options
	rabbitURL     string
	failurePolicy orchestrator.FailurePolicy
	reaperSched   string
	staleAfter    time.Duration
}

func loadConfig(getenv func(string) string) (config, error) {
	cfg := config{
		listen:        ":6380",
		httpAddr:      ":8080",
		sessionKey:    getenv("CONVEYOR_SESSION_KEY"),
		rabbitURL:     getenv("RABBITMQ_URL"),
		failurePolicy: orchestrator.FailureCascadeCancel,
		reaperSched:   "@every 30s",
		staleAfter:    90 * time.Second,
		store: kv.Options{
			Backend:  kv.BackendMemory,
			RedisURL: getenv("REDIS_URL"),
			DSN:      getenv("DB_URL"),
		},
	}

	if v := getenv("CONVEYOR_LISTEN"); v != "" {
		cfg.listen = v
	}
	if v := getenv("CONVEYOR_HTTP_PORT"); v != "" {
		cfg.httpAddr = ":" + v
	}
	if v := getenv("CONVEYOR_STORE"); v != "" {
		cfg.store.Backend = kv.Backend(v)
	}
	if v := getenv("CONVEYOR_CASCADE_CANCEL"); v != "" {
		cascade, err := strconv.ParseBool(v)
		if err != nil {
			return config{}, fmt.Errorf("CONVEYOR_CASCADE_CANCEL: %w", err)
		}
		if !cascade {
			cfg.failurePolicy = orchestrator.FailureHold
		}
	}
	if v := getenv("CONVEYOR_REAPER_SCHEDULE"); v != "" {
		cfg.reaperSched = v
	}
	if v := getenv("CONVEYOR_WORKER_STALE_AFTER"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return config{}, fmt.Errorf("CONVEYOR_WORKER_STALE_AFTER: %w", err)
		}
		cfg.staleAfter = d
	}

	if cfg.sessionKey == "" {
		return config{}, errors.New("CONVEYOR_SESSION_KEY is required")
	}
	if cfg.staleAfter <= 0 {
		return config{}, errors.New("CONVEYOR_WORKER_STALE_AFTER must be positive")
	}
	if err := scheduler.ValidateCronExpr(cfg.reaperSched); err != nil {
		return config{}, fmt.Errorf("CONVEYOR_REAPER_SCHEDULE: %w", err)
	}
	switch cfg.store.Backend {
	case kv.BackendMemory, kv.BackendRedis, kv.BackendPostgres:
	default:
		return config{}, fmt.Errorf("%w: %s", kv.ErrUnknownBackend, cfg.store.Backend)
	}
	return cfg, nil
}
