package main

import (
	"errors"
	"testing"
	"time"

	"github.com/shaiso/Conveyor/internal/kv"
	"github.com/shaiso/Conveyor/internal/orchestrator"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(envMap(map[string]string{"CONVEYOR_SESSION_KEY": "k"}))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.listen != ":6380" || cfg.httpAddr != ":8080" {
		t.Errorf("unexpected addrs %s %s", cfg.listen, cfg.httpAddr)
	}
	if cfg.store.Backend != kv.BackendMemory {
		t.Errorf("unexpected backend %s", cfg.store.Backend)
	}
	if cfg.failurePolicy != orchestrator.FailureCascadeCancel {
		t.Errorf("unexpected policy %s", cfg.failurePolicy)
	}
	if cfg.staleAfter != 90*time.Second {
		t.Errorf("unexpected stale-after %v", cfg.staleAfter)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := loadConfig(envMap(map[string]string{
		"CONVEYOR_SESSION_KEY":        "k",
		"CONVEYOR_LISTEN":             "127.0.0.1:7000",
		"CONVEYOR_HTTP_PORT":          "9090",
		"CONVEYOR_STORE":              "redis",
		"REDIS_URL":                   "redis://cache:6379/1",
		"CONVEYOR_CASCADE_CANCEL":     "false",
		"CONVEYOR_REAPER_SCHEDULE":    "*/5 * * * *",
		"CONVEYOR_WORKER_STALE_AFTER": "2m",
	}))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.listen != "127.0.0.1:7000" || cfg.httpAddr != ":9090" {
		t.Errorf("unexpected addrs %s %s", cfg.listen, cfg.httpAddr)
	}
	if cfg.store.Backend != kv.BackendRedis || cfg.store.RedisURL != "redis://cache:6379/1" {
		t.Errorf("unexpected store %+v", cfg.store)
	}
	if cfg.failurePolicy != orchestrator.FailureHold {
		t.Errorf("unexpected policy %s", cfg.failurePolicy)
	}
	if cfg.staleAfter != 2*time.Minute {
		t.Errorf("unexpected stale-after %v", cfg.staleAfter)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing key", map[string]string{}},
		{"bad cascade", map[string]string{"CONVEYOR_SESSION_KEY": "k", "CONVEYOR_CASCADE_CANCEL": "maybe"}},
		{"bad schedule", map[string]string{"CONVEYOR_SESSION_KEY": "k", "CONVEYOR_REAPER_SCHEDULE": "every day"}},
		{"bad stale", map[string]string{"CONVEYOR_SESSION_KEY": "k", "CONVEYOR_WORKER_STALE_AFTER": "-1s"}},
		{"bad store", map[string]string{"CONVEYOR_SESSION_KEY": "k", "CONVEYOR_STORE": "etcd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(envMap(tt.env)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfig_UnknownStore(t *testing.T) {
	_, err := loadConfig(envMap(map[string]string{"CONVEYOR_SESSION_KEY": "k", "CONVEYOR_STORE": "etcd"}))
	if !errors.Is(err, kv.ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}
