package api

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shaiso/Conveyor/internal/kv"
	"github.com/shaiso/Conveyor/internal/orchestrator"
)

// defaultStaleAfter — после этого молчания воркер показывается как недоступный.
const defaultStaleAfter = 90 * time.Second

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	orch       *orchestrator.Orchestrator
	store      kv.Store
	gatherer   prometheus.Gatherer
	staleAfter time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// Config — конфигурация для создания Handler.
type Config struct {
	Orchestrator *orchestrator.Orchestrator
	Store        kv.Store

	// Gatherer — источник /metrics (default: prometheus.DefaultGatherer).
	Gatherer prometheus.Gatherer

	// StaleAfter — порог живости воркера (default: 90s).
	StaleAfter time.Duration

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	staleAfter := cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		orch:       cfg.Orchestrator,
		store:      cfg.Store,
		gatherer:   gatherer,
		staleAfter: staleAfter,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}
