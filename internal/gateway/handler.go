package gateway

import (
	"log/slog"
	"time"

	"github.com/shaiso/Conveyor/internal/kv"
	"github.com/shaiso/Conveyor/internal/orchestrator"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

// defaultMaxBlock — верхняя граница ожидания BRPOPLPUSH.
const defaultMaxBlock = 5 * time.Minute

// Handler — обработчики команд протокола.
type Handler struct {
	orch     *orchestrator.Orchestrator
	store    kv.Store
	metrics  *telemetry.Metrics
	logger   *slog.Logger
	maxBlock time.Duration
}

// Config — конфигурация для создания Handler.
type Config struct {
	Orchestrator *orchestrator.Orchestrator
	Store        kv.Store
	Metrics      *telemetry.Metrics
	Logger       *slog.Logger

	// MaxBlock ограничивает таймаут BRPOPLPUSH; 0 от клиента тоже
	// превращается в MaxBlock (default: 5m).
	MaxBlock time.Duration
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBlock := cfg.MaxBlock
	if maxBlock <= 0 {
		maxBlock = defaultMaxBlock
	}

	return &Handler{
		orch:     cfg.Orchestrator,
		store:    cfg.Store,
		metrics:  metrics,
		logger:   logger,
		maxBlock: maxBlock,
	}
}
