// Conveyor Server — оркестратор распределённого выполнения задач.
//
// Server:
//   - Принимает plans и команды воркеров по протоколу RESP (CONVEYOR_LISTEN)
//   - Хранит job, результаты и реестр воркеров в KV-хранилище
//     (memory, redis или postgres)
//   - По расписанию чистит processing-список (reaper)
//   - Отдаёт admin API, /healthz и /metrics по HTTP
//   - Публикует события job в RabbitMQ, если задан RABBITMQ_URL
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shaiso/Conveyor/internal/api"
	"github.com/shaiso/Conveyor/internal/gateway"
	"github.com/shaiso/Conveyor/internal/kv"
	"github.com/shaiso/Conveyor/internal/mq"
	"github.com/shaiso/Conveyor/internal/orchestrator"
	"github.com/shaiso/Conveyor/internal/resp"
	"github.com/shaiso/Conveyor/internal/scheduler"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting conveyor-server")

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := kv.Open(ctx, cfg.store)
	if err != nil {
		logger.Error("failed to open store", "backend", cfg.store.Backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("store opened", "backend", cfg.store.Backend)

	registry := telemetry.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	// RabbitMQ опционален: без него события просто не публикуются.
	var events orchestrator.EventPublisher
	if cfg.rabbitURL != "" {
		mqConn, err := mq.NewConnection(cfg.rabbitURL, "conveyor-server", logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, events disabled", "error", err)
		} else {
			defer mqConn.Close()
			if err := mq.SetupTopology(ctx, mqConn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}
			events = mq.NewPublisher(mqConn, logger)
			logger.Debug(mq.TopologyInfo())
		}
	}

	orch := orchestrator.New(orchestrator.Config{
		Store:         store,
		FailurePolicy: cfg.failurePolicy,
		Events:        events,
		Metrics:       metrics,
		Logger:        telemetry.WithComponent(logger, "orchestrator"),
	})

	// Reaper по расписанию
	reaper := orchestrator.NewReaper(orch, orchestrator.ReaperConfig{
		StaleAfter: cfg.staleAfter,
		Logger:     telemetry.WithComponent(logger, "reaper"),
	})
	sched := scheduler.New(scheduler.Config{Logger: telemetry.WithComponent(logger, "scheduler")})
	if err := sched.Add("reaper", cfg.reaperSched, func(ctx context.Context) error {
		_, err := reaper.Sweep(ctx)
		return err
	}); err != nil {
		logger.Error("failed to schedule reaper", "error", err)
		os.Exit(1)
	}
	go sched.Run(ctx)

	// RESP
	gw := gateway.NewHandler(gateway.Config{
		Orchestrator: orch,
		Store:        store,
		Metrics:      metrics,
		Logger:       telemetry.WithComponent(logger, "gateway"),
	})
	respServer := resp.NewServer(resp.ServerConfig{
		Addr:       cfg.listen,
		SessionKey: cfg.sessionKey,
		Handler:    gw.Serve(),
		Logger:     logger,
	})
	go func() {
		logger.Info("protocol listening", "addr", cfg.listen)
		if err := respServer.ListenAndServe(); err != nil && !errors.Is(err, resp.ErrServerClosed) {
			logger.Error("protocol server error", "error", err)
			cancel()
		}
	}()

	// HTTP
	admin := api.NewHandler(api.Config{
		Orchestrator: orch,
		Store:        store,
		Gatherer:     registry,
		StaleAfter:   cfg.staleAfter,
		Logger:       telemetry.WithComponent(logger, "api"),
	})
	httpServer := &http.Server{
		Addr:              cfg.httpAddr,
		Handler:           admin.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http listening", "addr", cfg.httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
	if err := respServer.Close(); err != nil {
		logger.Error("protocol shutdown error", "error", err)
	}

	logger.Info("conveyor-server stopped")
}
