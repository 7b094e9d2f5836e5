// Conveyor Worker — выполняет job из очередей сервера.
//
// Worker:
//   - Регистрирует tools и tags, шлёт heartbeat
//   - Забирает job из очередей своих тегов по одному
//   - Выполняет задачи в sandbox (namespace или plain)
//   - Отправляет результат и останавливается по сигналу или DRAIN
//
// Настройки — переменные окружения CONVEYOR_* и YAML-файл
// CONVEYOR_WORKER_CONFIG. /metrics — на WORKER_PORT, если задан.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Conveyor/internal/executor"
	"github.com/shaiso/Conveyor/internal/resp"
	"github.com/shaiso/Conveyor/internal/sandbox"
	"github.com/shaiso/Conveyor/internal/telemetry"
	"github.com/shaiso/Conveyor/internal/worker"
)

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting conveyor-worker")

	cfg, err := worker.LoadConfig(os.Getenv)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sb, err := sandbox.New(ctx, cfg.Sandbox, logger)
	if err != nil {
		logger.Error("failed to prepare sandbox", "sandbox", cfg.Sandbox, "error", err)
		os.Exit(1)
	}
	logger.Info("sandbox ready", "sandbox", sb.Name())

	registry := telemetry.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	w, err := worker.New(cfg, worker.Deps{
		Dial: worker.RespDialer(resp.ClientConfig{
			Addr:       cfg.Addr,
			SessionKey: cfg.SessionKey,
		}),
		Executor: executor.New(executor.Config{
			Sandbox: sb,
			Metrics: metrics,
			Logger:  logger,
		}),
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to create worker", "error", err)
		os.Exit(1)
	}

	// HTTP: /healthz + /metrics
	if port := os.Getenv("WORKER_PORT"); port != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

		srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			logger.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server error", "error", err)
			}
		}()
		defer srv.Close()
	}

	if err := w.Run(ctx); err != nil {
		logger.Error("worker failed", "worker_id", w.ID(), "error", err)
		os.Exit(1)
	}
	logger.Info("conveyor-worker stopped")
}
