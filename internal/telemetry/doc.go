// Package telemetry обеспечивает наблюдаемость Conveyor.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики
//
// Сервер и воркер используют единый формат логирования;
// сервер экспортирует метрики на /metrics.
package telemetry
