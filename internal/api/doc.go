// Package api — административный HTTP API сервера Conveyor (chi).
//
// Структура:
//   - handler.go        — Handler с зависимостями (orchestrator, store, gatherer)
//   - routes.go         — роутер chi и middleware
//   - middleware.go     — logging и recovery
//   - response.go       — JSON-ответы и отображение ошибок оркестратора
//   - dto.go            — ответы API
//   - *_handler.go      — обработчики
//
// Маршруты:
//
//	GET  /healthz
//	GET  /metrics
//	POST /api/v1/plans
//	GET  /api/v1/plans/{id}
//	GET  /api/v1/jobs/{id}
//	GET  /api/v1/jobs/{id}/result
//	POST /api/v1/jobs/{id}/cancel
//	GET  /api/v1/workers
//	GET  /api/v1/workers/{id}
//	POST /api/v1/workers/{id}/shutdown
//	GET  /api/v1/queues
//
// Ответы: {"data": ...} или {"error": {"code": ..., "message": ...}}.
// Протокол воркеров (RESP) живёт отдельно, в пакете gateway.
package api
