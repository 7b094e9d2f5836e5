package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// requestTimeout — верхняя граница обработки одного запроса.
const requestTimeout = 30 * time.Second

// Routes собирает роутер admin API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(Recovery(h.logger))
	r.Use(Logging(h.logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/plans", h.SubmitPlan)
		r.Get("/plans/{id}", h.GetPlan)

		r.Get("/jobs/{id}", h.GetJob)
		r.Get("/jobs/{id}/result", h.GetJobResult)
		r.Post("/jobs/{id}/cancel", h.CancelJob)

		r.Get("/workers", h.ListWorkers)
		r.Get("/workers/{id}", h.GetWorker)
		r.Post("/workers/{id}/shutdown", h.ShutdownWorker)

		r.Get("/queues", h.ListQueues)
	})

	return r
}
