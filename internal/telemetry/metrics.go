package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — Prometheus метрики Conveyor.
// Сервер и воркер используют один набор, каждый заполняет свою часть.
type Metrics struct {
	// Orchestrator
	PlansSubmitted   prometheus.Counter
	JobsSubmitted    prometheus.Counter
	JobsEnqueued     *prometheus.CounterVec // queue
	JobTransitions   *prometheus.CounterVec // status
	DependentsChecks *prometheus.CounterVec // outcome: enqueued, waiting, skipped
	ReaperActions    *prometheus.CounterVec // action: removed, failed, requeued

	// Протокол
	Commands        *prometheus.CounterVec   // command, outcome
	CommandDuration *prometheus.HistogramVec // command
	Heartbeats      prometheus.Counter

	// Worker / executor
	TaskExecutions *prometheus.CounterVec // outcome: success, failure, timeout, sandbox_error
	TaskDuration   prometheus.Histogram
	WorkerBusy     prometheus.Gauge
}

// NewMetrics создаёт и регистрирует метрики в registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		PlansSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "conveyor_plans_submitted_total",
			Help: "Total number of submitted plans",
		}),
		JobsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "conveyor_jobs_submitted_total",
			Help: "Total number of submitted jobs",
		}),
		JobsEnqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conveyor_jobs_enqueued_total",
			Help: "Jobs pushed onto a ready queue",
		}, []string{"queue"}),
		JobTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conveyor_job_transitions_total",
			Help: "Job status transitions by target status",
		}, []string{"status"}),
		DependentsChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conveyor_dependent_checks_total",
			Help: "Readiness evaluations of dependent jobs",
		}, []string{"outcome"}),
		ReaperActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conveyor_reaper_actions_total",
			Help: "Processing-list entries handled by the reaper",
		}, []string{"action"}),
		Commands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conveyor_commands_total",
			Help: "Protocol commands served",
		}, []string{"command", "outcome"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "conveyor_command_duration_seconds",
			Help:    "Protocol command latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		Heartbeats: factory.NewCounter(prometheus.CounterOpts{
			Name: "conveyor_worker_heartbeats_total",
			Help: "Worker heartbeats received or sent",
		}),
		TaskExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conveyor_task_executions_total",
			Help: "Task executions by outcome",
		}, []string{"outcome"}),
		TaskDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "conveyor_task_duration_seconds",
			Help:    "Task execution time",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300, 1800},
		}),
		WorkerBusy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "conveyor_worker_busy",
			Help: "1 while the worker has a job in flight",
		}),
	}
}

// NewRegistry создаёт registry с метриками Go runtime и процесса.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// NopMetrics возвращает метрики на отдельном registry, который никто не читает.
func NopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
