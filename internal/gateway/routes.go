package gateway

import (
	"github.com/shaiso/Conveyor/internal/resp"
)

// RegisterRoutes регистрирует все команды в mux.
func (h *Handler) RegisterRoutes(mux *resp.Mux) {
	// Plans
	mux.Handle(resp.CmdPlanSubmit, 1, h.SubmitPlan)
	mux.Handle(resp.CmdPlanGet, 1, h.GetPlan)

	// Jobs
	mux.Handle(resp.CmdJobGet, 1, h.GetJob)
	mux.Handle(resp.CmdJobStart, 2, h.StartJob)
	mux.Handle(resp.CmdJobResult, 6, h.PostJobResult)
	mux.Handle(resp.CmdJobOutput, 1, h.JobOutput)
	mux.Handle(resp.CmdJobCancel, 1, h.CancelJob)

	// Workers
	mux.Handle(resp.CmdWorkerHeartbeat, 1, h.Heartbeat)
	mux.Handle(resp.CmdWorkerTools, -1, h.RegisterTools)
	mux.Handle(resp.CmdWorkerTags, -1, h.RegisterTags)
	mux.Handle(resp.CmdWorkerShutdown, 1, h.RequestShutdown)

	// Queues
	mux.Handle(resp.CmdBRPopLPush, 3, h.BRPopLPush)
	mux.Handle(resp.CmdLRem, 3, h.LRem)
}

// Serve собирает mux с middleware: recovery, метрики, логирование.
func (h *Handler) Serve() resp.HandlerFunc {
	mux := resp.NewMux()
	h.RegisterRoutes(mux)

	return resp.Chain(mux.Serve,
		resp.Recovery(h.logger),
		Metrics(h.metrics),
		resp.Logging(h.logger),
	)
}
