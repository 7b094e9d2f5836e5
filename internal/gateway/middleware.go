package gateway

import (
	"context"
	"time"

	"github.com/shaiso/Conveyor/internal/resp"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

// Metrics считает команды по исходу и измеряет их длительность.
// Ожидание BRPOPLPUSH в гистограмму не попадает.
func Metrics(m *telemetry.Metrics) resp.Middleware {
	return func(next resp.HandlerFunc) resp.HandlerFunc {
		return func(ctx context.Context, req *resp.Request) resp.Value {
			start := time.Now()
			reply := next(ctx, req)

			outcome := "ok"
			if reply.Kind == resp.KindError {
				outcome = "error"
				if err, ok := reply.Err().(*resp.Error); ok {
					outcome = err.Code()
				}
			}
			command := req.Command
			if outcome == "UNKNOWN" {
				command = "unknown"
			}
			m.Commands.WithLabelValues(command, outcome).Inc()

			if command != resp.CmdBRPopLPush {
				m.CommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
			}
			return reply
		}
	}
}
