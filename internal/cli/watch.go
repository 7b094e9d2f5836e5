package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/mq"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

// NewWatchCmd создаёт команду, печатающую события job из RabbitMQ.
func NewWatchCmd(amqpURLFn func() string, outputFn func() *Output) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream job lifecycle events",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			bindings, err := watchBindings(statuses)
			if err != nil {
				return err
			}

			logger := telemetry.NewLogger(cmd.ErrOrStderr(), telemetry.LogLevel(), "text")
			conn, err := mq.NewConnection(amqpURLFn(), "conveyor-watch", logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			consumer := mq.NewConsumer(conn, logger, mq.ConsumerConfig{
				Bindings: bindings,
				Handler: func(_ context.Context, d *mq.Delivery) error {
					ev, err := mq.ParsePayload[mq.JobEvent](&d.Message)
					if err != nil {
						return err
					}
					printEvent(out, d.Message.Timestamp, ev)
					return nil
				},
			})

			err = consumer.Start(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only these statuses (ready, running, completed, failed, cancelled)")

	return cmd
}

// watchBindings строит привязки по фильтру статусов.
func watchBindings(statuses []string) ([]mq.RoutingKey, error) {
	if len(statuses) == 0 {
		return []mq.RoutingKey{mq.BindAllJobs}, nil
	}

	keys := make([]mq.RoutingKey, 0, len(statuses))
	for _, s := range statuses {
		status := domain.JobStatus(strings.ToLower(strings.TrimSpace(s)))
		if !status.Valid() {
			return nil, fmt.Errorf("unknown status %q", s)
		}
		keys = append(keys, mq.JobRoutingKey(status))
	}
	return keys, nil
}

func printEvent(out *Output, ts time.Time, ev mq.JobEvent) {
	if out.IsJSON() {
		out.JSON(ev)
		return
	}

	line := fmt.Sprintf("%s  %-9s  job=%s plan=%s task=%d",
		ts.Format(time.RFC3339), ev.Status, ev.JobID, ev.PlanID, ev.TaskNumber)
	if ev.WorkerID != "" {
		line += " worker=" + ev.WorkerID
	}
	if ev.ExitCode != nil {
		line += fmt.Sprintf(" exit=%d", *ev.ExitCode)
	}
	if ev.Error != "" {
		line += fmt.Sprintf(" error=%q", ev.Error)
	}
	out.Raw(line + "\n")
}
