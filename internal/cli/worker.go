package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/Conveyor/internal/resp"
)

// NewWorkerCmd создаёт группу команд для воркеров.
// Чтение идёт через admin API, shutdown — через протокол воркеров.
func NewWorkerCmd(clientFn func() *Client, sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Inspect and drain workers",
	}

	cmd.AddCommand(
		newWorkerListCmd(clientFn, outputFn),
		newWorkerShutdownCmd(sessionFn, outputFn),
	)

	return cmd
}

func newWorkerListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			workers, err := client.ListWorkers(cmd.Context())
			if err != nil {
				return err
			}

			headers := []string{"ID", "TAGS", "TOOLS", "ALIVE", "DRAINING", "LAST_HEARTBEAT"}
			rows := make([][]string, len(workers))
			for i, w := range workers {
				rows[i] = []string{
					w.ID,
					strings.Join(w.Tags, ","),
					strings.Join(w.Tools, ","),
					strconv.FormatBool(w.Alive),
					strconv.FormatBool(w.Draining),
					w.LastHeartbeat,
				}
			}

			out.Print(headers, rows, workers)
			return nil
		},
	}
}

func newWorkerShutdownCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown WORKER_ID",
		Short: "Ask a worker to finish its current job and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			return withSession(cmd.Context(), sessionFn, func(c *resp.Client) error {
				if err := c.RequestShutdown(cmd.Context(), args[0]); err != nil {
					return err
				}
				out.Success(fmt.Sprintf("Shutdown requested: %s (takes effect on next heartbeat)", args[0]))
				return nil
			})
		},
	}
}

// NewQueueCmd создаёт группу команд для очередей.
func NewQueueCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect queues",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show queue lengths",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			queues, err := client.ListQueues(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, len(queues))
			for i, q := range queues {
				rows[i] = []string{q.Name, strconv.Itoa(q.Length)}
			}
			out.Print([]string{"QUEUE", "LENGTH"}, rows, queues)
			return nil
		},
	})

	return cmd
}
