package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/Conveyor/internal/resp"
)

// NewJobCmd создаёт группу команд для jobs.
func NewJobCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Inspect and cancel jobs",
	}

	cmd.AddCommand(
		newJobShowCmd(sessionFn, outputFn),
		newJobOutputCmd(sessionFn, outputFn),
		newJobCancelCmd(sessionFn, outputFn),
	)

	return cmd
}

func newJobShowCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show JOB_ID",
		Short: "Show job metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			return withSession(cmd.Context(), sessionFn, func(c *resp.Client) error {
				job, err := c.GetJob(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out.Print(
					[]string{"JOB_ID", "PLAN_ID", "TASK", "COMMAND", "STATUS", "EXIT", "WORKER", "ERROR"},
					[][]string{{
						job.ID,
						job.PlanID,
						fmt.Sprint(job.TaskNumber),
						job.Command,
						string(job.Status),
						exitCodeString(job.ExitCode),
						job.WorkerID,
						job.Error,
					}},
					job,
				)
				return nil
			})
		},
	}
}

func newJobOutputCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "output JOB_ID",
		Short: "Print the captured stdout of a finished job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			return withSession(cmd.Context(), sessionFn, func(c *resp.Client) error {
				stdout, ok, err := c.JobOutput(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("job %s has no recorded output yet", args[0])
				}

				if out.IsJSON() {
					out.JSON(map[string]string{"job_id": args[0], "stdout": stdout})
					return nil
				}
				out.Raw(stdout)
				return nil
			})
		},
	}
}

func newJobCancelCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel JOB_ID",
		Short: "Cancel a job and everything that depends on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			return withSession(cmd.Context(), sessionFn, func(c *resp.Client) error {
				if err := c.CancelJob(cmd.Context(), args[0]); err != nil {
					return err
				}
				out.Success(fmt.Sprintf("Job cancelled: %s", args[0]))
				return nil
			})
		},
	}
}
