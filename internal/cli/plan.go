package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/Conveyor/internal/engine"
	"github.com/shaiso/Conveyor/internal/executor"
	"github.com/shaiso/Conveyor/internal/resp"
	"github.com/shaiso/Conveyor/internal/sandbox"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

// NewPlanCmd создаёт группу команд для plans.
func NewPlanCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Submit, inspect and run plans",
	}

	cmd.AddCommand(
		newPlanSubmitCmd(sessionFn, outputFn),
		newPlanShowCmd(sessionFn, outputFn),
		newPlanValidateCmd(outputFn),
		newPlanRunCmd(outputFn),
	)

	return cmd
}

func newPlanSubmitCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit -f FILE",
		Short: "Submit a plan to the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			plan, err := LoadPlan(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			return withSession(cmd.Context(), sessionFn, func(c *resp.Client) error {
				planID, err := c.SubmitPlan(cmd.Context(), plan)
				if err != nil {
					return err
				}

				rec, err := c.GetPlan(cmd.Context(), planID)
				if err != nil {
					return err
				}

				out.Success(fmt.Sprintf("Plan submitted: %s", planID))
				rows := make([][]string, len(rec.JobIDs))
				for i, id := range rec.JobIDs {
					rows[i] = []string{strconv.Itoa(i + 1), id}
				}
				out.Print([]string{"TASK", "JOB_ID"}, rows, rec)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Plan file (YAML or JSON, - for stdin)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newPlanShowCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show PLAN_ID",
		Short: "Show a submitted plan and the status of its jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			return withSession(cmd.Context(), sessionFn, func(c *resp.Client) error {
				rec, err := c.GetPlan(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(rec.JobIDs))
				jobs := make([]any, 0, len(rec.JobIDs))
				for _, id := range rec.JobIDs {
					job, err := c.GetJob(cmd.Context(), id)
					if err != nil {
						return err
					}
					jobs = append(jobs, job)
					rows = append(rows, []string{
						strconv.FormatUint(uint64(job.TaskNumber), 10),
						job.ID,
						job.Command,
						string(job.Status),
						exitCodeString(job.ExitCode),
						job.WorkerID,
					})
				}

				out.Print(
					[]string{"TASK", "JOB_ID", "COMMAND", "STATUS", "EXIT", "WORKER"},
					rows,
					map[string]any{"plan": rec, "jobs": jobs},
				)
				return nil
			})
		},
	}
}

func newPlanValidateCmd(outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate -f FILE",
		Short: "Validate a plan file locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			plan, err := LoadPlan(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := engine.ValidatePlan(plan); err != nil {
				return err
			}
			digest, err := engine.PlanDigest(plan)
			if err != nil {
				return err
			}

			out.Success("Plan is valid")
			out.Print(
				[]string{"PLAN_ID", "TASKS", "DIGEST"},
				[][]string{{plan.PlanID, strconv.Itoa(len(plan.Tasks)), digest}},
				map[string]any{"plan_id": plan.PlanID, "tasks": len(plan.Tasks), "digest": digest},
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Plan file (YAML or JSON, - for stdin)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newPlanRunCmd(outputFn func() *Output) *cobra.Command {
	var (
		file       string
		kind       string
		showOutput bool
	)

	cmd := &cobra.Command{
		Use:   "run -f FILE",
		Short: "Run a plan locally, piping task output in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			plan, err := LoadPlan(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := engine.ValidatePlan(plan); err != nil {
				return err
			}

			logger := telemetry.NewLogger(cmd.ErrOrStderr(), telemetry.LogLevel(), "text")
			sb, err := sandbox.New(ctx, sandbox.Kind(kind), logger)
			if err != nil {
				return err
			}

			ex := executor.New(executor.Config{Sandbox: sb, Logger: logger})
			result, err := ex.ExecutePlan(ctx, "local-"+uuid.NewString(), plan)
			if err != nil {
				return err
			}

			rows := make([][]string, len(result.TaskResults))
			for i, tr := range result.TaskResults {
				rows[i] = []string{
					strconv.FormatUint(uint64(tr.TaskNumber), 10),
					strconv.Itoa(tr.ExitCode),
					strconv.FormatBool(tr.Success),
					strconv.FormatInt(tr.DurationMs, 10) + "ms",
				}
			}
			out.Print([]string{"TASK", "EXIT", "SUCCESS", "DURATION"}, rows, result)

			if showOutput && !out.IsJSON() {
				out.Raw(result.CombinedStdout())
			}

			if !result.Success {
				return fmt.Errorf("plan %s failed after %d task(s)", plan.PlanID, len(result.TaskResults))
			}
			out.Success(fmt.Sprintf("Sandbox: %s", sb.Name()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Plan file (YAML or JSON, - for stdin)")
	cmd.Flags().StringVar(&kind, "sandbox", string(sandbox.KindAuto), "Sandbox variant: auto, namespace, plain")
	cmd.Flags().BoolVar(&showOutput, "output", false, "Print the combined stdout of all tasks")
	cmd.MarkFlagRequired("file")

	return cmd
}

func exitCodeString(code *int) string {
	if code == nil {
		return "-"
	}
	return strconv.Itoa(*code)
}
