package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status [job-id]",
		Short: "Show a job's progress, or the daemon status without arguments",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				status, err := client.DaemonStatus(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, status)
				}
				printDaemonStatus(cmd, status)
				return nil
			}

			view, err := client.Status(cmd.Context(), args[0])
			if errors.Is(err, errJobNotFound) {
				return fmt.Errorf("job %s not found", args[0])
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, view)
			}
			printJobView(cmd, view)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw API response")
	return cmd
}

func printJobView(cmd *cobra.Command, view api.JobView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job:      %s\n", view.JobID)
	fmt.Fprintf(out, "Status:   %s\n", view.Status)
	if view.Progress.Stage != "" {
		fmt.Fprintf(out, "Stage:    %s (%.0f%%)", view.Progress.Stage, view.Progress.Percent)
		if view.Progress.Message != "" {
			fmt.Fprintf(out, " - %s", view.Progress.Message)
		}
		fmt.Fprintln(out)
	}
	if view.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:    %s\n", view.ErrorMessage)
	}
	if view.FinishedAt != "" {
		fmt.Fprintf(out, "Finished: %s\n", view.FinishedAt)
	}
	if len(view.Result) > 0 {
		fmt.Fprintf(out, "Result:   %s\n", string(view.Result))
	}
}

func printDaemonStatus(cmd *cobra.Command, status api.DaemonStatus) {
	out := cmd.OutOrStdout()
	state := "stopped"
	if status.Running {
		state = fmt.Sprintf("running (pid %d)", status.PID)
	}
	fmt.Fprintf(out, "Daemon:   %s\n", state)
	fmt.Fprintf(out, "Queue DB: %s\n", status.QueueDBPath)

	if len(status.Workflow.QueueStats) > 0 {
		var parts []string
		for _, key := range []string{"queued", "completed", "failed"} {
			if count := status.Workflow.QueueStats[key]; count > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", count, key))
			}
		}
		if len(parts) > 0 {
			fmt.Fprintf(out, "Jobs:     %s\n", strings.Join(parts, ", "))
		}
	}

	if len(status.Workflow.StageHealth) > 0 {
		rows := make([][]string, 0, len(status.Workflow.StageHealth))
		for _, health := range status.Workflow.StageHealth {
			ready := "ready"
			if !health.Ready {
				ready = "unavailable"
			}
			rows = append(rows, []string{health.Name, ready, health.Detail})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(
			[]string{"Stage", "State", "Detail"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft},
		))
	}
}
