package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/api"
	"clipforge/internal/queue"
	"clipforge/internal/textutil"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and maintain the job queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newQueueListCommand(ctx))
	cmd.AddCommand(newQueueHealthCommand(ctx))
	cmd.AddCommand(newQueueClearCommand(ctx))
	cmd.AddCommand(newQueueResetCommand(ctx))
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFilters []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, optionally filtered by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []queue.Status
			for _, value := range statusFilters {
				status, ok := queue.ParseStatus(value)
				if !ok {
					return fmt.Errorf("unknown status %q", value)
				}
				statuses = append(statuses, status)
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			jobs, err := client.List(cmd.Context(), statuses)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, api.JobListResponse{Jobs: jobs})
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}

			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				progress := ""
				if job.Progress.Stage != "" {
					progress = fmt.Sprintf("%s %.0f%%", job.Progress.Stage, job.Progress.Percent)
				}
				detail := job.ErrorMessage
				if detail == "" {
					detail = job.Progress.Message
				}
				rows = append(rows, []string{
					job.JobID,
					job.Status,
					progress,
					textutil.Truncate(detail, 60),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Job", "Status", "Progress", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statusFilters, "status", nil, "Only show jobs in these statuses")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw API response")
	return cmd
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show aggregate queue counts from the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLocalStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			health, err := store.Health(cmd.Context())
			if err != nil {
				return err
			}
			rows := [][]string{
				{"total", fmt.Sprint(health.Total)},
				{"queued", fmt.Sprint(health.Queued)},
				{"processing", fmt.Sprint(health.Processing)},
				{"waiting", fmt.Sprint(health.Waiting)},
				{"completed", fmt.Sprint(health.Completed)},
				{"failed", fmt.Sprint(health.Failed)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"State", "Jobs"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var completedOnly bool
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove jobs from the local queue database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if completedOnly && failedOnly {
				return fmt.Errorf("--completed and --failed are mutually exclusive")
			}

			store, err := openLocalStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var removed int64
			switch {
			case completedOnly:
				removed, err = store.ClearCompleted(cmd.Context())
			case failedOnly:
				removed, err = store.ClearFailed(cmd.Context())
			default:
				removed, err = store.Clear(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Remove only completed jobs")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Remove only failed jobs")
	return cmd
}

func newQueueResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-stuck",
		Short: "Return jobs stuck mid-stage to their stage start",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLocalStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			reset, err := store.ResetStuckProcessing(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d job(s)\n", reset)
			return nil
		},
	}
}

func openLocalStore(ctx *commandContext) (*queue.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return queue.Open(cfg)
}
