package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/api"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var jobID string
	var sourceKey string
	var targetDuration int
	var preferencesPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "submit [source-url]",
		Short: "Submit a video for clip generation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			submission := api.Submission{
				JobID:          jobID,
				SourceKey:      sourceKey,
				TargetDuration: targetDuration,
			}
			if len(args) == 1 {
				submission.SourceURL = strings.TrimSpace(args[0])
			}
			if preferencesPath != "" {
				raw, err := os.ReadFile(preferencesPath)
				if err != nil {
					return fmt.Errorf("read preferences file: %w", err)
				}
				submission.Preferences = json.RawMessage(raw)
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := client.Submit(cmd.Context(), submission)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, resp)
			}
			if resp.Existing {
				fmt.Fprintf(cmd.OutOrStdout(), "Job %s already exists (status %s)\n", resp.JobID, resp.Status)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted job %s\n", resp.JobID)
			return nil
		},
	}

	cmd.Flags().StringVar(&jobID, "id", "", "Caller-supplied job identifier (generated when omitted)")
	cmd.Flags().StringVar(&sourceKey, "upload", "", "Uploaded object key instead of a source URL")
	cmd.Flags().IntVar(&targetDuration, "target-duration", 0, "Preferred clip length in seconds")
	cmd.Flags().StringVar(&preferencesPath, "preferences", "", "JSON file with caption style overrides")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw API response")
	return cmd
}
