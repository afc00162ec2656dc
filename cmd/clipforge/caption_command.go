package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clipforge/internal/captions"
	"clipforge/internal/jobdata"
)

func newCaptionCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caption",
		Short: "Work with caption scripts without running the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newCaptionCompileCommand(ctx))
	return cmd
}

func newCaptionCompileCommand(ctx *commandContext) *cobra.Command {
	var offset float64
	var preferencesPath string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "compile <transcript.json>",
		Short: "Compile transcript segments into a styled caption script",
		Long: "Reads a JSON array of transcript segments ({start, end, text}) and writes " +
			"the compiled caption script. Styling comes from the configured caption " +
			"defaults, optionally overridden by a preferences JSON file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}
			var segments []jobdata.Segment
			if err := json.Unmarshal(raw, &segments); err != nil {
				return fmt.Errorf("parse transcript: %w", err)
			}

			prefs := cfg.CaptionPreferences()
			if preferencesPath != "" {
				overrides, err := os.ReadFile(preferencesPath)
				if err != nil {
					return fmt.Errorf("read preferences: %w", err)
				}
				if err := json.Unmarshal(overrides, &prefs); err != nil {
					return fmt.Errorf("parse preferences: %w", err)
				}
			}

			script, err := captions.Compile(segments, offset, prefs)
			if err != nil {
				return err
			}
			rendered := script.Render()

			if outputPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), rendered)
				return nil
			}
			if err := os.WriteFile(outputPath, []byte(rendered), 0o644); err != nil {
				return fmt.Errorf("write caption script: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().Float64Var(&offset, "offset", 0, "Clip start offset in seconds used to re-base timings")
	cmd.Flags().StringVar(&preferencesPath, "preferences", "", "JSON file with caption style overrides")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (stdout when omitted)")
	return cmd
}
