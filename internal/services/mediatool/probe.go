package mediatool

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"clipforge/internal/services"
)

// Probe is the parsed result of a container inspection.
type Probe struct {
	DurationSeconds float64
	Width           int
	Height          int
	HasAudio        bool
	FormatName      string
}

type probePayload struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type probeFormat struct {
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect runs the probe binary against path and decodes its JSON output.
func (r *Runner) Inspect(ctx context.Context, path string) (Probe, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Probe{}, services.Wrap(services.ErrValidation, "mediatool", "probe", "empty media path", nil)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.probeBinary,
		"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Probe{}, services.Wrap(services.ErrExternalTool, "mediatool", "probe",
			strings.TrimSpace(string(output)), err)
	}

	var payload probePayload
	if err := json.Unmarshal(output, &payload); err != nil {
		return Probe{}, services.Wrap(services.ErrExternalTool, "mediatool", "probe", "unparseable probe output", err)
	}

	probe := Probe{FormatName: payload.Format.FormatName}
	if payload.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(payload.Format.Duration, 64)
		if err != nil {
			return Probe{}, services.Wrap(services.ErrExternalTool, "mediatool", "probe",
				fmt.Sprintf("invalid duration %q", payload.Format.Duration), err)
		}
		probe.DurationSeconds = seconds
	}
	for _, stream := range payload.Streams {
		switch strings.ToLower(stream.CodecType) {
		case "video":
			if probe.Width == 0 {
				probe.Width = stream.Width
				probe.Height = stream.Height
			}
		case "audio":
			probe.HasAudio = true
		}
	}
	return probe, nil
}

// formatSeconds renders a seconds offset for the media binary's -ss/-to flags.
func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
