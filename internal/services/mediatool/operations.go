package mediatool

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"clipforge/internal/services"
)

// Fetch copies a remote source into a local file via the media binary's
// stream copy. Works for HTTP(S) URLs and local paths alike.
func (r *Runner) Fetch(ctx context.Context, source, dest string) error {
	_, err := r.run(ctx, "fetch",
		"-y", "-v", "error", "-i", source, "-c", "copy", dest)
	return err
}

// ExtractAudio writes the source's audio track as 16 kHz mono WAV, the input
// format the transcription provider expects.
func (r *Runner) ExtractAudio(ctx context.Context, source, dest string) error {
	_, err := r.run(ctx, "extract audio",
		"-y", "-v", "error", "-i", source,
		"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", dest)
	return err
}

// DetectSceneChanges returns the timestamps (seconds) where the media
// binary's scene filter scores a frame change above threshold.
func (r *Runner) DetectSceneChanges(ctx context.Context, source string, threshold float64) ([]float64, error) {
	filter := fmt.Sprintf("select='gt(scene,%s)',metadata=print", formatSeconds(threshold))
	output, err := r.run(ctx, "detect scenes",
		"-v", "info", "-i", source,
		"-filter:v", filter, "-f", "null", "-")
	if err != nil {
		return nil, err
	}
	return parseSceneTimes(output), nil
}

// parseSceneTimes pulls pts_time values out of the metadata filter's log
// lines. Malformed lines are skipped.
func parseSceneTimes(output string) []float64 {
	var times []float64
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, "pts_time:")
		if idx < 0 {
			continue
		}
		value := strings.TrimSpace(line[idx+len("pts_time:"):])
		if cut := strings.IndexAny(value, " \t"); cut >= 0 {
			value = value[:cut]
		}
		seconds, err := strconv.ParseFloat(value, 64)
		if err != nil {
			continue
		}
		times = append(times, seconds)
	}
	return times
}

// CutVertical extracts [start, end) from the source and reframes it to
// 1080x1920 by center-cropping and scaling.
func (r *Runner) CutVertical(ctx context.Context, source string, start, end float64, dest string) error {
	if end <= start {
		return services.Wrap(services.ErrValidation, "mediatool", "cut clip",
			fmt.Sprintf("invalid clip range %s-%s", formatSeconds(start), formatSeconds(end)), nil)
	}
	_, err := r.run(ctx, "cut clip",
		"-y", "-v", "error",
		"-ss", formatSeconds(start), "-to", formatSeconds(end),
		"-i", source,
		"-vf", "crop=ih*9/16:ih,scale=1080:1920",
		"-c:a", "aac", dest)
	return err
}

// BurnCaptions renders a caption script into the video frames.
func (r *Runner) BurnCaptions(ctx context.Context, source, captionPath, dest string) error {
	_, err := r.run(ctx, "burn captions",
		"-y", "-v", "error", "-i", source,
		"-vf", "ass="+escapeFilterPath(captionPath),
		"-c:a", "copy", dest)
	return err
}

// escapeFilterPath quotes characters the filter graph parser treats
// specially.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(`\`, `\\`, ":", `\:`, "'", `\'`)
	return replacer.Replace(path)
}
