package mediatool

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/services"
)

// Runner executes the external media binary for probing, cutting, and caption
// burn-in. Every call shells out; the binary is the unit of trust for codec
// and container handling.
type Runner struct {
	binary      string
	probeBinary string
	timeout     time.Duration
	logger      *slog.Logger
}

// New builds a runner from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	binary := strings.TrimSpace(cfg.MediaTool.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	probe := strings.TrimSpace(cfg.MediaTool.ProbeBinary)
	if probe == "" {
		probe = "ffprobe"
	}
	timeout := time.Duration(cfg.MediaTool.TimeoutSeconds) * time.Second
	return &Runner{
		binary:      binary,
		probeBinary: probe,
		timeout:     timeout,
		logger:      logging.NewComponentLogger(logger, "mediatool"),
	}
}

// Available reports whether the media binary resolves on PATH.
func (r *Runner) Available() (string, error) {
	path, err := exec.LookPath(r.binary)
	if err != nil {
		return "", fmt.Errorf("media binary %q not found", r.binary)
	}
	return path, nil
}

// run executes the media binary with the given arguments and returns combined
// output. The configured timeout bounds the call when positive.
func (r *Runner) run(ctx context.Context, operation string, args ...string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	started := time.Now()
	cmd := exec.CommandContext(ctx, r.binary, args...)
	output, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(output))
	if err != nil {
		if ctx.Err() != nil {
			return text, services.Wrap(services.ErrTimeout, "mediatool", operation,
				fmt.Sprintf("media binary exceeded %s", r.timeout), ctx.Err())
		}
		detail := text
		if len(detail) > 400 {
			detail = detail[len(detail)-400:]
		}
		return text, services.Wrap(services.ErrExternalTool, "mediatool", operation, detail, err)
	}

	r.logger.Debug("media binary finished",
		logging.String("operation", operation),
		logging.Duration("elapsed", time.Since(started)))
	return text, nil
}
