package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/jobdata"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/services/mediatool"
	"clipforge/internal/stage"
)

// MediaFetcher is the subset of the media tool the ingest stage needs.
type MediaFetcher interface {
	Fetch(ctx context.Context, source, dest string) error
	Inspect(ctx context.Context, path string) (mediatool.Probe, error)
	ExtractAudio(ctx context.Context, source, dest string) error
	Available() (string, error)
}

// Ingester downloads the source video into the work area, probes it, and
// extracts the audio track for transcription.
type Ingester struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	media  MediaFetcher
}

// NewIngester constructs the ingest stage handler using default dependencies.
func NewIngester(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Ingester {
	return NewIngesterWithDependencies(cfg, store, logger, mediatool.New(cfg, logger))
}

// NewIngesterWithDependencies allows injecting collaborators (used in tests).
func NewIngesterWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, media MediaFetcher) *Ingester {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = logging.NewComponentLogger(stageLogger, "ingest")
	}
	return &Ingester{store: store, cfg: cfg, logger: stageLogger, media: media}
}

func (i *Ingester) Prepare(ctx context.Context, job *queue.Job) error {
	job.SetProgress("Ingest", "Fetching source video", 0)
	job.ErrorMessage = ""
	return nil
}

func (i *Ingester) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, i.logger)

	source, err := i.resolveSource(job)
	if err != nil {
		return err
	}
	logger.Info("ingesting source", logging.String("source", source))

	workDir := filepath.Join(i.cfg.Paths.WorkDir, job.JobID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "ingest", "create work dir", workDir, err)
	}

	localPath := filepath.Join(workDir, "source"+sourceExtension(source))
	if err := i.media.Fetch(ctx, source, localPath); err != nil {
		return err
	}
	job.SetProgress("Ingest", "Probing source video", 40)

	probe, err := i.media.Inspect(ctx, localPath)
	if err != nil {
		return err
	}
	if probe.DurationSeconds <= 0 {
		return services.Wrap(services.ErrValidation, "ingest", "probe source",
			"source has no measurable duration", nil)
	}
	if !probe.HasAudio {
		return services.Wrap(services.ErrValidation, "ingest", "probe source",
			"source has no audio track to transcribe", nil)
	}

	job.SetProgress("Ingest", "Extracting audio", 70)
	audioPath := filepath.Join(workDir, "audio.wav")
	if err := i.media.ExtractAudio(ctx, localPath, audioPath); err != nil {
		return err
	}

	media := &jobdata.MediaInfo{
		Path:            localPath,
		DurationSeconds: probe.DurationSeconds,
		Width:           probe.Width,
		Height:          probe.Height,
		AudioPath:       audioPath,
	}
	if err := stage.SaveEnvelope(job, jobdata.StageIngest, jobdata.Envelope{Media: media}); err != nil {
		return err
	}

	job.SetProgress("Ingest", "Source ready", 100)
	logger.Info("ingest complete",
		logging.String("path", localPath),
		logging.Float64("duration_seconds", probe.DurationSeconds))
	return nil
}

func (i *Ingester) HealthCheck(ctx context.Context) stage.Health {
	if _, err := i.media.Available(); err != nil {
		return stage.Unhealthy("ingest", err.Error())
	}
	return stage.Healthy("ingest")
}

// resolveSource picks the remote URL or the uploaded object, validating that
// exactly one is present.
func (i *Ingester) resolveSource(job *queue.Job) (string, error) {
	url := strings.TrimSpace(job.SourceURL)
	key := strings.TrimSpace(job.SourceKey)
	switch {
	case url != "" && key != "":
		return "", services.Wrap(services.ErrValidation, "ingest", "resolve source",
			"job has both a source URL and an uploaded object key", nil)
	case url != "":
		return url, nil
	case key != "":
		path := filepath.Join(i.cfg.Paths.WorkDir, "uploads", filepath.Clean(key))
		if _, err := os.Stat(path); err != nil {
			return "", services.Wrap(services.ErrValidation, "ingest", "resolve source",
				fmt.Sprintf("uploaded object %q not found", key), err)
		}
		return path, nil
	default:
		return "", services.Wrap(services.ErrValidation, "ingest", "resolve source",
			"job has neither a source URL nor an uploaded object key", nil)
	}
}

func sourceExtension(source string) string {
	ext := strings.ToLower(filepath.Ext(source))
	switch ext {
	case ".mp4", ".mov", ".mkv", ".webm", ".m4v":
		return ext
	default:
		return ".mp4"
	}
}
