package transcribe

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/jobdata"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/services/transcriber"
	"clipforge/internal/stage"
)

// Client is the subset of the transcription provider this stage needs.
type Client interface {
	Transcribe(ctx context.Context, audioPath string) ([]jobdata.Segment, error)
}

// Transcriber sends the ingested audio to the speech-to-text provider and
// records the timed transcript on the job.
type Transcriber struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	client Client
}

// NewTranscriber constructs the transcribe stage handler using default
// dependencies.
func NewTranscriber(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Transcriber, error) {
	client, err := transcriber.New(transcriber.Config{
		BaseURL:  cfg.Transcriber.BaseURL,
		APIKey:   cfg.Transcriber.APIKey,
		Model:    cfg.Transcriber.Model,
		Language: cfg.Transcriber.Language,
	})
	if err != nil {
		return nil, err
	}
	return NewTranscriberWithDependencies(cfg, store, logger, client), nil
}

// NewTranscriberWithDependencies allows injecting collaborators (used in tests).
func NewTranscriberWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client Client) *Transcriber {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = logging.NewComponentLogger(stageLogger, "transcribe")
	}
	return &Transcriber{store: store, cfg: cfg, logger: stageLogger, client: client}
}

func (t *Transcriber) Prepare(ctx context.Context, job *queue.Job) error {
	job.SetProgress("Transcribe", "Sending audio to transcription provider", 0)
	job.ErrorMessage = ""
	return nil
}

func (t *Transcriber) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, t.logger)

	env, err := stage.ParseEnvelope(job)
	if err != nil {
		return err
	}
	if env.Media == nil || strings.TrimSpace(env.Media.AudioPath) == "" {
		return services.Wrap(services.ErrValidation, "transcribe", "validate inputs",
			"no extracted audio present; ingest must run first", nil)
	}

	segments, err := t.client.Transcribe(ctx, env.Media.AudioPath)
	if err != nil {
		return err
	}
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})

	if err := stage.SaveEnvelope(job, jobdata.StageTranscribe, jobdata.Envelope{Transcript: segments}); err != nil {
		return err
	}

	job.SetProgress("Transcribe", "Transcript ready", 100)
	logger.Info("transcription complete", logging.Int("segment_count", len(segments)))
	return nil
}

func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	if strings.TrimSpace(t.cfg.Transcriber.BaseURL) == "" {
		return stage.Unhealthy("transcribe", "transcription provider base URL not configured")
	}
	return stage.Healthy("transcribe")
}
