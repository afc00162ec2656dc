package render

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"clipforge/internal/captions"
	"clipforge/internal/config"
	"clipforge/internal/jobdata"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/services/mediatool"
	"clipforge/internal/stage"
)

// Cutter is the subset of the media tool the render stage needs.
type Cutter interface {
	CutVertical(ctx context.Context, source string, start, end float64, dest string) error
	BurnCaptions(ctx context.Context, source, captionPath, dest string) error
	Available() (string, error)
}

// Renderer cuts each selected clip out of the source, compiles its caption
// script, and burns the captions into the frames.
type Renderer struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	media  Cutter
}

// NewRenderer constructs the render stage handler using default dependencies.
func NewRenderer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Renderer {
	return NewRendererWithDependencies(cfg, store, logger, mediatool.New(cfg, logger))
}

// NewRendererWithDependencies allows injecting collaborators (used in tests).
func NewRendererWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, media Cutter) *Renderer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = logging.NewComponentLogger(stageLogger, "render")
	}
	return &Renderer{store: store, cfg: cfg, logger: stageLogger, media: media}
}

func (r *Renderer) Prepare(ctx context.Context, job *queue.Job) error {
	job.SetProgress("Render", "Cutting clips", 0)
	job.ErrorMessage = ""
	return nil
}

func (r *Renderer) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, r.logger)

	env, err := stage.ParseEnvelope(job)
	if err != nil {
		return err
	}
	if env.Media == nil || strings.TrimSpace(env.Media.Path) == "" {
		return services.Wrap(services.ErrValidation, "render", "validate inputs",
			"no ingested media present", nil)
	}
	if len(env.Clips) == 0 {
		return services.Wrap(services.ErrValidation, "render", "validate inputs",
			"no clips present; rank must run first", nil)
	}

	prefs, err := r.preferences(job)
	if err != nil {
		return err
	}

	renderDir := filepath.Join(r.cfg.Paths.WorkDir, job.JobID, "renders")
	if err := os.MkdirAll(renderDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "render", "create render dir", renderDir, err)
	}

	renders := make([]jobdata.Render, 0, len(env.Clips))
	for idx, clip := range env.Clips {
		percent := float64(idx) / float64(len(env.Clips)) * 100
		job.SetProgress("Render", fmt.Sprintf("Rendering clip %d of %d", idx+1, len(env.Clips)), percent)
		if r.store != nil {
			if err := r.store.Update(ctx, job); err != nil {
				logger.Warn("failed to persist render progress", logging.Error(err))
			}
		}

		render, err := r.renderClip(ctx, env, clip, prefs, renderDir)
		if err != nil {
			return err
		}
		renders = append(renders, render)
	}

	if err := stage.SaveEnvelope(job, jobdata.StageRender, jobdata.Envelope{Renders: renders}); err != nil {
		return err
	}

	job.SetProgress("Render", "Clips rendered", 100)
	logger.Info("render complete", logging.Int("clip_count", len(renders)))
	return nil
}

func (r *Renderer) renderClip(ctx context.Context, env jobdata.Envelope, clip jobdata.Clip, prefs captions.Preferences, renderDir string) (jobdata.Render, error) {
	cutPath := filepath.Join(renderDir, clip.ID+"-cut.mp4")
	if err := r.media.CutVertical(ctx, env.Media.Path, clip.Start, clip.End, cutPath); err != nil {
		return jobdata.Render{}, err
	}

	slice := clip.Transcript
	if len(slice) == 0 {
		slice = env.TranscriptSlice(clip.Start, clip.End)
	}

	script, err := captions.Compile(slice, clip.Start, prefs)
	if err != nil {
		return jobdata.Render{}, services.Wrap(services.ErrValidation, "render", "compile captions", clip.ID, err)
	}

	captionPath := filepath.Join(renderDir, clip.ID+".ass")
	if err := os.WriteFile(captionPath, []byte(script.Render()), 0o644); err != nil {
		return jobdata.Render{}, services.Wrap(services.ErrTransient, "render", "write captions", captionPath, err)
	}

	finalPath := filepath.Join(renderDir, clip.ID+".mp4")
	if err := r.media.BurnCaptions(ctx, cutPath, captionPath, finalPath); err != nil {
		return jobdata.Render{}, err
	}
	os.Remove(cutPath)

	return jobdata.Render{ClipID: clip.ID, VideoPath: finalPath, CaptionPath: captionPath}, nil
}

// preferences merges caller-supplied caption preferences over the configured
// defaults, then adjusts the font size to the job's speech density.
func (r *Renderer) preferences(job *queue.Job) (captions.Preferences, error) {
	prefs := r.cfg.CaptionPreferences()
	if raw := strings.TrimSpace(job.PreferencesJSON); raw != "" {
		if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
			return captions.Preferences{}, services.Wrap(services.ErrValidation, "render", "parse preferences",
				"caption preferences are not valid JSON", err)
		}
	}
	if err := prefs.Validate(); err != nil {
		return captions.Preferences{}, services.Wrap(services.ErrValidation, "render", "validate preferences", "", err)
	}
	return prefs, nil
}

func (r *Renderer) HealthCheck(ctx context.Context) stage.Health {
	if _, err := r.media.Available(); err != nil {
		return stage.Unhealthy("render", err.Error())
	}
	return stage.Healthy("render")
}
