package export

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipforge/internal/clipcache"
	"clipforge/internal/config"
	"clipforge/internal/fileutil"
	"clipforge/internal/jobdata"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/stage"
	"clipforge/internal/textutil"
)

// ClipCache is the reprocess cache surface the export stage needs.
type ClipCache interface {
	Store(entry clipcache.Entry) error
}

// Exporter moves rendered clips into the output directory, records the
// aggregate result, and seeds the reprocess cache.
type Exporter struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	cache  ClipCache
	now    func() time.Time
}

// NewExporter constructs the export stage handler using default dependencies.
func NewExporter(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Exporter {
	cachePath := ""
	if cfg.ReprocessCache.Enabled {
		cachePath = cfg.ReprocessCache.Path
	}
	ttl := time.Duration(cfg.ReprocessCache.TTLDays) * 24 * time.Hour
	return NewExporterWithDependencies(cfg, store, logger, clipcache.NewCache(cachePath, ttl, logger))
}

// NewExporterWithDependencies allows injecting collaborators (used in tests).
func NewExporterWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, cache ClipCache) *Exporter {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = logging.NewComponentLogger(stageLogger, "export")
	}
	return &Exporter{store: store, cfg: cfg, logger: stageLogger, cache: cache, now: time.Now}
}

func (e *Exporter) Prepare(ctx context.Context, job *queue.Job) error {
	job.SetProgress("Export", "Moving clips to output", 0)
	job.ErrorMessage = ""
	return nil
}

func (e *Exporter) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, e.logger)

	env, err := stage.ParseEnvelope(job)
	if err != nil {
		return err
	}
	if len(env.Renders) == 0 {
		return services.Wrap(services.ErrValidation, "export", "validate inputs",
			"no rendered clips present; render must run first", nil)
	}

	outputDir := filepath.Join(e.cfg.Paths.OutputDir, job.JobID)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "export", "create output dir", outputDir, err)
	}

	titles := make(map[string]string, len(env.Texts))
	for _, text := range env.Texts {
		titles[text.ClipID] = text.Title
	}

	var files []string
	clips := make([]jobdata.Clip, 0, len(env.Clips))
	for _, clip := range env.Clips {
		if title, ok := titles[clip.ID]; ok && strings.TrimSpace(title) != "" {
			clip.Title = title
		}
		clips = append(clips, clip)

		render, ok := findRender(env.Renders, clip.ID)
		if !ok {
			return services.Wrap(services.ErrValidation, "export", "collect renders",
				"clip "+clip.ID+" has no rendered file", nil)
		}
		dest := filepath.Join(outputDir, exportName(clip))
		if err := fileutil.MoveFile(render.VideoPath, dest); err != nil {
			return services.Wrap(services.ErrTransient, "export", "move clip", render.VideoPath, err)
		}
		files = append(files, dest)

		if e.cache != nil {
			entry := clipcache.Entry{
				JobID:  job.JobID,
				ClipID: clip.ID,
				Start:  clip.Start,
				End:    clip.End,
				Title:  clip.Title,
			}
			if err := e.cache.Store(entry); err != nil {
				logger.Warn("failed to cache clip for reprocessing", logging.Error(err))
			}
		}
	}

	result := &jobdata.Result{
		Clips:             clips,
		Files:             files,
		OutputDir:         outputDir,
		ProcessingSeconds: e.now().Sub(job.CreatedAt).Seconds(),
	}
	if err := stage.SaveEnvelope(job, jobdata.StageExport, jobdata.Envelope{Result: result}); err != nil {
		return err
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return services.Wrap(services.ErrValidation, "export", "encode result", "", err)
	}
	job.SetCompleted(string(resultJSON))
	job.SetProgress("Export", "Export complete", 100)

	logger.Info("export complete",
		logging.Int("clip_count", len(files)),
		logging.String("output_dir", outputDir))
	return nil
}

func (e *Exporter) HealthCheck(ctx context.Context) stage.Health {
	if strings.TrimSpace(e.cfg.Paths.OutputDir) == "" {
		return stage.Unhealthy("export", "output directory not configured")
	}
	return stage.Healthy("export")
}

func findRender(renders []jobdata.Render, clipID string) (jobdata.Render, bool) {
	for _, render := range renders {
		if render.ClipID == clipID {
			return render, true
		}
	}
	return jobdata.Render{}, false
}

// exportName derives a filesystem-safe file name from the clip title.
func exportName(clip jobdata.Clip) string {
	name := textutil.Slugify(clip.Title)
	if name == "" {
		return clip.ID + ".mp4"
	}
	return name + "-" + shortID(clip.ID) + ".mp4"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
