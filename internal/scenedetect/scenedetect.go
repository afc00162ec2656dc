package scenedetect

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
	"clipforge/internal/services/mediatool"
	"clipforge/internal/stage"
)

const (
	// sceneThreshold is the visual-change score above which the media
	// binary reports a cut.
	sceneThreshold = 0.35
	// silenceGap marks a transcript gap long enough to prefer as a cut point.
	silenceGap = 1.5
	// minSceneSeconds drops scenes too short to carry a clip.
	minSceneSeconds = 2.0
)

// Detector is the subset of the media tool this stage needs.
type Detector interface {
	DetectSceneChanges(ctx context.Context, source string, threshold float64) ([]float64, error)
	Available() (string, error)
}

// SceneDetector segments the source timeline into candidate scenes using
// visual cuts from the media binary plus silence gaps from the transcript.
type SceneDetector struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	media  Detector
}

// NewSceneDetector constructs the detect-scenes stage handler using default
// dependencies.
func NewSceneDetector(cfg *config.Config, store *queue.Store, logger *slog.Logger) *SceneDetector {
	return NewSceneDetectorWithDependencies(cfg, store, logger, mediatool.New(cfg, logger))
}

// NewSceneDetectorWithDependencies allows injecting collaborators (used in tests).
func NewSceneDetectorWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, media Detector) *SceneDetector {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = logging.NewComponentLogger(stageLogger, "scenedetect")
	}
	return &SceneDetector{store: store, cfg: cfg, logger: stageLogger, media: media}
}

func (s *SceneDetector) Prepare(ctx context.Context, job *queue.Job) error {
	job.SetProgress("Detect scenes", "Scanning for scene changes", 0)
	job.ErrorMessage = ""
	return nil
}

func (s *SceneDetector) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)

	env, err := stage.ParseEnvelope(job)
	if err != nil {
		return err
	}
	if env.Media == nil || strings.TrimSpace(env.Media.Path) == "" {
		return services.Wrap(services.ErrValidation, "detect-scenes", "validate inputs",
			"no ingested media present; ingest must run first", nil)
	}
	if len(env.Transcript) == 0 {
		return services.Wrap(services.ErrValidation, "detect-scenes", "validate inputs",
			"no transcript present; transcribe must run first", nil)
	}

	cuts, err := s.media.DetectSceneChanges(ctx, env.Media.Path, sceneThreshold)
	if err != nil {
		return err
	}
	job.SetProgress("Detect scenes", "Building scene list", 60)

	scenes := buildScenes(env.Media.DurationSeconds, cuts, env.Transcript)
	if len(scenes) == 0 {
		return services.Wrap(services.ErrExternalTool, "detect-scenes", "build scenes",
			"no usable scenes detected in source", nil)
	}

	if err := stage.SaveEnvelope(job, jobdata.StageDetectScenes, jobdata.Envelope{Scenes: scenes}); err != nil {
		return err
	}

	job.SetProgress("Detect scenes", "Scenes ready", 100)
	logger.Info("scene detection complete", logging.Int("scene_count", len(scenes)))
	return nil
}

func (s *SceneDetector) HealthCheck(ctx context.Context) stage.Health {
	if _, err := s.media.Available(); err != nil {
		return stage.Unhealthy("detect-scenes", err.Error())
	}
	return stage.Healthy("detect-scenes")
}

// buildScenes merges visual cut points with transcript silence gaps into an
// ordered scene list. Each scene is scored by how much of it is covered by
// speech, so talk-heavy scenes rank higher downstream.
func buildScenes(duration float64, cuts []float64, transcript []jobdata.Segment) []jobdata.Scene {
	points := []float64{0}
	for _, cut := range cuts {
		if cut > 0 && cut < duration {
			points = append(points, cut)
		}
	}
	for i := 1; i < len(transcript); i++ {
		gap := transcript[i].Start - transcript[i-1].End
		if gap >= silenceGap {
			points = append(points, transcript[i-1].End+gap/2)
		}
	}
	points = append(points, duration)
	sort.Float64s(points)

	var scenes []jobdata.Scene
	for i := 1; i < len(points); i++ {
		start, end := points[i-1], points[i]
		if end-start < minSceneSeconds {
			continue
		}
		scenes = append(scenes, jobdata.Scene{
			Start: start,
			End:   end,
			Score: speechCoverage(start, end, transcript),
		})
	}
	return scenes
}

// speechCoverage returns the fraction of [start, end) covered by transcript
// segments.
func speechCoverage(start, end float64, transcript []jobdata.Segment) float64 {
	if end <= start {
		return 0
	}
	covered := 0.0
	for _, seg := range transcript {
		s, e := seg.Start, seg.End
		if s < start {
			s = start
		}
		if e > end {
			e = end
		}
		if e > s {
			covered += e - s
		}
	}
	return covered / (end - start)
}
