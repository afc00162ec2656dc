package rank

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clipforge/internal/config"
	"clipforge/internal/jobdata"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/stage"
)

const titleWordLimit = 6

var titleCaser = cases.Title(language.English)

// Ranker scores candidate clips against the requested target duration and
// keeps the best non-overlapping set.
type Ranker struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	newID  func() string
}

// NewRanker constructs the rank stage handler.
func NewRanker(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Ranker {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = logging.NewComponentLogger(stageLogger, "rank")
	}
	return &Ranker{
		store:  store,
		cfg:    cfg,
		logger: stageLogger,
		newID:  func() string { return uuid.NewString() },
	}
}

func (r *Ranker) Prepare(ctx context.Context, job *queue.Job) error {
	job.SetProgress("Rank", "Scoring candidate clips", 0)
	job.ErrorMessage = ""
	return nil
}

func (r *Ranker) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, r.logger)

	env, err := stage.ParseEnvelope(job)
	if err != nil {
		return err
	}
	if len(env.Scenes) == 0 {
		return services.Wrap(services.ErrValidation, "rank", "validate inputs",
			"no scenes present; detect-scenes must run first", nil)
	}

	target := float64(job.TargetDuration)
	if target <= 0 {
		target = float64(r.cfg.Clips.TargetDurationSeconds)
	}
	minDur := float64(r.cfg.Clips.MinDurationSeconds)
	maxDur := float64(r.cfg.Clips.MaxDurationSeconds)

	candidates := buildCandidates(env.Scenes, target, minDur, maxDur)
	if len(candidates) == 0 {
		return services.Wrap(services.ErrExternalTool, "rank", "select clips",
			"no scene run fits the requested clip duration", nil)
	}
	selected := selectTop(candidates, r.cfg.Clips.MaxPerJob)

	clips := make([]jobdata.Clip, 0, len(selected))
	for _, cand := range selected {
		slice := env.TranscriptSlice(cand.start, cand.end)
		clips = append(clips, jobdata.Clip{
			ID:         r.newID(),
			Start:      cand.start,
			End:        cand.end,
			Title:      draftTitle(slice),
			Transcript: slice,
		})
	}
	sort.Slice(clips, func(i, j int) bool { return clips[i].Start < clips[j].Start })

	if err := stage.SaveEnvelope(job, jobdata.StageRank, jobdata.Envelope{Clips: clips}); err != nil {
		return err
	}

	job.SetProgress("Rank", "Clips selected", 100)
	logger.Info("ranking complete", logging.Int("clip_count", len(clips)))
	return nil
}

func (r *Ranker) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("rank")
}

type candidate struct {
	start, end float64
	score      float64
}

// buildCandidates forms runs of consecutive scenes whose combined length
// falls inside [minDur, maxDur], scoring each run by speech coverage and
// closeness to the target duration.
func buildCandidates(scenes []jobdata.Scene, target, minDur, maxDur float64) []candidate {
	var out []candidate
	for i := range scenes {
		coverage := 0.0
		for j := i; j < len(scenes); j++ {
			length := scenes[j].End - scenes[i].Start
			if length > maxDur {
				break
			}
			coverage += scenes[j].Score * (scenes[j].End - scenes[j].Start)
			if length < minDur {
				continue
			}
			fit := 1 - math.Abs(length-target)/target
			if fit < 0 {
				fit = 0
			}
			out = append(out, candidate{
				start: scenes[i].Start,
				end:   scenes[j].End,
				score: coverage/length + fit,
			})
		}
	}
	return out
}

// selectTop keeps the best-scoring candidates that do not overlap each other.
func selectTop(candidates []candidate, limit int) []candidate {
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	var selected []candidate
	for _, cand := range candidates {
		if limit > 0 && len(selected) >= limit {
			break
		}
		overlaps := false
		for _, kept := range selected {
			if cand.start < kept.end && kept.start < cand.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			selected = append(selected, cand)
		}
	}
	return selected
}

// draftTitle builds a placeholder title from the clip's opening words. The
// generate-texts stage replaces it with provider output.
func draftTitle(slice []jobdata.Segment) string {
	var words []string
	for _, seg := range slice {
		words = append(words, strings.Fields(seg.Text)...)
		if len(words) >= titleWordLimit {
			break
		}
	}
	if len(words) == 0 {
		return "Untitled Clip"
	}
	if len(words) > titleWordLimit {
		words = words[:titleWordLimit]
	}
	title := strings.Join(words, " ")
	title = strings.TrimRight(title, ".,!?;:")
	return titleCaser.String(strings.ToLower(title))
}
