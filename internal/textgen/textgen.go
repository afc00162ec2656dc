package textgen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clipforge/internal/config"
	"clipforge/internal/jobdata"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	textgensvc "clipforge/internal/services/textgen"
	"clipforge/internal/stage"
)

const maxTitleChars = 80

var titleCaser = cases.Title(language.English)

// Client is the subset of the text provider this stage needs.
type Client interface {
	Generate(ctx context.Context, transcript string) (textgensvc.Texts, error)
}

// Generator asks the text provider for a title, description, and hashtags
// for every rendered clip.
type Generator struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	client Client
}

// NewGenerator constructs the generate-texts stage handler using default
// dependencies.
func NewGenerator(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Generator, error) {
	client, err := textgensvc.New(textgensvc.Config{
		BaseURL: cfg.TextGen.BaseURL,
		APIKey:  cfg.TextGen.APIKey,
		Model:   cfg.TextGen.Model,
	})
	if err != nil {
		return nil, err
	}
	return NewGeneratorWithDependencies(cfg, store, logger, client), nil
}

// NewGeneratorWithDependencies allows injecting collaborators (used in tests).
func NewGeneratorWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client Client) *Generator {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = logging.NewComponentLogger(stageLogger, "textgen")
	}
	return &Generator{store: store, cfg: cfg, logger: stageLogger, client: client}
}

func (g *Generator) Prepare(ctx context.Context, job *queue.Job) error {
	job.SetProgress("Generate texts", "Writing clip titles", 0)
	job.ErrorMessage = ""
	return nil
}

func (g *Generator) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, g.logger)

	env, err := stage.ParseEnvelope(job)
	if err != nil {
		return err
	}
	if len(env.Renders) == 0 {
		return services.Wrap(services.ErrValidation, "generate-texts", "validate inputs",
			"no rendered clips present; render must run first", nil)
	}

	texts := make([]jobdata.ClipText, 0, len(env.Clips))
	for idx, clip := range env.Clips {
		percent := float64(idx) / float64(len(env.Clips)) * 100
		job.SetProgress("Generate texts", fmt.Sprintf("Clip %d of %d", idx+1, len(env.Clips)), percent)
		if g.store != nil {
			if err := g.store.Update(ctx, job); err != nil {
				logger.Warn("failed to persist textgen progress", logging.Error(err))
			}
		}

		generated, err := g.client.Generate(ctx, transcriptText(clip))
		if err != nil {
			return err
		}
		texts = append(texts, jobdata.ClipText{
			ClipID:      clip.ID,
			Title:       normalizeTitle(generated.Title, clip.Title),
			Description: strings.TrimSpace(generated.Description),
			Hashtags:    normalizeHashtags(generated.Hashtags),
		})
	}

	if err := stage.SaveEnvelope(job, jobdata.StageGenerateTexts, jobdata.Envelope{Texts: texts}); err != nil {
		return err
	}

	job.SetProgress("Generate texts", "Clip texts ready", 100)
	logger.Info("text generation complete", logging.Int("clip_count", len(texts)))
	return nil
}

func (g *Generator) HealthCheck(ctx context.Context) stage.Health {
	if strings.TrimSpace(g.cfg.TextGen.BaseURL) == "" {
		return stage.Unhealthy("generate-texts", "text provider base URL not configured")
	}
	return stage.Healthy("generate-texts")
}

func transcriptText(clip jobdata.Clip) string {
	var parts []string
	for _, seg := range clip.Transcript {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// normalizeTitle trims and title-cases provider output, falling back to the
// draft title when the provider returned nothing usable.
func normalizeTitle(generated, fallback string) string {
	title := strings.TrimSpace(generated)
	if title == "" {
		return fallback
	}
	if len(title) > maxTitleChars {
		title = strings.TrimSpace(title[:maxTitleChars])
	}
	if title == strings.ToLower(title) {
		title = titleCaser.String(title)
	}
	return title
}

func normalizeHashtags(tags []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#")))
		tag = strings.ReplaceAll(tag, " ", "")
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
