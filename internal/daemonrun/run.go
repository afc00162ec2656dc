// Package daemonrun wires the full daemon runtime: logger, store, stage
// handlers, workflow manager, and the daemon itself. Both the standalone
// daemon binary and the CLI's foreground daemon command use it.
package daemonrun

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"clipforge/internal/clipcache"
	"clipforge/internal/config"
	"clipforge/internal/daemon"
	"clipforge/internal/deps"
	"clipforge/internal/export"
	"clipforge/internal/ingest"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/rank"
	"clipforge/internal/render"
	"clipforge/internal/scenedetect"
	"clipforge/internal/textgen"
	"clipforge/internal/transcribe"
	"clipforge/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the clipforge daemon and blocks until the context is cancelled
// or an interrupt signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		if !status.Available {
			logger.Warn("external dependency unavailable",
				logging.String("dependency", status.Name),
				logging.String("detail", status.Detail))
		}
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open queue store: %w", err)
	}

	transcriber, err := transcribe.NewTranscriber(cfg, store, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("initialize transcriber: %w", err)
	}
	generator, err := textgen.NewGenerator(cfg, store, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("initialize text generator: %w", err)
	}

	set := workflow.StageSet{
		Ingester:      ingest.NewIngester(cfg, store, logger),
		Transcriber:   transcriber,
		SceneDetector: scenedetect.NewSceneDetector(cfg, store, logger),
		Ranker:        rank.NewRanker(cfg, store, logger),
		Renderer:      render.NewRenderer(cfg, store, logger),
		TextGenerator: generator,
		Exporter:      export.NewExporter(cfg, store, logger),
	}

	var cache *clipcache.Cache
	if cfg.ReprocessCache.Enabled {
		ttl := time.Duration(cfg.ReprocessCache.TTLDays) * 24 * time.Hour
		cache = clipcache.NewCache(cfg.ReprocessCache.Path, ttl, logger)
	}

	manager := workflow.NewManager(cfg, store, logger, set)
	d, err := daemon.New(cfg, store, logger, manager, cache)
	if err != nil {
		store.Close()
		return err
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	d.Stop()
	return nil
}
