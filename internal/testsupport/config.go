package testsupport

import (
	"path/filepath"
	"testing"

	"clipforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.ReprocessCache.Path = filepath.Join(base, "cache", "reprocess.json")

	// Fast timing so workflow tests do not sleep through real backoff windows.
	cfg.Workflow.QueuePollInterval = 1
	cfg.Workflow.ErrorRetryInterval = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithStageConcurrency overrides the per-stage worker count.
func WithStageConcurrency(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.StageConcurrency = n
	}
}

// WithRetryPolicy overrides the stage retry attempt count and base delay.
func WithRetryPolicy(attempts, baseDelaySecs int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.RetryAttempts = attempts
		cfg.Workflow.RetryBaseDelaySecs = baseDelaySecs
	}
}
