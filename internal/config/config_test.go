package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected file to be reported missing")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Workflow.StageConcurrency != 2 {
		t.Fatalf("expected default stage concurrency 2, got %d", cfg.Workflow.StageConcurrency)
	}
	if cfg.Workflow.StageRateLimit != 10 {
		t.Fatalf("expected default stage rate limit 10, got %d", cfg.Workflow.StageRateLimit)
	}
}

func TestLoadAppliesOverridesAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := strings.Join([]string{
		"[paths]",
		`work_dir = "` + filepath.Join(dir, "work") + `"`,
		`output_dir = "` + filepath.Join(dir, "out") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"",
		"[workflow]",
		"stage_concurrency = 4",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Workflow.StageConcurrency != 4 {
		t.Fatalf("override not applied, got %d", cfg.Workflow.StageConcurrency)
	}
	if !filepath.IsAbs(cfg.Paths.WorkDir) {
		t.Fatalf("expected absolute work dir, got %q", cfg.Paths.WorkDir)
	}
	if cfg.ReprocessCache.Path == "" {
		t.Fatal("expected reprocess cache path to be derived from cache dir")
	}
}

func TestValidateRejectsOutOfRangeCaptions(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"font size too large", func(c *config.Config) { c.Captions.FontSize = 60 }},
		{"font size too small", func(c *config.Config) { c.Captions.FontSize = 10 }},
		{"opacity above one", func(c *config.Config) { c.Captions.BackgroundOpacity = 1.5 }},
		{"max chars too small", func(c *config.Config) { c.Captions.MaxCharsPerLine = 10 }},
		{"bad position", func(c *config.Config) { c.Captions.Position = "left" }},
		{"bad format", func(c *config.Config) { c.Captions.Format = "scrolling" }},
	}
	for _, tc := range cases {
		cfg := config.Default()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestValidateWorkflowBounds(t *testing.T) {
	cfg := config.Default()
	cfg.Workflow.RetryAttempts = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero retry attempts")
	}

	cfg = config.Default()
	cfg.Workflow.HeartbeatTimeout = cfg.Workflow.HeartbeatInterval
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when heartbeat timeout does not exceed interval")
	}
}
