package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	CacheDir  string `toml:"cache_dir"`
	APIBind   string `toml:"api_bind"`
}

// MediaTool contains configuration for the external media-processing binary
// that performs downloads, probing, cutting, and subtitle burn-in.
type MediaTool struct {
	Binary         string `toml:"binary"`
	ProbeBinary    string `toml:"probe_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Transcriber contains configuration for the external transcription provider.
type Transcriber struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TextGen contains configuration for the title/description generation provider.
type TextGen struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Clips contains clip selection defaults.
type Clips struct {
	TargetDurationSeconds int `toml:"target_duration_seconds"`
	MinDurationSeconds    int `toml:"min_duration_seconds"`
	MaxDurationSeconds    int `toml:"max_duration_seconds"`
	MaxPerJob             int `toml:"max_per_job"`
}

// Captions contains default subtitle styling applied when a submission does
// not carry its own preferences.
type Captions struct {
	Position          string  `toml:"position"`
	Format            string  `toml:"format"`
	FontFamily        string  `toml:"font_family"`
	FontSize          int     `toml:"font_size"`
	FontColor         string  `toml:"font_color"`
	BackgroundColor   string  `toml:"background_color"`
	BackgroundOpacity float64 `toml:"background_opacity"`
	MaxCharsPerLine   int     `toml:"max_chars_per_line"`
	VerticalMargin    int     `toml:"vertical_margin"`
}

// ReprocessCache contains configuration for the per-clip reprocess cache.
type ReprocessCache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	TTLDays int    `toml:"ttl_days"`
}

// Retention bounds how long finished jobs are kept in the store.
type Retention struct {
	CompletedMaxAgeHours   int `toml:"completed_max_age_hours"`
	CompletedMaxCount      int `toml:"completed_max_count"`
	FailedMaxAgeDays       int `toml:"failed_max_age_days"`
	FailedMaxCount         int `toml:"failed_max_count"`
	CleanupIntervalMinutes int `toml:"cleanup_interval_minutes"`
}

// Workflow contains daemon timing, concurrency, and retry configuration.
type Workflow struct {
	QueuePollInterval   int `toml:"queue_poll_interval"`
	ErrorRetryInterval  int `toml:"error_retry_interval"`
	HeartbeatInterval   int `toml:"heartbeat_interval"`
	HeartbeatTimeout    int `toml:"heartbeat_timeout"`
	StageConcurrency    int `toml:"stage_concurrency"`
	StageRateLimit      int `toml:"stage_rate_limit"`
	StageRateWindowSecs int `toml:"stage_rate_window_seconds"`
	RetryAttempts       int `toml:"retry_attempts"`
	RetryBaseDelaySecs  int `toml:"retry_base_delay_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clipforge.
//
// Configuration sections by subsystem:
//   - Paths: working/output/log/cache directories and API bind address
//   - MediaTool: external media-processing binary settings
//   - Transcriber: speech-to-text provider connection
//   - TextGen: title/description generation provider connection
//   - Clips: clip duration targets
//   - Captions: default subtitle styling
//   - ReprocessCache: per-clip regeneration cache
//   - Retention: finished-job retention windows and caps
//   - Workflow: polling, concurrency, rate limits, and retry policy
//   - Logging: log format and level
type Config struct {
	Paths          Paths          `toml:"paths"`
	MediaTool      MediaTool      `toml:"media_tool"`
	Transcriber    Transcriber    `toml:"transcriber"`
	TextGen        TextGen        `toml:"textgen"`
	Clips          Clips          `toml:"clips"`
	Captions       Captions       `toml:"captions"`
	ReprocessCache ReprocessCache `toml:"reprocess_cache"`
	Retention      Retention      `toml:"retention"`
	Workflow       Workflow       `toml:"workflow"`
	Logging        Logging        `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipforge/config.toml")
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// OutputDir is created on a best-effort basis so the daemon can run when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
