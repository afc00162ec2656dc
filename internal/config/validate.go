package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMediaTool(); err != nil {
		return err
	}
	if err := c.validateClips(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateRetention(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateMediaTool() error {
	if strings.TrimSpace(c.MediaTool.Binary) == "" {
		return errors.New("media_tool.binary must be set")
	}
	if c.MediaTool.TimeoutSeconds <= 0 {
		return errors.New("media_tool.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateClips() error {
	if c.Clips.MinDurationSeconds <= 0 {
		return errors.New("clips.min_duration_seconds must be positive")
	}
	if c.Clips.MaxDurationSeconds < c.Clips.MinDurationSeconds {
		return errors.New("clips.max_duration_seconds must be >= clips.min_duration_seconds")
	}
	if c.Clips.TargetDurationSeconds < c.Clips.MinDurationSeconds || c.Clips.TargetDurationSeconds > c.Clips.MaxDurationSeconds {
		return fmt.Errorf("clips.target_duration_seconds must be between %d and %d",
			c.Clips.MinDurationSeconds, c.Clips.MaxDurationSeconds)
	}
	if c.Clips.MaxPerJob <= 0 {
		return errors.New("clips.max_per_job must be positive")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	switch c.Captions.Position {
	case "top", "center", "bottom":
	default:
		return fmt.Errorf("captions.position must be top, center, or bottom (got %q)", c.Captions.Position)
	}
	switch c.Captions.Format {
	case "single-line", "multi-line", "karaoke", "progressive":
	default:
		return fmt.Errorf("captions.format must be single-line, multi-line, karaoke, or progressive (got %q)", c.Captions.Format)
	}
	if c.Captions.FontSize < 16 || c.Captions.FontSize > 48 {
		return errors.New("captions.font_size must be between 16 and 48")
	}
	if c.Captions.BackgroundOpacity < 0 || c.Captions.BackgroundOpacity > 1 {
		return errors.New("captions.background_opacity must be between 0 and 1")
	}
	if c.Captions.MaxCharsPerLine < 20 || c.Captions.MaxCharsPerLine > 60 {
		return errors.New("captions.max_chars_per_line must be between 20 and 60")
	}
	return nil
}

func (c *Config) validateRetention() error {
	if c.Retention.CompletedMaxAgeHours <= 0 {
		return errors.New("retention.completed_max_age_hours must be positive")
	}
	if c.Retention.CompletedMaxCount <= 0 {
		return errors.New("retention.completed_max_count must be positive")
	}
	if c.Retention.FailedMaxAgeDays <= 0 {
		return errors.New("retention.failed_max_age_days must be positive")
	}
	if c.Retention.FailedMaxCount <= 0 {
		return errors.New("retention.failed_max_count must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.StageConcurrency <= 0 {
		return errors.New("workflow.stage_concurrency must be positive")
	}
	if c.Workflow.StageRateLimit <= 0 {
		return errors.New("workflow.stage_rate_limit must be positive")
	}
	if c.Workflow.StageRateWindowSecs <= 0 {
		return errors.New("workflow.stage_rate_window_seconds must be positive")
	}
	if c.Workflow.RetryAttempts <= 0 {
		return errors.New("workflow.retry_attempts must be positive")
	}
	if c.Workflow.RetryBaseDelaySecs <= 0 {
		return errors.New("workflow.retry_base_delay_seconds must be positive")
	}
	if c.Workflow.HeartbeatInterval <= 0 || c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}
