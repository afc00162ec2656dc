package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMediaTool()
	c.normalizeTranscriber()
	c.normalizeReprocessCache()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMediaTool() {
	c.MediaTool.Binary = strings.TrimSpace(c.MediaTool.Binary)
	c.MediaTool.ProbeBinary = strings.TrimSpace(c.MediaTool.ProbeBinary)
	if c.MediaTool.ProbeBinary == "" {
		c.MediaTool.ProbeBinary = defaultMediaToolProbeBinary
	}
	if c.MediaTool.TimeoutSeconds == 0 {
		c.MediaTool.TimeoutSeconds = defaultMediaToolTimeout
	}
}

func (c *Config) normalizeTranscriber() {
	c.Transcriber.BaseURL = strings.TrimRight(strings.TrimSpace(c.Transcriber.BaseURL), "/")
	if c.Transcriber.TimeoutSeconds == 0 {
		c.Transcriber.TimeoutSeconds = defaultTranscriberTimeout
	}
	if strings.TrimSpace(c.Transcriber.Language) == "" {
		c.Transcriber.Language = "en"
	}
}

func (c *Config) normalizeReprocessCache() {
	if strings.TrimSpace(c.ReprocessCache.Path) == "" {
		c.ReprocessCache.Path = filepath.Join(c.Paths.CacheDir, "reprocess.json")
	}
	if c.ReprocessCache.TTLDays <= 0 {
		c.ReprocessCache.TTLDays = defaultReprocessCacheTTLDays
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
