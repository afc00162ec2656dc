package config

const (
	defaultWorkDir   = "~/.local/share/clipforge/work"
	defaultOutputDir = "~/clips"
	defaultLogDir    = "~/.local/share/clipforge/logs"
	defaultCacheDir  = "~/.local/share/clipforge/cache"
	defaultAPIBind   = "127.0.0.1:7823"

	defaultMediaToolBinary      = "ffmpeg"
	defaultMediaToolProbeBinary = "ffprobe"
	defaultMediaToolTimeout     = 1800

	defaultTranscriberBaseURL = "https://api.transcription.example/v1"
	defaultTranscriberModel   = "large-v3"
	defaultTranscriberTimeout = 600

	defaultTextGenTimeout = 60

	defaultClipTargetDuration = 45
	defaultClipMinDuration    = 15
	defaultClipMaxDuration    = 90
	defaultClipsMaxPerJob     = 10

	defaultCaptionPosition        = "bottom"
	defaultCaptionFormat          = "single-line"
	defaultCaptionFontFamily      = "Arial"
	defaultCaptionFontSize        = 28
	defaultCaptionFontColor       = "#FFFFFF"
	defaultCaptionBackground      = "#000000"
	defaultCaptionBackgroundAlpha = 0.5
	defaultCaptionMaxChars        = 32
	defaultCaptionVerticalMargin  = 60

	defaultReprocessCacheTTLDays = 30

	defaultRetentionCompletedHours  = 24
	defaultRetentionCompletedCount  = 100
	defaultRetentionFailedDays      = 7
	defaultRetentionFailedCount     = 200
	defaultRetentionCleanupInterval = 30

	defaultWorkflowPollInterval    = 2
	defaultWorkflowErrorInterval   = 10
	defaultWorkflowHeartbeatSecs   = 15
	defaultWorkflowHeartbeatexpiry = 120
	defaultStageConcurrency        = 2
	defaultStageRateLimit          = 10
	defaultStageRateWindowSecs     = 60
	defaultRetryAttempts           = 3
	defaultRetryBaseDelaySecs      = 5

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			CacheDir:  defaultCacheDir,
			APIBind:   defaultAPIBind,
		},
		MediaTool: MediaTool{
			Binary:         defaultMediaToolBinary,
			ProbeBinary:    defaultMediaToolProbeBinary,
			TimeoutSeconds: defaultMediaToolTimeout,
		},
		Transcriber: Transcriber{
			BaseURL:        defaultTranscriberBaseURL,
			Model:          defaultTranscriberModel,
			Language:       "en",
			TimeoutSeconds: defaultTranscriberTimeout,
		},
		TextGen: TextGen{
			TimeoutSeconds: defaultTextGenTimeout,
		},
		Clips: Clips{
			TargetDurationSeconds: defaultClipTargetDuration,
			MinDurationSeconds:    defaultClipMinDuration,
			MaxDurationSeconds:    defaultClipMaxDuration,
			MaxPerJob:             defaultClipsMaxPerJob,
		},
		Captions: Captions{
			Position:          defaultCaptionPosition,
			Format:            defaultCaptionFormat,
			FontFamily:        defaultCaptionFontFamily,
			FontSize:          defaultCaptionFontSize,
			FontColor:         defaultCaptionFontColor,
			BackgroundColor:   defaultCaptionBackground,
			BackgroundOpacity: defaultCaptionBackgroundAlpha,
			MaxCharsPerLine:   defaultCaptionMaxChars,
			VerticalMargin:    defaultCaptionVerticalMargin,
		},
		ReprocessCache: ReprocessCache{
			Enabled: true,
			TTLDays: defaultReprocessCacheTTLDays,
		},
		Retention: Retention{
			CompletedMaxAgeHours:   defaultRetentionCompletedHours,
			CompletedMaxCount:      defaultRetentionCompletedCount,
			FailedMaxAgeDays:       defaultRetentionFailedDays,
			FailedMaxCount:         defaultRetentionFailedCount,
			CleanupIntervalMinutes: defaultRetentionCleanupInterval,
		},
		Workflow: Workflow{
			QueuePollInterval:   defaultWorkflowPollInterval,
			ErrorRetryInterval:  defaultWorkflowErrorInterval,
			HeartbeatInterval:   defaultWorkflowHeartbeatSecs,
			HeartbeatTimeout:    defaultWorkflowHeartbeatexpiry,
			StageConcurrency:    defaultStageConcurrency,
			StageRateLimit:      defaultStageRateLimit,
			StageRateWindowSecs: defaultStageRateWindowSecs,
			RetryAttempts:       defaultRetryAttempts,
			RetryBaseDelaySecs:  defaultRetryBaseDelaySecs,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
