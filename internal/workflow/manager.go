package workflow

import (
	"log/slog"
	"sync"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
)

// Manager moves jobs through the pipeline. Every stage gets its own worker
// pool and sliding-window rate limit; per-job ordering is guaranteed by the
// status machine, global ordering across jobs is not.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration
	errorRetry   time.Duration
	concurrency  int
	retryLimit   int
	retryBase    time.Duration

	heartbeat *HeartbeatMonitor
	stages    []pipelineStage
	limiters  map[string]*rateLimiter

	mu      sync.Mutex
	running bool
	cancel  func()
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager for the given stage handlers.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, set StageSet) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "workflow")

	stages := pipelineStages(set)
	limiters := make(map[string]*rateLimiter, len(stages))
	window := time.Duration(cfg.Workflow.StageRateWindowSecs) * time.Second
	for _, stg := range stages {
		limiters[stg.name] = newRateLimiter(cfg.Workflow.StageRateLimit, window)
	}

	concurrency := cfg.Workflow.StageConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		errorRetry:   time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		concurrency:  concurrency,
		retryLimit:   cfg.Workflow.RetryAttempts,
		retryBase:    time.Duration(cfg.Workflow.RetryBaseDelaySecs) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
		stages:   stages,
		limiters: limiters,
	}
}

// Running reports whether background processing is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// LastError returns the most recent worker error, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
