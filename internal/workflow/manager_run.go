package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"clipforge/internal/logging"
)

// Start begins background processing: one reclaimer loop plus a worker pool
// per stage.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}
	for _, stg := range m.stages {
		if stg.handler == nil {
			m.mu.Unlock()
			return errors.New("stage " + stg.name + " has no handler")
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	workers := len(m.stages)*m.concurrency + 1
	m.wg.Add(workers)
	m.mu.Unlock()

	go m.runReclaimer(runCtx)
	for _, stg := range m.stages {
		for i := 0; i < m.concurrency; i++ {
			go m.runStageWorker(runCtx, stg, i)
		}
	}
	return nil
}

// Stop terminates background processing and waits for workers to drain.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// runReclaimer periodically returns jobs with stale heartbeats to their stage
// start status so crashed workers do not strand them.
func (m *Manager) runReclaimer(ctx context.Context) {
	defer m.wg.Done()
	interval := m.heartbeat.heartbeatInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.heartbeat.ReclaimStale(ctx, m.logger); err != nil {
				m.logger.Warn("reclaim stale processing failed; stuck jobs may remain",
					logging.Error(err),
					logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
					logging.String(logging.FieldErrorHint, "check queue database access"))
			}
		}
	}
}

// runStageWorker is one worker in a stage's pool. It rate-limits dequeues,
// claims the next eligible job, and runs the stage handler against it.
func (m *Manager) runStageWorker(ctx context.Context, stg pipelineStage, worker int) {
	defer m.wg.Done()
	logger := m.logger.With(
		logging.String(logging.FieldStage, stg.name),
		logging.Int("worker", worker),
	)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := m.store.ClaimNext(ctx, stg.startStatus, stg.processingStatus)
		if err != nil {
			m.handleClaimError(ctx, logger, err)
			continue
		}
		if job == nil {
			m.waitForWork(ctx)
			continue
		}

		if err := m.executeStage(ctx, logger, stg, job); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) handleClaimError(ctx context.Context, logger *slog.Logger, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	m.setLastError(err)
	logger.Error("failed to claim next job",
		logging.Error(err),
		logging.String(logging.FieldEventType, "queue_claim_failed"),
		logging.String(logging.FieldErrorHint, "check queue database access"))
	select {
	case <-ctx.Done():
	case <-time.After(m.errorRetry):
	}
}

func (m *Manager) waitForWork(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}
