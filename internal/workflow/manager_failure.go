package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
)

// handleStageFailure applies the retry policy to a failed stage execution.
// Retryable errors are rescheduled with exponential backoff until the retry
// budget is spent; everything else fails the job immediately.
func (m *Manager) handleStageFailure(ctx context.Context, logger *slog.Logger, stg pipelineStage, job *queue.Job, stageErr error) {
	message := failureMessage(stg.name, stageErr)

	if services.Retryable(stageErr) && job.Attempt < m.retryLimit {
		delay := m.backoffDelay(job.Attempt)
		if err := m.store.ScheduleRetry(ctx, job, delay, message); err != nil {
			logger.Error("failed to schedule retry", logging.Error(err))
			m.failJob(ctx, logger, job, message)
			return
		}
		logger.Warn("stage failed, retry scheduled",
			logging.String(logging.FieldEventType, "stage_retry"),
			logging.Int("attempt", job.Attempt),
			logging.Duration("backoff", delay),
			logging.String("error_message", message),
			logging.Error(stageErr))
		return
	}

	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.Int("attempt", job.Attempt+1),
		logging.String("error_message", message),
		logging.Error(stageErr))
	m.failJob(ctx, logger, job, message)
}

func (m *Manager) failJob(ctx context.Context, logger *slog.Logger, job *queue.Job, message string) {
	job.SetFailed(message)
	if err := m.store.Update(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutdown in progress, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
}

// backoffDelay doubles the base delay for every prior attempt.
func (m *Manager) backoffDelay(attempt int) time.Duration {
	delay := m.retryBase
	if delay <= 0 {
		delay = 5 * time.Second
	}
	for i := 0; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

func failureMessage(stageName string, stageErr error) string {
	if stageErr == nil {
		return stageName + " failed without error detail"
	}
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		return stageName + " failed"
	}
	return message
}
