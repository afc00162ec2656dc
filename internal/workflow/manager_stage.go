package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
)

// executeStage runs one stage handler against a claimed job. The job is
// already in the stage's processing status; on success it advances to the
// done status, on failure it is retried or marked failed.
func (m *Manager) executeStage(ctx context.Context, workerLogger *slog.Logger, stg pipelineStage, job *queue.Job) error {
	requestID := uuid.NewString()
	stageCtx := services.WithRequestID(ctx, requestID)
	stageCtx = services.WithJobID(stageCtx, job.JobID)
	stageCtx = services.WithStage(stageCtx, stg.name)
	stageCtx = services.WithAttempt(stageCtx, job.Attempt+1)

	stageLogger := workerLogger.With(
		logging.String(logging.FieldJobID, job.JobID),
		logging.String(logging.FieldCorrelationID, requestID),
	)

	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.Int("attempt", job.Attempt+1))

	execErr := m.runWithHeartbeat(stageCtx, stg, job)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(stageCtx, stageLogger, stg, job, execErr)
		m.setLastError(execErr)
		return execErr
	}

	// The export stage marks the job completed itself; every other stage
	// advances to its done status.
	if job.Status == stg.processingStatus || job.Status == "" {
		job.Status = stg.doneStatus
	}
	job.LastHeartbeat = nil
	job.Attempt = 0
	job.NextRetryAt = nil
	if err := m.store.Update(stageCtx, job); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(job.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)))
	return nil
}

// runWithHeartbeat keeps the job's heartbeat fresh while the rate limiter
// gate and the handler run.
func (m *Manager) runWithHeartbeat(ctx context.Context, stg pipelineStage, job *queue.Job) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, job.ID)
	defer func() {
		hbCancel()
		hbWG.Wait()
	}()

	if err := m.limiters[stg.name].Acquire(ctx); err != nil {
		return err
	}

	if err := stg.handler.Prepare(ctx, job); err != nil {
		return err
	}
	if err := m.store.Update(ctx, job); err != nil {
		return fmt.Errorf("persist stage preparation: %w", err)
	}
	return stg.handler.Execute(ctx, job)
}
