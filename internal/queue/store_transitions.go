package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ClaimNext atomically moves the oldest eligible job from a stage's start
// status into its processing status and returns it. Jobs whose retry backoff
// has not elapsed are skipped. Returns nil when no job is eligible.
//
// The claim is a compare-and-set on the status column, so concurrent workers
// polling the same stage never receive the same job.
func (s *Store) ClaimNext(ctx context.Context, start, processing Status) (*Job, error) {
	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339Nano)

	for {
		row := s.db.QueryRowContext(
			ctx,
			`SELECT id FROM jobs
             WHERE status = ? AND (next_retry_at IS NULL OR next_retry_at <= ?)
             ORDER BY created_at LIMIT 1`,
			start,
			nowStr,
		)
		var id int64
		if err := row.Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}
			return nil, fmt.Errorf("select next job: %w", err)
		}

		res, err := s.db.ExecContext(
			ctx,
			`UPDATE jobs
             SET status = ?, last_heartbeat = ?, updated_at = ?
             WHERE id = ? AND status = ?`,
			processing,
			nowStr,
			nowStr,
			id,
			start,
		)
		if err != nil {
			return nil, fmt.Errorf("claim job: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			// Lost the race to another worker; try the next candidate.
			continue
		}
		return s.GetByID(ctx, id)
	}
}

// ScheduleRetry returns a processing job to its stage start status with an
// incremented attempt counter and a backoff deadline before the next claim.
func (s *Store) ScheduleRetry(ctx context.Context, job *Job, delay time.Duration, reason string) error {
	start, ok := RollbackStatus(job.Status)
	if !ok {
		return fmt.Errorf("status %s has no stage to retry", job.Status)
	}
	now := time.Now().UTC()
	next := now.Add(delay)
	job.Status = start
	job.Attempt++
	job.NextRetryAt = &next
	job.LastHeartbeat = nil
	job.ErrorMessage = reason
	job.ProgressMessage = fmt.Sprintf("Retry %d scheduled: %s", job.Attempt, reason)
	return s.Update(ctx, job)
}

// ClearRetryState resets the attempt counter after a stage completes, so the
// next stage starts with a fresh retry budget.
func (s *Store) ClearRetryState(ctx context.Context, job *Job) error {
	job.Attempt = 0
	job.NextRetryAt = nil
	return s.Update(ctx, job)
}

// UpdateHeartbeat updates the last heartbeat timestamp for an in-flight job.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ResetStuckProcessing returns jobs stuck in processing statuses to their
// stage start status. Called on daemon startup after an unclean shutdown.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	var total int64
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for processing, start := range stageRollback {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE jobs
             SET status = ?, progress_message = 'Reset from stuck processing',
                 last_heartbeat = NULL, updated_at = ?
             WHERE status = ?`,
			start,
			now,
			processing,
		)
		if err != nil {
			return total, fmt.Errorf("reset stuck jobs: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += affected
	}
	return total, nil
}

// ReclaimStaleProcessing returns jobs whose heartbeat expired back to their
// stage start status so another worker can pick them up.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	now := time.Now().UTC().Format(time.RFC3339Nano)
	cutoffStr := cutoff.UTC().Format(time.RFC3339Nano)
	for processing, start := range stageRollback {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE jobs
             SET status = ?, progress_message = 'Reclaimed from stale processing',
                 last_heartbeat = NULL, updated_at = ?
             WHERE status = ? AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
			start,
			now,
			processing,
			cutoffStr,
		)
		if err != nil {
			return total, fmt.Errorf("reclaim stale jobs: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += affected
	}
	return total, nil
}

// RemoveIfActive deletes a job only when it has not reached a terminal state.
// Returns false when the job is unknown or already completed/failed.
func (s *Store) RemoveIfActive(ctx context.Context, jobID string) (bool, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM jobs WHERE job_id = ? AND status NOT IN (?, ?)`,
		jobID,
		StatusCompleted,
		StatusFailed,
	)
	if err != nil {
		return false, fmt.Errorf("remove active job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
