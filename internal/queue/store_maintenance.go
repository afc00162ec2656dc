package queue

import (
	"context"
	"fmt"
	"time"
)

// RetentionPolicy bounds how long finished jobs are kept. Completed jobs are
// evicted once they exceed the age window or fall outside the newest
// MaxCompleted rows; failed jobs get a longer window for diagnosis.
type RetentionPolicy struct {
	CompletedMaxAge time.Duration
	MaxCompleted    int
	FailedMaxAge    time.Duration
	MaxFailed       int
}

// Cleanup evicts finished jobs per the retention policy and returns the number
// of rows removed.
func (s *Store) Cleanup(ctx context.Context, policy RetentionPolicy) (int64, error) {
	var total int64

	removed, err := s.evictFinished(ctx, StatusCompleted, policy.CompletedMaxAge, policy.MaxCompleted)
	if err != nil {
		return total, err
	}
	total += removed

	removed, err = s.evictFinished(ctx, StatusFailed, policy.FailedMaxAge, policy.MaxFailed)
	if err != nil {
		return total, err
	}
	total += removed

	return total, nil
}

func (s *Store) evictFinished(ctx context.Context, status Status, maxAge time.Duration, maxCount int) (int64, error) {
	var total int64

	if maxAge > 0 {
		cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339Nano)
		res, err := s.db.ExecContext(
			ctx,
			`DELETE FROM jobs WHERE status = ? AND finished_at IS NOT NULL AND finished_at < ?`,
			status,
			cutoff,
		)
		if err != nil {
			return total, fmt.Errorf("evict %s by age: %w", status, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += affected
	}

	if maxCount > 0 {
		res, err := s.db.ExecContext(
			ctx,
			`DELETE FROM jobs WHERE status = ? AND id NOT IN (
                SELECT id FROM jobs WHERE status = ?
                ORDER BY finished_at DESC, id DESC LIMIT ?
            )`,
			status,
			status,
			maxCount,
		)
		if err != nil {
			return total, fmt.Errorf("evict %s by count: %w", status, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += affected
	}

	return total, nil
}

// ClearCompleted removes only completed jobs.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ClearFailed removes only failed jobs.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE status = ?`, StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("clear failed: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all jobs.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}
