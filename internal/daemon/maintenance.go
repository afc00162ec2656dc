package daemon

import (
	"context"
	"time"

	"log/slog"

	"clipforge/internal/logging"
	"clipforge/internal/queue"
)

const shutdownTimeout = 5 * time.Second

// retentionPolicy converts configured retention windows into queue terms.
func (d *Daemon) retentionPolicy() queue.RetentionPolicy {
	retention := d.cfg.Retention
	return queue.RetentionPolicy{
		CompletedMaxAge: time.Duration(retention.CompletedMaxAgeHours) * time.Hour,
		MaxCompleted:    retention.CompletedMaxCount,
		FailedMaxAge:    time.Duration(retention.FailedMaxAgeDays) * 24 * time.Hour,
		MaxFailed:       retention.FailedMaxCount,
	}
}

// runMaintenance periodically evicts finished jobs past their retention
// window and sweeps expired reprocess cache entries.
func (d *Daemon) runMaintenance(ctx context.Context) {
	defer d.wg.Done()

	interval := time.Duration(d.cfg.Retention.CleanupIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runCleanup(ctx)
		}
	}
}

func (d *Daemon) runCleanup(ctx context.Context) {
	removed, err := d.store.Cleanup(ctx, d.retentionPolicy())
	if err != nil {
		d.logger.Warn("queue cleanup failed", logging.Error(err))
	} else if removed > 0 {
		d.logger.Info("evicted finished jobs", slog.Int64("count", removed))
	}

	if d.cache == nil {
		return
	}
	swept, err := d.cache.Sweep()
	if err != nil {
		d.logger.Warn("reprocess cache sweep failed", logging.Error(err))
	} else if swept > 0 {
		d.logger.Info("swept expired reprocess entries", slog.Int("count", swept))
	}
}
