package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"clipforge/internal/api"
	"clipforge/internal/clipcache"
	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/workflow"
)

// Daemon coordinates background processing and enforces single-instance
// execution via a lock file.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	workflow *workflow.Manager
	cache    *clipcache.Cache

	lockPath string
	lock     *flock.Flock

	apiSrv *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	QueueDBPath  string
	LockFilePath string
	Workflow     api.WorkflowStatus
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, wf *workflow.Manager, cache *clipcache.Cache) (*Daemon, error) {
	if cfg == nil || store == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, and workflow manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "daemon")

	lockPath := filepath.Join(cfg.Paths.LogDir, "clipforged.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		workflow: wf,
		cache:    cache,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.apiSrv = srv
	return d, nil
}

// Start acquires the daemon lock, recovers interrupted jobs, and launches the
// workflow manager, API server, and maintenance loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipforge daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	// Jobs left mid-stage by a crash roll back to their stage start so the
	// workflow picks them up again.
	if reset, err := d.store.ResetStuckProcessing(d.ctx); err != nil {
		d.logger.Warn("reset stuck jobs failed", logging.Error(err))
	} else if reset > 0 {
		d.logger.Info("recovered interrupted jobs", slog.Int64("count", reset))
	}

	if err := d.workflow.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start workflow: %w", err)
	}

	if err := d.apiSrv.start(d.ctx); err != nil {
		d.workflow.Stop()
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.wg.Add(1)
	go d.runMaintenance(d.ctx)

	d.running.Store(true)
	d.logger.Info("clipforge daemon started", slog.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock. Jobs caught
// mid-stage are marked with the shutdown reason rather than silently dropped.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	d.apiSrv.stop()
	d.wg.Wait()

	d.markInterrupted()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("clipforge daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the daemon is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// APIAddr returns the bound API listener address, or empty when not serving.
func (d *Daemon) APIAddr() string {
	return d.apiSrv.addr()
}

// Status reports runtime information for status queries.
func (d *Daemon) Status(ctx context.Context) Status {
	stats, err := d.store.Stats(ctx)
	if err != nil {
		d.logger.Warn("queue stats failed", logging.Error(err))
	}

	health := d.workflow.StageHealth(ctx)
	stageHealth := make([]api.StageHealth, 0, len(health))
	for _, h := range health {
		stageHealth = append(stageHealth, api.StageHealth{Name: h.Name, Ready: h.Ready, Detail: h.Detail})
	}

	wfStatus := api.WorkflowStatus{
		Running:     d.workflow.Running(),
		QueueStats:  api.MergeQueueStats(stats),
		StageHealth: stageHealth,
	}
	if err := d.workflow.LastError(); err != nil {
		wfStatus.LastError = err.Error()
	}

	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		QueueDBPath:  d.store.Path(),
		LockFilePath: d.lockPath,
		Workflow:     wfStatus,
	}
}

// markInterrupted records the shutdown reason on jobs still mid-stage so a
// later status query explains why they went back to their stage start.
func (d *Daemon) markInterrupted() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	reset, err := d.store.ResetStuckProcessing(ctx)
	if err != nil {
		d.logger.Warn("shutdown queue reset failed", logging.Error(err))
		return
	}
	if reset > 0 {
		d.logger.Info("returned in-flight jobs to their stage start",
			slog.Int64("count", reset),
			slog.String("reason", queue.ShutdownReason))
	}
}
