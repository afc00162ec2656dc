package workflow

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/stage"
	"clipforge/internal/testsupport"
)

type fakeHandler struct {
	name  string
	calls atomic.Int64
	exec  func(ctx context.Context, job *queue.Job, call int64) error
}

func (f *fakeHandler) Prepare(ctx context.Context, job *queue.Job) error {
	job.SetProgress(f.name, "started", 0)
	return nil
}

func (f *fakeHandler) Execute(ctx context.Context, job *queue.Job) error {
	call := f.calls.Add(1)
	if f.exec == nil {
		return nil
	}
	return f.exec(ctx, job, call)
}

func (f *fakeHandler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(f.name)
}

func succeedingSet() (StageSet, map[string]*fakeHandler) {
	handlers := map[string]*fakeHandler{
		"ingest":         {name: "ingest"},
		"transcribe":     {name: "transcribe"},
		"detect-scenes":  {name: "detect-scenes"},
		"rank":           {name: "rank"},
		"render":         {name: "render"},
		"generate-texts": {name: "generate-texts"},
		"export":         {name: "export"},
	}
	set := StageSet{
		Ingester:      handlers["ingest"],
		Transcriber:   handlers["transcribe"],
		SceneDetector: handlers["detect-scenes"],
		Ranker:        handlers["rank"],
		Renderer:      handlers["render"],
		TextGenerator: handlers["generate-texts"],
		Exporter:      handlers["export"],
	}
	return set, handlers
}

func newTestManager(t *testing.T, store *queue.Store, set StageSet) *Manager {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	manager := NewManager(cfg, store, nil, set)
	manager.pollInterval = 10 * time.Millisecond
	manager.errorRetry = 10 * time.Millisecond
	manager.retryBase = time.Millisecond
	return manager
}

func waitForStatus(t *testing.T, store *queue.Store, jobID string, want queue.Status) *queue.Job {
	t.Helper()
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetByJobID(context.Background(), jobID)
		if err != nil {
			t.Fatalf("GetByJobID: %v", err)
		}
		if job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	job, _ := store.GetByJobID(context.Background(), jobID)
	t.Fatalf("job %s never reached %s (last status %s, error %q)", jobID, want, job.Status, job.ErrorMessage)
	return nil
}

func TestPipelineCompletesJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "job-complete")

	set, handlers := succeedingSet()
	manager := newTestManager(t, store, set)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	done := waitForStatus(t, store, job.JobID, queue.StatusCompleted)
	if done.ErrorMessage != "" {
		t.Fatalf("completed job carries error: %q", done.ErrorMessage)
	}
	for name, handler := range handlers {
		if got := handler.calls.Load(); got != 1 {
			t.Errorf("stage %s executed %d times, want 1", name, got)
		}
	}
}

func TestRetryableFailureExhaustsBudget(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "job-exhaust")

	set, handlers := succeedingSet()
	handlers["ingest"].exec = func(ctx context.Context, job *queue.Job, call int64) error {
		return services.Wrap(services.ErrTransient, "ingest", "fetch", "provider unavailable", nil)
	}
	manager := newTestManager(t, store, set)
	manager.retryLimit = 2
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	failed := waitForStatus(t, store, job.JobID, queue.StatusFailed)
	if failed.ErrorMessage == "" {
		t.Fatal("failed job has no failure reason")
	}
	// Initial execution plus two retries.
	if got := handlers["ingest"].calls.Load(); got != 3 {
		t.Fatalf("ingest executed %d times, want 3", got)
	}
	if got := handlers["transcribe"].calls.Load(); got != 0 {
		t.Fatalf("downstream stage ran %d times after failure", got)
	}
}

func TestEventualSuccessAfterRetries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "job-eventual")

	set, handlers := succeedingSet()
	handlers["ingest"].exec = func(ctx context.Context, job *queue.Job, call int64) error {
		if call < 3 {
			return services.Wrap(services.ErrTransient, "ingest", "fetch", "flaky network", nil)
		}
		return nil
	}
	manager := newTestManager(t, store, set)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	done := waitForStatus(t, store, job.JobID, queue.StatusCompleted)
	if done.Status != queue.StatusCompleted {
		t.Fatalf("status = %s", done.Status)
	}
	if got := handlers["ingest"].calls.Load(); got != 3 {
		t.Fatalf("ingest executed %d times, want 3", got)
	}
}

func TestValidationFailureSkipsRetry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "job-validation")

	set, handlers := succeedingSet()
	handlers["ingest"].exec = func(ctx context.Context, job *queue.Job, call int64) error {
		return services.Wrap(services.ErrValidation, "ingest", "resolve source", "missing source", nil)
	}
	manager := newTestManager(t, store, set)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	waitForStatus(t, store, job.JobID, queue.StatusFailed)
	if got := handlers["ingest"].calls.Load(); got != 1 {
		t.Fatalf("validation failure retried: %d executions", got)
	}
}

func TestStartRequiresHandlers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	manager := NewManager(cfg, store, nil, StageSet{})
	if err := manager.Start(context.Background()); err == nil {
		manager.Stop()
		t.Fatal("expected error for missing handlers")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	set, _ := succeedingSet()
	manager := newTestManager(t, store, set)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	manager.Stop()
	manager.Stop()
	if manager.Running() {
		t.Fatal("manager still running after Stop")
	}
}
