package queue_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"clipforge/internal/queue"
	"clipforge/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job, err := store.NewJob(ctx, queue.NewJobParams{JobID: "job-1", SourceURL: "https://videos.example/a.mp4"})
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	if job.ID == 0 {
		t.Fatal("expected internal ID to be assigned")
	}
	if job.Status != queue.StatusQueued {
		t.Fatalf("expected queued status, got %s", job.Status)
	}

	fetched, err := store.GetByJobID(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetByJobID failed: %v", err)
	}
	if fetched == nil || fetched.SourceURL != "https://videos.example/a.mp4" {
		t.Fatalf("unexpected fetched job: %#v", fetched)
	}
}

func TestNewJobRejectsDuplicateID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.NewJob(ctx, queue.NewJobParams{JobID: "dup"}); err != nil {
		t.Fatalf("first NewJob failed: %v", err)
	}
	_, err := store.NewJob(ctx, queue.NewJobParams{JobID: "dup"})
	if !errors.Is(err, queue.ErrDuplicateJob) {
		t.Fatalf("expected ErrDuplicateJob, got %v", err)
	}
}

func TestNewJobRequiresID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.NewJob(context.Background(), queue.NewJobParams{}); err == nil {
		t.Fatal("expected error for empty job id")
	}
}

func TestClaimNextIsFIFO(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.NewJob(t, store, "fifo-1")
	// SQLite timestamps have nanosecond precision, but keep ordering obvious.
	time.Sleep(5 * time.Millisecond)
	testsupport.NewJob(t, store, "fifo-2")

	claimed, err := store.ClaimNext(ctx, queue.StatusQueued, queue.StatusIngesting)
	if err != nil {
		t.Fatalf("ClaimNext failed: %v", err)
	}
	if claimed == nil || claimed.ID != first.ID {
		t.Fatalf("expected oldest job first, got %#v", claimed)
	}
	if claimed.Status != queue.StatusIngesting {
		t.Fatalf("expected processing status, got %s", claimed.Status)
	}
	if claimed.LastHeartbeat == nil {
		t.Fatal("expected heartbeat set on claim")
	}
}

func TestClaimNextSkipsBackoffWindow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "backoff-1")

	claimed, err := store.ClaimNext(ctx, queue.StatusQueued, queue.StatusIngesting)
	if err != nil || claimed == nil {
		t.Fatalf("initial claim failed: %v", err)
	}
	if err := store.ScheduleRetry(ctx, claimed, time.Hour, "simulated failure"); err != nil {
		t.Fatalf("ScheduleRetry failed: %v", err)
	}

	blocked, err := store.ClaimNext(ctx, queue.StatusQueued, queue.StatusIngesting)
	if err != nil {
		t.Fatalf("ClaimNext failed: %v", err)
	}
	if blocked != nil {
		t.Fatalf("expected no eligible job during backoff, got %#v", blocked)
	}

	updated, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Attempt != 1 {
		t.Fatalf("expected attempt 1, got %d", updated.Attempt)
	}
	if updated.Status != queue.StatusQueued {
		t.Fatalf("expected rollback to queued, got %s", updated.Status)
	}
}

func TestClaimNextReturnsNilWhenEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	claimed, err := store.ClaimNext(context.Background(), queue.StatusQueued, queue.StatusIngesting)
	if err != nil {
		t.Fatalf("ClaimNext failed: %v", err)
	}
	if claimed != nil {
		t.Fatalf("expected nil, got %#v", claimed)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		name     string
		initial  queue.Status
		expected queue.Status
	}{
		{"ingesting", queue.StatusIngesting, queue.StatusQueued},
		{"transcribing", queue.StatusTranscribing, queue.StatusIngested},
		{"detecting_scenes", queue.StatusDetectingScenes, queue.StatusTranscribed},
		{"rendering", queue.StatusRendering, queue.StatusRanked},
		{"exporting", queue.StatusExporting, queue.StatusTextsGenerated},
	}
	var ids []int64
	for i, tc := range cases {
		job := testsupport.NewJob(t, store, fmt.Sprintf("stuck-%d", i))
		job.Status = tc.initial
		if err := store.Update(ctx, job); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, job.ID)
	}

	count, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if int(count) != len(cases) {
		t.Fatalf("expected %d jobs reset, got %d", len(cases), count)
	}

	for idx, tc := range cases {
		updated, err := store.GetByID(ctx, ids[idx])
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if updated.Status != tc.expected {
			t.Fatalf("%s: expected status %s, got %s", tc.name, tc.expected, updated.Status)
		}
		if updated.LastHeartbeat != nil {
			t.Fatalf("%s: expected heartbeat cleared", tc.name)
		}
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "stale-1")
	claimed, err := store.ClaimNext(ctx, queue.StatusQueued, queue.StatusTranscribing)
	if err != nil || claimed == nil {
		t.Fatalf("claim failed: %v", err)
	}

	// Cutoff in the future makes the fresh heartbeat look expired.
	count, err := store.ReclaimStaleProcessing(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 job reclaimed, got %d", count)
	}

	updated, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Status != queue.StatusIngested {
		t.Fatalf("expected rollback to ingested, got %s", updated.Status)
	}
}

func TestRemoveIfActiveSkipsTerminalJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	active := testsupport.NewJob(t, store, "cancel-active")
	done := testsupport.NewJob(t, store, "cancel-done")
	done.SetCompleted(`{"clips":[]}`)
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	removed, err := store.RemoveIfActive(ctx, active.JobID)
	if err != nil {
		t.Fatalf("RemoveIfActive failed: %v", err)
	}
	if !removed {
		t.Fatal("expected active job to be removed")
	}

	removed, err = store.RemoveIfActive(ctx, done.JobID)
	if err != nil {
		t.Fatalf("RemoveIfActive failed: %v", err)
	}
	if removed {
		t.Fatal("expected terminal job to be preserved")
	}

	removed, err = store.RemoveIfActive(ctx, "unknown")
	if err != nil {
		t.Fatalf("RemoveIfActive failed: %v", err)
	}
	if removed {
		t.Fatal("expected unknown job to report false")
	}
}

func TestCleanupRetention(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()

	old := testsupport.NewJob(t, store, "retention-old")
	old.SetCompleted("{}")
	past := time.Now().UTC().Add(-48 * time.Hour)
	old.FinishedAt = &past
	if err := store.Update(ctx, old); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fresh := testsupport.NewJob(t, store, "retention-fresh")
	fresh.SetCompleted("{}")
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	failed := testsupport.NewJob(t, store, "retention-failed")
	failed.SetFailed("boom")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	removed, err := store.Cleanup(ctx, queue.RetentionPolicy{
		CompletedMaxAge: 24 * time.Hour,
		MaxCompleted:    100,
		FailedMaxAge:    7 * 24 * time.Hour,
		MaxFailed:       200,
	})
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 job evicted, got %d", removed)
	}

	if job, _ := store.GetByJobID(ctx, "retention-old"); job != nil {
		t.Fatal("expected stale completed job to be evicted")
	}
	if job, _ := store.GetByJobID(ctx, "retention-fresh"); job == nil {
		t.Fatal("expected fresh completed job to survive")
	}
	if job, _ := store.GetByJobID(ctx, "retention-failed"); job == nil {
		t.Fatal("expected recent failed job to survive")
	}
}

func TestCleanupCountCap(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		job := testsupport.NewJob(t, store, fmt.Sprintf("cap-%d", i))
		job.SetCompleted("{}")
		finished := time.Now().UTC().Add(time.Duration(i) * time.Second)
		job.FinishedAt = &finished
		if err := store.Update(ctx, job); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	removed, err := store.Cleanup(ctx, queue.RetentionPolicy{
		CompletedMaxAge: 24 * time.Hour,
		MaxCompleted:    2,
	})
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 jobs evicted, got %d", removed)
	}

	jobs, err := store.List(ctx, queue.StatusCompleted)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 completed jobs, got %d", len(jobs))
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewJob(t, store, "health-1")
	working := testsupport.NewJob(t, store, "health-2")
	working.Status = queue.StatusRendering
	if err := store.Update(ctx, working); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	failed := testsupport.NewJob(t, store, "health-3")
	failed.SetFailed("boom")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 3 || health.Queued != 1 || health.Processing != 1 || health.Failed != 1 {
		t.Fatalf("unexpected health summary: %#v", health)
	}
}
