package export

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/clipcache"
	"clipforge/internal/jobdata"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/stage"
	"clipforge/internal/testsupport"
)

type fakeCache struct {
	entries []clipcache.Entry
}

func (f *fakeCache) Store(entry clipcache.Entry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func seedExportable(t *testing.T, job *queue.Job, renderDir string) {
	t.Helper()
	videoPath := filepath.Join(renderDir, "clip-1.mp4")
	if err := os.WriteFile(videoPath, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := stage.SaveEnvelope(job, jobdata.StageRank, jobdata.Envelope{
		Clips: []jobdata.Clip{{ID: "clip-1", Start: 10, End: 40, Title: "Draft"}},
	}); err != nil {
		t.Fatalf("SaveEnvelope: %v", err)
	}
	if err := stage.SaveEnvelope(job, jobdata.StageRender, jobdata.Envelope{
		Renders: []jobdata.Render{{ClipID: "clip-1", VideoPath: videoPath}},
	}); err != nil {
		t.Fatalf("SaveEnvelope: %v", err)
	}
	if err := stage.SaveEnvelope(job, jobdata.StageGenerateTexts, jobdata.Envelope{
		Texts: []jobdata.ClipText{{ClipID: "clip-1", Title: "The Big Reveal"}},
	}); err != nil {
		t.Fatalf("SaveEnvelope: %v", err)
	}
}

func TestExecuteExportsAndCompletes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "job-1")
	seedExportable(t, job, t.TempDir())

	cache := &fakeCache{}
	handler := NewExporterWithDependencies(cfg, store, nil, cache)
	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if job.Status != queue.StatusCompleted {
		t.Fatalf("status = %s", job.Status)
	}
	var result jobdata.Result
	if err := json.Unmarshal([]byte(job.ResultJSON), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(result.Files) != 1 || len(result.Clips) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Clips[0].Title != "The Big Reveal" {
		t.Fatalf("generated title not applied: %+v", result.Clips[0])
	}
	if _, err := os.Stat(result.Files[0]); err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
	if len(cache.entries) != 1 || cache.entries[0].ClipID != "clip-1" {
		t.Fatalf("reprocess cache not seeded: %+v", cache.entries)
	}
	if cache.entries[0].Title != "The Big Reveal" {
		t.Fatalf("cache entry title: %+v", cache.entries[0])
	}
}

func TestExecuteRequiresRenders(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "job-2")

	handler := NewExporterWithDependencies(cfg, store, nil, &fakeCache{})
	err := handler.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExportName(t *testing.T) {
	clip := jobdata.Clip{ID: "abcdef123456", Title: "The Big Reveal!"}
	if got := exportName(clip); got != "the-big-reveal-abcdef12.mp4" {
		t.Fatalf("exportName = %q", got)
	}
	clip.Title = "   "
	if got := exportName(clip); got != "abcdef123456.mp4" {
		t.Fatalf("exportName fallback = %q", got)
	}
}
