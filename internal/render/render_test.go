package render

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"clipforge/internal/jobdata"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/stage"
	"clipforge/internal/testsupport"
)

type fakeCutter struct {
	cuts  []string
	burns []string
}

func (f *fakeCutter) CutVertical(ctx context.Context, source string, start, end float64, dest string) error {
	f.cuts = append(f.cuts, dest)
	return os.WriteFile(dest, []byte("cut"), 0o644)
}

func (f *fakeCutter) BurnCaptions(ctx context.Context, source, captionPath, dest string) error {
	f.burns = append(f.burns, dest)
	return os.WriteFile(dest, []byte("burned"), 0o644)
}

func (f *fakeCutter) Available() (string, error) { return "/usr/bin/ffmpeg", nil }

func seedRenderable(t *testing.T, job *queue.Job) {
	t.Helper()
	if err := stage.SaveEnvelope(job, jobdata.StageIngest, jobdata.Envelope{
		Media: &jobdata.MediaInfo{Path: "/tmp/src.mp4", DurationSeconds: 120},
	}); err != nil {
		t.Fatalf("SaveEnvelope: %v", err)
	}
	if err := stage.SaveEnvelope(job, jobdata.StageTranscribe, jobdata.Envelope{
		Transcript: []jobdata.Segment{
			{Start: 10, End: 12, Text: "hello world"},
			{Start: 12, End: 14, Text: "goodbye now"},
		},
	}); err != nil {
		t.Fatalf("SaveEnvelope: %v", err)
	}
	if err := stage.SaveEnvelope(job, jobdata.StageDetectScenes, jobdata.Envelope{
		Scenes: []jobdata.Scene{{Start: 10, End: 40, Score: 1}},
	}); err != nil {
		t.Fatalf("SaveEnvelope: %v", err)
	}
	if err := stage.SaveEnvelope(job, jobdata.StageRank, jobdata.Envelope{
		Clips: []jobdata.Clip{{
			ID:    "clip-1",
			Start: 10,
			End:   40,
			Title: "Opening",
			Transcript: []jobdata.Segment{
				{Start: 10, End: 12, Text: "hello world"},
			},
		}},
	}); err != nil {
		t.Fatalf("SaveEnvelope: %v", err)
	}
}

func TestExecuteRendersClips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "job-1")
	seedRenderable(t, job)

	cutter := &fakeCutter{}
	handler := NewRendererWithDependencies(cfg, store, nil, cutter)
	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	env, err := jobdata.Parse(job.DataJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(env.Renders) != 1 {
		t.Fatalf("expected 1 render, got %+v", env.Renders)
	}
	render := env.Renders[0]
	if render.ClipID != "clip-1" || render.VideoPath == "" || render.CaptionPath == "" {
		t.Fatalf("incomplete render record: %+v", render)
	}

	data, err := os.ReadFile(render.CaptionPath)
	if err != nil {
		t.Fatalf("read captions: %v", err)
	}
	script := string(data)
	if !strings.Contains(script, "[Events]") {
		t.Fatalf("caption script missing events section:\n%s", script)
	}
	// Clip starts at 10s, so the 10s segment re-bases to zero.
	if !strings.Contains(script, "0:00:00.00,0:00:02.00") {
		t.Fatalf("caption timing not re-based:\n%s", script)
	}
	if len(cutter.cuts) != 1 || len(cutter.burns) != 1 {
		t.Fatalf("cut/burn counts: %d/%d", len(cutter.cuts), len(cutter.burns))
	}
}

func TestExecuteRejectsBadPreferences(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "job-2")
	seedRenderable(t, job)
	job.PreferencesJSON = `{"font_size": 60}`

	handler := NewRendererWithDependencies(cfg, store, nil, &fakeCutter{})
	err := handler.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExecuteRequiresClips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "job-3")
	if err := stage.SaveEnvelope(job, jobdata.StageIngest, jobdata.Envelope{
		Media: &jobdata.MediaInfo{Path: "/tmp/src.mp4"},
	}); err != nil {
		t.Fatalf("SaveEnvelope: %v", err)
	}

	handler := NewRendererWithDependencies(cfg, store, nil, &fakeCutter{})
	err := handler.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
