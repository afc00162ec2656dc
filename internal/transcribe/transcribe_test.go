package transcribe

import (
	"context"
	"errors"
	"testing"

	"clipforge/internal/jobdata"
	"clipforge/internal/services"
	"clipforge/internal/stage"
	"clipforge/internal/testsupport"
)

type fakeClient struct {
	segments []jobdata.Segment
	err      error
	calls    int
}

func (f *fakeClient) Transcribe(ctx context.Context, audioPath string) ([]jobdata.Segment, error) {
	f.calls++
	return f.segments, f.err
}

func TestExecuteRecordsSortedTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "job-1")
	if err := stage.SaveEnvelope(job, jobdata.StageIngest, jobdata.Envelope{
		Media: &jobdata.MediaInfo{Path: "/tmp/src.mp4", AudioPath: "/tmp/audio.wav", DurationSeconds: 60},
	}); err != nil {
		t.Fatalf("SaveEnvelope: %v", err)
	}

	client := &fakeClient{segments: []jobdata.Segment{
		{Start: 5, End: 8, Text: "later"},
		{Start: 0, End: 2, Text: "earlier"},
	}}
	handler := NewTranscriberWithDependencies(cfg, store, nil, client)
	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	env, err := jobdata.Parse(job.DataJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(env.Transcript) != 2 || env.Transcript[0].Text != "earlier" {
		t.Fatalf("transcript not sorted: %+v", env.Transcript)
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 call, got %d", client.calls)
	}
}

func TestExecuteRequiresIngestedAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "job-2")

	handler := NewTranscriberWithDependencies(cfg, store, nil, &fakeClient{})
	err := handler.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExecutePropagatesProviderError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "job-3")
	if err := stage.SaveEnvelope(job, jobdata.StageIngest, jobdata.Envelope{
		Media: &jobdata.MediaInfo{Path: "/tmp/src.mp4", AudioPath: "/tmp/audio.wav"},
	}); err != nil {
		t.Fatalf("SaveEnvelope: %v", err)
	}

	wantErr := services.Wrap(services.ErrTransient, "transcriber", "transcribe", "boom", nil)
	handler := NewTranscriberWithDependencies(cfg, store, nil, &fakeClient{err: wantErr})
	err := handler.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}
