package scenedetect

import (
	"context"
	"math"
	"testing"

	"clipforge/internal/jobdata"
	"clipforge/internal/stage"
	"clipforge/internal/testsupport"
)

type fakeDetector struct {
	cuts []float64
	err  error
}

func (f *fakeDetector) DetectSceneChanges(ctx context.Context, source string, threshold float64) ([]float64, error) {
	return f.cuts, f.err
}

func (f *fakeDetector) Available() (string, error) { return "/usr/bin/ffmpeg", nil }

func TestBuildScenesFromCutsAndSilence(t *testing.T) {
	transcript := []jobdata.Segment{
		{Start: 0, End: 9, Text: "intro"},
		{Start: 12, End: 20, Text: "after a pause"},
	}
	scenes := buildScenes(30, []float64{20}, transcript)
	// Expect boundaries at 0, 10.5 (silence midpoint), 20 (cut), 30.
	if len(scenes) != 3 {
		t.Fatalf("expected 3 scenes, got %+v", scenes)
	}
	if math.Abs(scenes[0].End-10.5) > 0.01 {
		t.Fatalf("silence midpoint not used: %+v", scenes[0])
	}
	if scenes[2].Start != 20 || scenes[2].End != 30 {
		t.Fatalf("cut boundary lost: %+v", scenes[2])
	}
}

func TestBuildScenesDropsShort(t *testing.T) {
	scenes := buildScenes(10, []float64{0.5, 1.0, 9.5}, nil)
	for _, scene := range scenes {
		if scene.End-scene.Start < minSceneSeconds {
			t.Fatalf("short scene kept: %+v", scene)
		}
	}
}

func TestSpeechCoverage(t *testing.T) {
	transcript := []jobdata.Segment{{Start: 0, End: 5, Text: "talk"}}
	if got := speechCoverage(0, 10, transcript); math.Abs(got-0.5) > 0.001 {
		t.Fatalf("coverage = %g, want 0.5", got)
	}
	if got := speechCoverage(6, 10, transcript); got != 0 {
		t.Fatalf("coverage = %g, want 0", got)
	}
}

func TestExecuteStoresScenes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "job-1")
	if err := stage.SaveEnvelope(job, jobdata.StageIngest, jobdata.Envelope{
		Media: &jobdata.MediaInfo{Path: "/tmp/src.mp4", DurationSeconds: 60},
	}); err != nil {
		t.Fatalf("SaveEnvelope: %v", err)
	}
	if err := stage.SaveEnvelope(job, jobdata.StageTranscribe, jobdata.Envelope{
		Transcript: []jobdata.Segment{{Start: 0, End: 50, Text: "one long take"}},
	}); err != nil {
		t.Fatalf("SaveEnvelope: %v", err)
	}

	handler := NewSceneDetectorWithDependencies(cfg, store, nil, &fakeDetector{cuts: []float64{25}})
	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	env, err := jobdata.Parse(job.DataJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(env.Scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %+v", env.Scenes)
	}
}
