package jobdata

import "testing"

func TestParseBlankReturnsEmptyEnvelope(t *testing.T) {
	env, err := Parse("   ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if env.Media != nil || len(env.Transcript) != 0 || env.Result != nil {
		t.Fatalf("expected empty envelope, got %+v", env)
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	env := Envelope{
		Media: &MediaInfo{Path: "/tmp/source.mp4", DurationSeconds: 900},
		Transcript: []Segment{
			{Start: 0, End: 2, Text: "hello world"},
			{Start: 2, End: 4, Text: "goodbye now"},
		},
		Clips: []Clip{{ID: "clip-1", Start: 10, End: 40, Title: "Opening"}},
	}
	raw, err := env.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Media == nil || got.Media.Path != "/tmp/source.mp4" {
		t.Fatalf("media not preserved: %+v", got.Media)
	}
	if len(got.Transcript) != 2 || got.Transcript[1].Text != "goodbye now" {
		t.Fatalf("transcript not preserved: %+v", got.Transcript)
	}
	clip, ok := got.ClipByID("clip-1")
	if !ok || clip.Duration() != 30 {
		t.Fatalf("clip lookup failed: %+v ok=%v", clip, ok)
	}
}

func TestParseInvalidJSON(t *testing.T) {
	if _, err := Parse("{not json"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMergeWritesOwnedSection(t *testing.T) {
	var env Envelope
	err := env.Merge(StageIngest, Envelope{Media: &MediaInfo{Path: "/tmp/in.mp4"}})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if env.Media == nil || env.Media.Path != "/tmp/in.mp4" {
		t.Fatalf("media not merged: %+v", env.Media)
	}
}

func TestMergeRejectsForeignSection(t *testing.T) {
	var env Envelope
	err := env.Merge(StageTranscribe, Envelope{
		Transcript: []Segment{{Start: 0, End: 1, Text: "hi"}},
		Scenes:     []Scene{{Start: 0, End: 1}},
	})
	if err == nil {
		t.Fatal("expected rejection when writing another stage's section")
	}
}

func TestMergeRejectsEmptyOwnedSection(t *testing.T) {
	var env Envelope
	if err := env.Merge(StageRank, Envelope{}); err == nil {
		t.Fatal("expected error when owning stage produces nothing")
	}
}

func TestMergeUnknownStage(t *testing.T) {
	var env Envelope
	if err := env.Merge("polish", Envelope{}); err == nil {
		t.Fatal("expected error for unknown stage")
	}
}

func TestTranscriptSlice(t *testing.T) {
	env := Envelope{Transcript: []Segment{
		{Start: 0, End: 5, Text: "a"},
		{Start: 5, End: 10, Text: "b"},
		{Start: 10, End: 15, Text: "c"},
	}}
	got := env.TranscriptSlice(4, 11)
	if len(got) != 3 {
		t.Fatalf("expected 3 overlapping segments, got %d", len(got))
	}
	got = env.TranscriptSlice(5, 10)
	if len(got) != 1 || got[0].Text != "b" {
		t.Fatalf("expected exactly segment b, got %+v", got)
	}
}
