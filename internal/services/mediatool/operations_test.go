package mediatool

import "testing"

func TestParseSceneTimes(t *testing.T) {
	output := `frame:0 pts:12800 pts_time:0.512
lavfi.scene_score=0.53
frame:1 pts:204800 pts_time:8.192
lavfi.scene_score=0.61
garbage line
frame:2 pts:bogus pts_time:notanumber`
	times := parseSceneTimes(output)
	if len(times) != 2 {
		t.Fatalf("expected 2 times, got %v", times)
	}
	if times[0] != 0.512 || times[1] != 8.192 {
		t.Fatalf("unexpected times: %v", times)
	}
}

func TestParseSceneTimesEmpty(t *testing.T) {
	if got := parseSceneTimes("no matches here"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestEscapeFilterPath(t *testing.T) {
	cases := map[string]string{
		"/tmp/captions.ass":  "/tmp/captions.ass",
		"C:\\clips\\out.ass": `C\:\\clips\\out.ass`,
		"/tmp/it's.ass":      `/tmp/it\'s.ass`,
	}
	for in, want := range cases {
		if got := escapeFilterPath(in); got != want {
			t.Errorf("escapeFilterPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(12.5); got != "12.500" {
		t.Fatalf("formatSeconds = %q", got)
	}
}
