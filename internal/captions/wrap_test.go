package captions

import (
	"strings"
	"testing"
)

func TestWrapShortTextUnchanged(t *testing.T) {
	got := wrapText("hello world", 20)
	if len(got) != 1 || got[0] != "hello world" {
		t.Fatalf("wrapText = %v", got)
	}
}

func TestWrapGreedyTwoLines(t *testing.T) {
	got := wrapText("the quick brown fox jumps", 20)
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %v", got)
	}
	for _, line := range got {
		if len(line) > 20 {
			t.Errorf("line %q exceeds limit", line)
		}
	}
}

func TestWrapCollapsesToTwoBalancedLines(t *testing.T) {
	text := "one two three four five six seven eight nine ten eleven twelve"
	got := wrapText(text, 20)
	if len(got) != 2 {
		t.Fatalf("expected exactly 2 lines, got %d: %v", len(got), got)
	}
	if strings.Join(got, " ") != text {
		t.Fatalf("words lost or reordered: %v", got)
	}
}

func TestWrapNeverSplitsWords(t *testing.T) {
	got := wrapText("supercalifragilisticexpialidocious is long", 20)
	joined := strings.Join(got, " ")
	if !strings.Contains(joined, "supercalifragilisticexpialidocious") {
		t.Fatalf("word was split: %v", got)
	}
}

func TestWrapEmpty(t *testing.T) {
	if got := wrapText("   ", 20); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
