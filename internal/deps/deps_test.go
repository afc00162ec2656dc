package deps

import (
	"testing"

	"clipforge/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "shell", Command: "sh"},
		{Name: "absent", Command: "clipforge-test-no-such-binary"},
		{Name: "blank", Command: "  "},
	})
	if len(statuses) != 3 {
		t.Fatalf("status count = %d", len(statuses))
	}
	if !statuses[0].Available {
		t.Errorf("sh reported unavailable: %+v", statuses[0])
	}
	if statuses[1].Available || statuses[1].Detail == "" {
		t.Errorf("missing binary not flagged: %+v", statuses[1])
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Errorf("blank command not flagged: %+v", statuses[2])
	}
}

func TestRequirementsFromConfig(t *testing.T) {
	cfg := config.Default()
	reqs := Requirements(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("requirement count = %d", len(reqs))
	}
	if reqs[0].Command != cfg.MediaTool.Binary || reqs[1].Command != cfg.MediaTool.ProbeBinary {
		t.Fatalf("commands not taken from config: %+v", reqs)
	}
	if Requirements(nil) != nil {
		t.Fatal("nil config should yield nil requirements")
	}
}
