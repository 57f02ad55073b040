package render

import (
	"strings"
	"testing"
)

func sampleSummary() Summary {
	return Summary{
		Files: []FileCount{
			{Path: "lib/a.py", Findings: 1},
			{Path: "lib/b.css", Findings: 4, Errors: 1},
			{Path: "lib/c.txt", Findings: 2},
		},
		Findings: 7,
		Errors:   1,
		Infos:    6,
	}
}

func TestSummary_Top(t *testing.T) {
	top := sampleSummary().Top(2)
	if len(top) != 2 {
		t.Fatalf("got %d files, want 2", len(top))
	}
	if top[0].Path != "lib/b.css" || top[1].Path != "lib/c.txt" {
		t.Errorf("unexpected order: %+v", top)
	}
}

func TestTerminal_Render(t *testing.T) {
	out := NewTerminal(MonoTheme(), 80).Render(sampleSummary())
	if !strings.Contains(out, "7 problems in 3 files (1 errors, 6 info)") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, " 1. lib/b.css") {
		t.Errorf("missing leaderboard:\n%s", out)
	}
}

func TestTerminal_RenderClean(t *testing.T) {
	out := NewTerminal(MonoTheme(), 80).Render(Summary{})
	if !strings.Contains(out, "no problems found") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPlain_Render(t *testing.T) {
	out := NewPlain().Render(sampleSummary())
	if !strings.HasPrefix(out, "SCOPE: 3 files, 7 findings (1 errors, 6 info)\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "\033[") {
		t.Error("plain output contains ANSI escape codes")
	}
}

func TestThemeByName(t *testing.T) {
	if ThemeByName("orca").Name != "orca" {
		t.Error("orca theme not selected")
	}
	if ThemeByName("nope").Name != "default" {
		t.Error("unknown names should fall back to default")
	}
}
