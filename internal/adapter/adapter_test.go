package adapter

import (
	"path"
	"strings"
	"testing"
)

func testRecord() Record {
	return Record{
		ID:          "parallax-workflow",
		Name:        "Parallax Workflow",
		Description: "How changes land in this project",
		Category:    "workflow",
		Tags:        []string{"workflow"},
		Body:        "Follow the change workflow.",
	}
}

func TestIDs(t *testing.T) {
	t.Parallel()

	want := []string{"agents", "claude", "copilot", "cursor"}
	got := IDs()
	if len(got) != len(want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IDs() = %v, want %v", got, want)
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	f, err := Lookup("claude")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if f.ToolName() != "Claude Code" {
		t.Errorf("ToolName = %q", f.ToolName())
	}

	if _, err := Lookup("emacs"); err == nil {
		t.Error("Lookup of unknown tool should fail")
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	rec := testRecord()

	tests := []struct {
		tool     string
		wantPath string
		contains []string
	}{
		{
			tool:     "claude",
			wantPath: "CLAUDE.md",
			contains: []string{BlockStart, BlockEnd, "## Parallax Workflow", rec.Body},
		},
		{
			tool:     "agents",
			wantPath: "AGENTS.md",
			contains: []string{BlockStart, BlockEnd, "# Parallax Workflow"},
		},
		{
			tool:     "cursor",
			wantPath: path.Join(".cursor", "rules", "parallax-workflow.mdc"),
			contains: []string{"---\n", "description: How changes land in this project", "alwaysApply: true"},
		},
		{
			tool:     "copilot",
			wantPath: path.Join(".github", "instructions", "parallax-workflow.instructions.md"),
			contains: []string{"applyTo: \"**\"", "# Parallax Workflow"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			t.Parallel()
			f, err := Lookup(tt.tool)
			if err != nil {
				t.Fatal(err)
			}
			file, err := f.Format(rec)
			if err != nil {
				t.Fatalf("Format: %v", err)
			}
			if file.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", file.Path, tt.wantPath)
			}
			for _, s := range tt.contains {
				if !strings.Contains(file.Content, s) {
					t.Errorf("content missing %q:\n%s", s, file.Content)
				}
			}
			if !strings.HasSuffix(file.Content, "\n") {
				t.Error("content should end with a newline")
			}
		})
	}
}

func TestFormat_BodyNewline(t *testing.T) {
	t.Parallel()

	// Bodies without a trailing newline still produce well-terminated
	// managed blocks.
	rec := testRecord()
	rec.Body = "no trailing newline"
	f, err := Lookup("claude")
	if err != nil {
		t.Fatal(err)
	}
	file, err := f.Format(rec)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(file.Content, "no trailing newline\n"+BlockEnd+"\n") {
		t.Errorf("content = %q", file.Content)
	}
}

func TestWorkflowRecord(t *testing.T) {
	t.Parallel()

	rec := WorkflowRecord()
	if rec.ID == "" || rec.Name == "" || rec.Body == "" {
		t.Errorf("record incomplete: %+v", rec)
	}
	// Every registered formatter must accept the standard record.
	for _, id := range IDs() {
		f, err := Lookup(id)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Format(rec); err != nil {
			t.Errorf("%s: Format: %v", id, err)
		}
	}
}
