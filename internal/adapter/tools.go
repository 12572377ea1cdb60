package adapter

import (
	"fmt"
	"path"
	"strings"
)

func init() {
	register(claudeFormatter{})
	register(cursorFormatter{})
	register(copilotFormatter{})
	register(agentsFormatter{})
}

// Managed-block markers let repeated configure runs replace a previous
// block instead of appending duplicates. Callers splice on these markers.
const (
	BlockStart = "<!-- parallax:start -->"
	BlockEnd   = "<!-- parallax:end -->"
)

// claudeFormatter targets CLAUDE.md at the project root.
type claudeFormatter struct{}

func (claudeFormatter) ToolID() string   { return "claude" }
func (claudeFormatter) ToolName() string { return "Claude Code" }

func (claudeFormatter) Format(rec Record) (File, error) {
	var sb strings.Builder
	sb.WriteString(BlockStart + "\n")
	fmt.Fprintf(&sb, "## %s\n\n", rec.Name)
	if rec.Description != "" {
		sb.WriteString(rec.Description + "\n\n")
	}
	sb.WriteString(rec.Body)
	if !strings.HasSuffix(rec.Body, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(BlockEnd + "\n")
	return File{Path: "CLAUDE.md", Content: sb.String()}, nil
}

// cursorFormatter targets Cursor's rules directory; rule files carry YAML
// frontmatter with a description and glob scope.
type cursorFormatter struct{}

func (cursorFormatter) ToolID() string   { return "cursor" }
func (cursorFormatter) ToolName() string { return "Cursor" }

func (cursorFormatter) Format(rec Record) (File, error) {
	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "description: %s\n", rec.Description)
	sb.WriteString("alwaysApply: true\n")
	sb.WriteString("---\n\n")
	sb.WriteString(rec.Body)
	if !strings.HasSuffix(rec.Body, "\n") {
		sb.WriteString("\n")
	}
	return File{
		Path:    path.Join(".cursor", "rules", rec.ID+".mdc"),
		Content: sb.String(),
	}, nil
}

// copilotFormatter targets GitHub Copilot's instruction files.
type copilotFormatter struct{}

func (copilotFormatter) ToolID() string   { return "copilot" }
func (copilotFormatter) ToolName() string { return "GitHub Copilot" }

func (copilotFormatter) Format(rec Record) (File, error) {
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString("applyTo: \"**\"\n")
	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "# %s\n\n", rec.Name)
	sb.WriteString(rec.Body)
	if !strings.HasSuffix(rec.Body, "\n") {
		sb.WriteString("\n")
	}
	return File{
		Path:    path.Join(".github", "instructions", rec.ID+".instructions.md"),
		Content: sb.String(),
	}, nil
}

// agentsFormatter targets the tool-neutral AGENTS.md convention.
type agentsFormatter struct{}

func (agentsFormatter) ToolID() string   { return "agents" }
func (agentsFormatter) ToolName() string { return "AGENTS.md" }

func (agentsFormatter) Format(rec Record) (File, error) {
	var sb strings.Builder
	sb.WriteString(BlockStart + "\n")
	fmt.Fprintf(&sb, "# %s\n\n", rec.Name)
	sb.WriteString(rec.Body)
	if !strings.HasSuffix(rec.Body, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(BlockEnd + "\n")
	return File{Path: "AGENTS.md", Content: sb.String()}, nil
}

// WorkflowRecord is the standard instruction record describing how agents
// should drive the parallax workflow in a project.
func WorkflowRecord() Record {
	return Record{
		ID:          "parallax-workflow",
		Name:        "Parallax Workflow",
		Description: "How to propose, spec, and land changes in this project",
		Category:    "workflow",
		Tags:        []string{"workflow", "specs"},
		Body: `Changes in this project move through a structured workflow:

1. Propose: create ` + "`changes/<id>/proposal.md`" + ` describing why and what.
2. Specify: write per-capability delta specs under ` + "`changes/<id>/specs/<capability>/spec.md`" + `
   using ADDED/MODIFIED/REMOVED/RENAMED requirement sections.
3. Design: record technical decisions in ` + "`changes/<id>/design.md`" + `.
4. Tasks: break the work down in ` + "`changes/<id>/tasks.md`" + `.
5. Implement, then archive: ` + "`parallax archive <id>`" + ` folds the deltas
   into the canonical specs under ` + "`specs/`" + ` and retires the change.

Run ` + "`parallax status <id>`" + ` to see which artifacts are ready or blocked.`,
	}
}
