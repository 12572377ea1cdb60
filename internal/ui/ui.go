// Package ui renders CLI output for status, validation, and sync results.
package ui

import (
	"fmt"
	"io"
	"sort"

	"github.com/papapumpkin/parallax/internal/specval"
	"github.com/papapumpkin/parallax/internal/sync"
)

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	yellow = "\033[33m"
	green  = "\033[32m"
	red    = "\033[31m"
	cyan   = "\033[36m"
)

// Printer writes styled output to a single destination, usually stderr.
type Printer struct {
	w     io.Writer
	Color bool
}

// New creates a printer writing to w with colors enabled.
func New(w io.Writer) *Printer {
	return &Printer{w: w, Color: true}
}

func (p *Printer) style(code, s string) string {
	if !p.Color {
		return s
	}
	return code + s + reset
}

// Header prints a bold section header.
func (p *Printer) Header(text string) {
	fmt.Fprintln(p.w, p.style(bold+cyan, text))
}

// Status prints the readiness partition of a change: completed artifacts,
// artifacts ready to start, and blocked artifacts with their unmet
// dependencies. outOfOrder lists completed artifacts whose prerequisites
// are missing; it is informational, not an error.
func (p *Printer) Status(done map[string]bool, order, ready []string, blocked map[string][]string, outOfOrder []string) {
	for _, id := range order {
		if done[id] {
			fmt.Fprintf(p.w, "  %s %s\n", p.style(green, "✓"), id)
		}
	}
	for _, id := range ready {
		fmt.Fprintf(p.w, "  %s %s %s\n", p.style(yellow, "▸"), id, p.style(dim, "(ready)"))
	}
	ids := make([]string, 0, len(blocked))
	for id := range blocked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(p.w, "  %s %s %s\n", p.style(red, "•"), id, p.style(dim, fmt.Sprintf("(blocked on %v)", blocked[id])))
	}
	for _, id := range outOfOrder {
		fmt.Fprintf(p.w, "  %s %s completed before its dependencies\n", p.style(yellow, "!"), id)
	}
}

// Complete prints the all-artifacts-done banner.
func (p *Printer) Complete() {
	fmt.Fprintln(p.w, p.style(green, "All workflow artifacts are complete."))
}

// Issues prints per-issue validator diagnostics.
func (p *Printer) Issues(issues []specval.Issue) {
	for _, issue := range issues {
		mark := p.style(yellow, "!")
		if issue.Level == specval.LevelError {
			mark = p.style(red, "✗")
		}
		fmt.Fprintf(p.w, "  %s %s\n", mark, issue)
	}
}

// SyncResult prints per-capability lines and the aggregate totals.
func (p *Printer) SyncResult(res *sync.Result) {
	for _, cr := range res.Capabilities {
		fmt.Fprintf(p.w, "  %s %s\n", p.style(green, "✓"), sync.Describe(cr))
	}
	fmt.Fprintf(p.w, "Total: %s\n", res.Totals)
}

// Aborted prints the batch-abort notice. Every abort path runs before the
// write phase, so the no-files-changed confirmation is always accurate.
func (p *Printer) Aborted(err error) {
	fmt.Fprintf(p.w, "%s %v\n", p.style(red, "Aborted:"), err)
	fmt.Fprintln(p.w, "No files were changed.")
}

// Errorf prints a styled error line.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintf(p.w, "%s "+format+"\n", append([]any{p.style(red, "✗")}, args...)...)
}

// Infof prints a plain informational line.
func (p *Printer) Infof(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}
