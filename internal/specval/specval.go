// Package specval performs structural validation of rebuilt capability
// specs before they are written. It checks document shape only — named
// requirement blocks with scenario sub-sections — never the meaning of
// the requirement text.
package specval

import (
	"fmt"
	"strings"

	"github.com/papapumpkin/parallax/internal/specdoc"
)

// Level classifies an issue's severity.
type Level string

const (
	// LevelError issues gate the sync: a spec with any error issue is
	// never written.
	LevelError Level = "error"
	// LevelWarning issues are reported but do not block writes.
	LevelWarning Level = "warning"
)

// scenarioHeader introduces a scenario sub-section inside a requirement.
const scenarioHeader = "#### Scenario:"

// Issue records one structural problem found in a spec document.
type Issue struct {
	Capability  string
	Requirement string // empty for document-level issues
	Level       Level
	Message     string
}

// String renders the issue for CLI diagnostics.
func (i Issue) String() string {
	where := i.Capability
	if i.Requirement != "" {
		where += " / " + i.Requirement
	}
	return fmt.Sprintf("[%s] %s: %s", i.Level, where, i.Message)
}

// HasErrors reports whether any issue in the list is error-level.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Level == LevelError {
			return true
		}
	}
	return false
}

// Checker is the structural validator used as the gate before spec writes.
type Checker struct{}

// Check validates rebuilt spec text for one capability and returns all
// issues found. A nil result means the document passed cleanly.
func (Checker) Check(capability, text string) []Issue {
	var issues []Issue
	issue := func(requirement string, level Level, format string, args ...any) {
		issues = append(issues, Issue{
			Capability:  capability,
			Requirement: requirement,
			Level:       level,
			Message:     fmt.Sprintf(format, args...),
		})
	}

	if strings.TrimSpace(text) == "" {
		issue("", LevelError, "document is empty")
		return issues
	}

	doc, err := specdoc.ParseDocument(text)
	if err != nil {
		issue("", LevelError, "parse failed: %v", err)
		return issues
	}

	if doc.Len() == 0 {
		issue("", LevelError, "document has no requirements")
		return issues
	}

	for _, req := range doc.Requirements() {
		if strings.TrimSpace(req.Body) == "" {
			issue(req.Name, LevelError, "requirement has no content")
			continue
		}
		if !strings.Contains(req.Body, scenarioHeader) {
			issue(req.Name, LevelError, "requirement has no scenarios")
		}
		if desc := descriptionOf(req.Body); !strings.Contains(desc, "SHALL") && !strings.Contains(desc, "MUST") {
			issue(req.Name, LevelWarning, "requirement text should use SHALL or MUST")
		}
	}

	return issues
}

// descriptionOf returns the requirement text before the first scenario.
func descriptionOf(body string) string {
	if i := strings.Index(body, scenarioHeader); i >= 0 {
		return body[:i]
	}
	return body
}
