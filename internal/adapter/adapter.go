// Package adapter formats workflow instructions for external editors.
// Each supported tool is an independent Formatter in a lookup table:
// given a generic instruction record, it produces the file path and
// content that tool expects. Adapters are pure formatting — callers own
// all filesystem writes.
package adapter

import (
	"fmt"
	"sort"
)

// Record is the tool-agnostic instruction payload.
type Record struct {
	ID          string
	Name        string
	Description string
	Category    string
	Tags        []string
	Body        string
}

// File is a formatted instruction file ready to be written.
type File struct {
	Path    string
	Content string
}

// Formatter renders a record into one tool's instruction file.
type Formatter interface {
	// ToolID is the identifier used to select the formatter.
	ToolID() string
	// ToolName is the human-readable tool name.
	ToolName() string
	// Format renders the record.
	Format(rec Record) (File, error)
}

// registry maps tool id → formatter. Populated by register calls in this
// package; there is no runtime registration.
var registry = make(map[string]Formatter)

func register(f Formatter) {
	registry[f.ToolID()] = f
}

// Lookup returns the formatter for a tool id.
func Lookup(toolID string) (Formatter, error) {
	f, ok := registry[toolID]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q (known: %v)", toolID, IDs())
	}
	return f, nil
}

// IDs returns all registered tool ids, sorted.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
