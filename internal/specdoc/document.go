// Package specdoc parses and rebuilds structured specification documents.
// A main (canonical) spec is a free-form preamble followed by requirement
// blocks introduced by "### Requirement: <Name>" headers. A delta spec
// groups requirement-level operations under ADDED / MODIFIED / REMOVED /
// RENAMED section headers. The merge engine applies a parsed delta onto a
// parsed main document, preserving untouched blocks byte for byte.
package specdoc

import (
	"fmt"
	"strings"
)

// RequirementHeader introduces a requirement block in both main and delta
// documents.
const RequirementHeader = "### Requirement:"

// RequirementBlock is a read-only view of one named requirement.
type RequirementBlock struct {
	Name string
	// Body is the verbatim text following the header line, up to but
	// excluding the next requirement header or section boundary.
	Body string
}

// block stores a requirement as the exact byte segment it occupies in the
// source text: the header line plus everything up to the next block. Raw
// segments make untouched-block preservation trivial — serialization is
// plain concatenation.
type block struct {
	name string
	raw  string
	// pad holds separator bytes written before raw for blocks appended at
	// merge time, so rewriting the body later cannot lose the junction.
	// Parsed blocks carry their separation inside the previous block's raw
	// segment and leave pad empty.
	pad string
}

func (b *block) view() RequirementBlock {
	_, body, _ := strings.Cut(b.raw, "\n")
	return RequirementBlock{Name: b.name, Body: body}
}

// Document is a parsed main spec: a verbatim preamble plus an ordered map
// of requirement blocks.
type Document struct {
	// Preamble is everything before the first requirement header,
	// preserved verbatim and never reflowed.
	Preamble string

	blocks []*block
	index  map[string]int
}

// ParseDocument parses main-spec text. Requirement names must be unique.
func ParseDocument(text string) (*Document, error) {
	doc := &Document{index: make(map[string]int)}

	starts := headerOffsets(text)
	if len(starts) == 0 {
		doc.Preamble = text
		return doc, nil
	}

	doc.Preamble = text[:starts[0]]
	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		raw := text[start:end]
		name, err := headerName(raw, lineAt(text, start))
		if err != nil {
			return nil, err
		}
		if _, exists := doc.index[name]; exists {
			return nil, parseErrf(lineAt(text, start), ErrDuplicateRequirement, "%q", name)
		}
		doc.index[name] = len(doc.blocks)
		doc.blocks = append(doc.blocks, &block{name: name, raw: raw})
	}
	return doc, nil
}

// NewDocument synthesizes an empty main document for a capability that has
// no canonical spec yet, so a first-time capability can be created purely
// from Add operations.
func NewDocument(capability string) *Document {
	return &Document{
		Preamble: fmt.Sprintf("# %s Specification\n\n## Requirements\n", capability),
		index:    make(map[string]int),
	}
}

// Len returns the number of requirement blocks.
func (d *Document) Len() int {
	return len(d.blocks)
}

// Names returns requirement names in document order.
func (d *Document) Names() []string {
	names := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		names[i] = b.name
	}
	return names
}

// Requirement returns the named block's view and whether it exists.
func (d *Document) Requirement(name string) (RequirementBlock, bool) {
	i, ok := d.index[name]
	if !ok {
		return RequirementBlock{}, false
	}
	return d.blocks[i].view(), true
}

// Requirements returns all blocks in document order.
func (d *Document) Requirements() []RequirementBlock {
	out := make([]RequirementBlock, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = b.view()
	}
	return out
}

// Text serializes the document: preamble followed by every requirement
// block in map order. Blocks untouched since parsing reproduce their
// original bytes exactly.
func (d *Document) Text() string {
	var sb strings.Builder
	sb.WriteString(d.Preamble)
	for _, b := range d.blocks {
		sb.WriteString(b.pad)
		sb.WriteString(b.raw)
	}
	return sb.String()
}

// tail returns the final bytes of the document content as built so far,
// used to decide how much separation an appended block needs.
func (d *Document) tail() string {
	if len(d.blocks) > 0 {
		return d.blocks[len(d.blocks)-1].raw
	}
	return d.Preamble
}

// headerOffsets returns the byte offsets of every line that begins a
// requirement block.
func headerOffsets(text string) []int {
	var starts []int
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		if strings.HasPrefix(line, RequirementHeader) {
			starts = append(starts, offset)
		}
		offset += len(line)
	}
	return starts
}

// headerName extracts the requirement name from a block's header line.
func headerName(raw string, line int) (string, error) {
	header, _, _ := strings.Cut(raw, "\n")
	name := strings.TrimSpace(strings.TrimPrefix(header, RequirementHeader))
	if name == "" {
		return "", parseErrf(line, ErrEmptyRequirementName, "%q", header)
	}
	return name, nil
}

// lineAt returns the 1-based line number of the given byte offset.
func lineAt(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}
