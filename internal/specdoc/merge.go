package specdoc

import (
	"fmt"
	"strings"
)

// Counts tallies requirement-level changes applied by a merge: one
// increment per operation applied, not per line changed.
type Counts struct {
	Added    int
	Modified int
	Removed  int
	Renamed  int
}

// Total returns the sum of all counters.
func (c Counts) Total() int {
	return c.Added + c.Modified + c.Removed + c.Renamed
}

// Add accumulates another set of counters into c.
func (c *Counts) Add(other Counts) {
	c.Added += other.Added
	c.Modified += other.Modified
	c.Removed += other.Removed
	c.Renamed += other.Renamed
}

// String renders the counters in the "+a ~m -r →n" summary form used by
// the CLI, omitting zero entries.
func (c Counts) String() string {
	var parts []string
	if c.Added > 0 {
		parts = append(parts, fmt.Sprintf("+%d", c.Added))
	}
	if c.Modified > 0 {
		parts = append(parts, fmt.Sprintf("~%d", c.Modified))
	}
	if c.Removed > 0 {
		parts = append(parts, fmt.Sprintf("-%d", c.Removed))
	}
	if c.Renamed > 0 {
		parts = append(parts, fmt.Sprintf("→%d", c.Renamed))
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, " ")
}

// Apply merges a delta's operations into the document in a fixed pass
// order — rename, remove, add, modify — so that later passes always
// reference final requirement names. The document is mutated in place;
// on error it may be partially updated and must be discarded.
//
// Adds on an existing name overwrite the body in place and count as
// modified. Removes of absent names are no-ops. Modifies and renames of
// absent names fail with ErrMissingRequirement.
func (d *Document) Apply(delta *Delta) (Counts, error) {
	var counts Counts

	for _, op := range delta.Ops {
		if op.Kind != OpRename {
			continue
		}
		applied, err := d.rename(op.From, op.To)
		if err != nil {
			return counts, err
		}
		if applied {
			counts.Renamed++
		}
	}

	for _, op := range delta.Ops {
		if op.Kind != OpRemove {
			continue
		}
		if d.remove(op.Name) {
			counts.Removed++
		}
	}

	for _, op := range delta.Ops {
		if op.Kind != OpAdd {
			continue
		}
		if _, exists := d.index[op.Name]; exists {
			// ADDED on an existing requirement behaves as MODIFIED.
			d.replaceBody(op.Name, op.Body)
			counts.Modified++
		} else {
			d.append(op.Name, op.Body)
			counts.Added++
		}
	}

	for _, op := range delta.Ops {
		if op.Kind != OpModify {
			continue
		}
		if _, exists := d.index[op.Name]; !exists {
			return counts, fmt.Errorf("%w: cannot modify %q", ErrMissingRequirement, op.Name)
		}
		d.replaceBody(op.Name, op.Body)
		counts.Modified++
	}

	return counts, nil
}

// rename re-keys a block under a new name, keeping its position and body.
// A rename whose source is gone but whose target exists has already been
// applied by an earlier run and is a no-op, which keeps re-running a
// delta against its own output stable.
func (d *Document) rename(from, to string) (bool, error) {
	i, ok := d.index[from]
	if !ok {
		if _, done := d.index[to]; done {
			return false, nil
		}
		return false, fmt.Errorf("%w: cannot rename %q", ErrMissingRequirement, from)
	}
	if _, taken := d.index[to]; taken && to != from {
		return false, fmt.Errorf("%w: rename target %q already exists", ErrDuplicateRequirement, to)
	}
	b := d.blocks[i]
	_, body, hadBody := strings.Cut(b.raw, "\n")
	b.name = to
	b.raw = RequirementHeader + " " + to
	if hadBody {
		b.raw += "\n" + body
	}
	delete(d.index, from)
	d.index[to] = i
	return true, nil
}

// remove deletes the named block, reporting whether it existed.
func (d *Document) remove(name string) bool {
	i, ok := d.index[name]
	if !ok {
		return false
	}
	d.blocks = append(d.blocks[:i], d.blocks[i+1:]...)
	delete(d.index, name)
	for n, j := range d.index {
		if j > i {
			d.index[n] = j - 1
		}
	}
	return true
}

// replaceBody overwrites the named block's body in place, preserving its
// position in the document.
func (d *Document) replaceBody(name string, body string) {
	b := d.blocks[d.index[name]]
	b.raw = renderBlock(b.name, body)
}

// append inserts a new block at the end of the ordered map, padding the
// junction so the new header starts on its own line with a blank line
// before it.
func (d *Document) append(name, body string) {
	b := &block{name: name, raw: renderBlock(name, body)}
	switch tail := d.tail(); {
	case tail == "" || strings.HasSuffix(tail, "\n\n"):
		// Nothing to pad.
	case strings.HasSuffix(tail, "\n"):
		b.pad = "\n"
	default:
		b.pad = "\n\n"
	}
	d.index[name] = len(d.blocks)
	d.blocks = append(d.blocks, b)
}

// renderBlock produces the raw segment for a freshly written block. The
// body is normalized to end with a single blank line so neighboring
// blocks stay separated; bodies arriving from delta parsing keep their
// interior bytes verbatim.
func renderBlock(name, body string) string {
	body = strings.TrimRight(body, "\n")
	if body == "" {
		return RequirementHeader + " " + name + "\n"
	}
	return RequirementHeader + " " + name + "\n" + body + "\n\n"
}
