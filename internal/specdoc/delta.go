package specdoc

import "strings"

// Delta section markers, matched by exact header text.
const (
	SectionAdded    = "## ADDED Requirements"
	SectionModified = "## MODIFIED Requirements"
	SectionRemoved  = "## REMOVED Requirements"
	SectionRenamed  = "## RENAMED Requirements"
)

// OpKind identifies a delta operation variant.
type OpKind int

// Delta operation kinds.
const (
	OpAdd OpKind = iota
	OpModify
	OpRemove
	OpRename
)

// String returns the lowercase operation name.
func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpModify:
		return "modify"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	}
	return "unknown"
}

// Operation is one requirement-level change captured from a delta spec.
type Operation struct {
	Kind OpKind
	Name string // target requirement name (Add/Modify/Remove)
	Body string // verbatim requirement body (Add/Modify)
	From string // original name (Rename)
	To   string // new name (Rename)
	Line int    // 1-based source line, for diagnostics
}

// Delta is a parsed delta spec: operations in document order.
type Delta struct {
	Ops []Operation
}

// Empty reports whether the delta carries no operations.
func (d *Delta) Empty() bool {
	return len(d.Ops) == 0
}

// deltaSection tracks which marker the parser is currently under.
type deltaSection int

const (
	secNone deltaSection = iota
	secAdded
	secModified
	secRemoved
	secRenamed
)

// ParseDelta parses delta-spec text into operations. The four section
// markers may appear in any subset and any order; a document with none of
// them parses to an empty delta, not an error. Text outside any section
// (typically a title and overview) is ignored.
func ParseDelta(text string) (*Delta, error) {
	p := &deltaParser{delta: &Delta{}}
	for i, line := range strings.Split(text, "\n") {
		if err := p.feed(i+1, line); err != nil {
			return nil, err
		}
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return p.delta, nil
}

type deltaParser struct {
	delta   *Delta
	section deltaSection

	// Current requirement block under ADDED / MODIFIED / RENAMED.
	blockName string
	blockLine int
	bodyLines []string
	inBlock   bool

	// Pending rename state under RENAMED.
	renameFrom string
	renameLine int
	hasFrom    bool
	renameTo   string // set once a TO completes the pair; trailing body may follow
	collecting bool   // accumulating a trailing body for renameTo
}

func (p *deltaParser) feed(line int, text string) error {
	if section, ok := sectionFor(text); ok {
		if err := p.flush(); err != nil {
			return err
		}
		p.section = section
		return nil
	}
	if strings.HasPrefix(text, "## ") {
		// Some other level-2 section ends the current one.
		if err := p.flush(); err != nil {
			return err
		}
		p.section = secNone
		return nil
	}

	switch p.section {
	case secAdded, secModified:
		return p.feedBlockSection(line, text)
	case secRemoved:
		return p.feedRemoved(line, text)
	case secRenamed:
		return p.feedRenamed(line, text)
	default:
		return nil
	}
}

func (p *deltaParser) feedBlockSection(line int, text string) error {
	if strings.HasPrefix(text, RequirementHeader) {
		if err := p.flushBlock(); err != nil {
			return err
		}
		name := strings.TrimSpace(strings.TrimPrefix(text, RequirementHeader))
		if name == "" {
			return parseErrf(line, ErrEmptyRequirementName, "%q", text)
		}
		p.inBlock = true
		p.blockName = name
		p.blockLine = line
		p.bodyLines = nil
		return nil
	}
	if p.inBlock {
		p.bodyLines = append(p.bodyLines, text)
		return nil
	}
	if strings.TrimSpace(text) != "" {
		return parseErrf(line, ErrStrayContent, "%q", strings.TrimSpace(text))
	}
	return nil
}

func (p *deltaParser) feedRemoved(line int, text string) error {
	if !strings.HasPrefix(text, RequirementHeader) {
		// Removal entries need only the name; any body text is ignored.
		return nil
	}
	name := strings.TrimSpace(strings.TrimPrefix(text, RequirementHeader))
	if name == "" {
		return parseErrf(line, ErrEmptyRequirementName, "%q", text)
	}
	p.delta.Ops = append(p.delta.Ops, Operation{Kind: OpRemove, Name: name, Line: line})
	return nil
}

func (p *deltaParser) feedRenamed(line int, text string) error {
	if name, ok := renameEntry(text, "FROM:"); ok {
		if err := p.flush(); err != nil {
			return err
		}
		if name == "" {
			return parseErrf(line, ErrMalformedRename, "FROM entry has empty name")
		}
		p.hasFrom = true
		p.renameFrom = name
		p.renameLine = line
		return nil
	}
	if name, ok := renameEntry(text, "TO:"); ok {
		if !p.hasFrom {
			return parseErrf(line, ErrMalformedRename, "TO entry without preceding FROM")
		}
		if name == "" {
			return parseErrf(line, ErrMalformedRename, "TO entry has empty name")
		}
		p.delta.Ops = append(p.delta.Ops, Operation{
			Kind: OpRename,
			From: p.renameFrom,
			To:   name,
			Line: p.renameLine,
		})
		p.hasFrom = false
		p.renameTo = name
		p.collecting = true
		p.bodyLines = nil
		return nil
	}
	if strings.HasPrefix(text, RequirementHeader) {
		// A full requirement block inside RENAMED replaces the body of the
		// named (post-rename) requirement.
		if err := p.flush(); err != nil {
			return err
		}
		p.section = secRenamed
		return p.feedBlockSection(line, text)
	}
	if p.inBlock || p.collecting {
		p.bodyLines = append(p.bodyLines, text)
	}
	return nil
}

// flush ends any in-progress block or rename, emitting its operation.
func (p *deltaParser) flush() error {
	if p.hasFrom {
		return parseErrf(p.renameLine, ErrMalformedRename, "FROM %q has no matching TO", p.renameFrom)
	}
	if p.collecting {
		body := strings.Join(p.bodyLines, "\n")
		if strings.TrimSpace(body) != "" {
			// A body following the TO line is a trailing modify for the
			// new name.
			p.delta.Ops = append(p.delta.Ops, Operation{
				Kind: OpModify,
				Name: p.renameTo,
				Body: body,
				Line: p.renameLine,
			})
		}
		p.collecting = false
		p.bodyLines = nil
	}
	return p.flushBlock()
}

func (p *deltaParser) flushBlock() error {
	if !p.inBlock {
		return nil
	}
	op := Operation{
		Name: p.blockName,
		Body: strings.Join(p.bodyLines, "\n"),
		Line: p.blockLine,
	}
	switch p.section {
	case secAdded:
		op.Kind = OpAdd
	default:
		op.Kind = OpModify
	}
	p.delta.Ops = append(p.delta.Ops, op)
	p.inBlock = false
	p.bodyLines = nil
	return nil
}

func (p *deltaParser) finish() error {
	return p.flush()
}

// sectionFor matches a line against the four delta section markers.
func sectionFor(line string) (deltaSection, bool) {
	switch strings.TrimRight(line, " \t\r") {
	case SectionAdded:
		return secAdded, true
	case SectionModified:
		return secModified, true
	case SectionRemoved:
		return secRemoved, true
	case SectionRenamed:
		return secRenamed, true
	}
	return secNone, false
}

// renameEntry parses a FROM: or TO: line, tolerating a leading list dash
// and backticks around the header reference:
//
//	- FROM: `### Requirement: Old Name`
//	TO: ### Requirement: New Name
func renameEntry(line, keyword string) (string, bool) {
	s := strings.TrimSpace(line)
	s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	if !strings.HasPrefix(s, keyword) {
		return "", false
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, keyword))
	s = strings.Trim(s, "`")
	s = strings.TrimSpace(strings.TrimPrefix(s, RequirementHeader))
	return strings.TrimSpace(s), true
}
