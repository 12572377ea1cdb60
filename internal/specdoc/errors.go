package specdoc

import (
	"errors"
	"fmt"
)

// Sentinel errors for parsing and merging.
var (
	// ErrMissingRequirement indicates a modify or rename referenced a
	// requirement name absent from the target document.
	ErrMissingRequirement = errors.New("requirement not found")
	// ErrDuplicateRequirement indicates two requirement blocks share a name.
	ErrDuplicateRequirement = errors.New("duplicate requirement")
	// ErrEmptyRequirementName indicates a requirement header with no name.
	ErrEmptyRequirementName = errors.New("requirement header has empty name")
	// ErrMalformedRename indicates a FROM line without a matching TO line,
	// or a TO line without a preceding FROM.
	ErrMalformedRename = errors.New("malformed rename entry")
	// ErrStrayContent indicates non-blank text inside a delta section that
	// belongs to no requirement block.
	ErrStrayContent = errors.New("content outside requirement block")
)

// ParseError records a syntax problem with its source line.
type ParseError struct {
	Line int
	Err  error
}

// Error returns a human-readable string with the line number.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErrf(line int, sentinel error, format string, args ...any) error {
	return &ParseError{Line: line, Err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)}
}
