package workflow

import "errors"

// Sentinel errors for schema resolution and validation.
var (
	// ErrMissingField indicates a required schema field is empty.
	ErrMissingField = errors.New("required field missing")
	// ErrDuplicateArtifact indicates two or more artifacts share an id.
	ErrDuplicateArtifact = errors.New("duplicate artifact id")
	// ErrUnknownDependency indicates an artifact depends on an id that
	// does not exist in the schema.
	ErrUnknownDependency = errors.New("artifact depends on unknown artifact id")
	// ErrUnsupportedFormat indicates a schema file extension that is
	// neither TOML nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported schema file format")
)

// ValidationError records a schema validation problem with source context.
type ValidationError struct {
	SourceFile string
	ArtifactID string
	Field      string
	Err        error
}

// Error returns a human-readable string including source file and artifact
// context.
func (e *ValidationError) Error() string {
	if e.ArtifactID != "" {
		return e.SourceFile + ": artifact " + e.ArtifactID + ": " + e.Err.Error()
	}
	return e.SourceFile + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
