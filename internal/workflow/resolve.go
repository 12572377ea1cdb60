package workflow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// schemaFileNames are the candidate file names probed in each search
// directory, in preference order.
var schemaFileNames = []string{"workflow.toml", "workflow.yaml", "workflow.yml"}

// ResolveOptions controls where Resolve looks for a schema definition.
type ResolveOptions struct {
	// Path, when set, names an exact schema file; the search path is skipped
	// and a missing file is an error.
	Path string
	// ProjectRoot is the directory whose .parallax/ subdirectory is probed.
	ProjectRoot string
	// DisableUserConfig skips the per-user config directory. Used by tests
	// and by callers that want fully project-local behavior.
	DisableUserConfig bool
}

// Resolve locates, parses, and validates a workflow schema. The search
// order is: opts.Path, <ProjectRoot>/.parallax/workflow.{toml,yaml,yml},
// the same names under the user config dir's parallax/ subdirectory, and
// finally the built-in default schema.
func Resolve(opts ResolveOptions) (*Schema, error) {
	if opts.Path != "" {
		return loadFile(opts.Path)
	}

	var candidates []string
	if opts.ProjectRoot != "" {
		for _, name := range schemaFileNames {
			candidates = append(candidates, filepath.Join(opts.ProjectRoot, ".parallax", name))
		}
	}
	if !opts.DisableUserConfig {
		if userDir, err := os.UserConfigDir(); err == nil {
			for _, name := range schemaFileNames {
				candidates = append(candidates, filepath.Join(userDir, "parallax", name))
			}
		}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return loadFile(path)
	}

	return Default(), nil
}

// loadFile reads and decodes a single schema file, then validates it.
func loadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow schema: %w", err)
	}

	var schema Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if errs := Validate(&schema, filepath.Base(path)); len(errs) > 0 {
		return nil, joinValidationErrors(errs)
	}
	return &schema, nil
}

// Validate checks a schema for structural correctness: required fields,
// unique artifact ids, and dependencies that reference known ids. Cycle
// detection is left to graph construction.
func Validate(s *Schema, sourceFile string) []ValidationError {
	var errs []ValidationError

	if s.Name == "" {
		errs = append(errs, ValidationError{
			SourceFile: sourceFile,
			Field:      "name",
			Err:        fmt.Errorf("%w: name", ErrMissingField),
		})
	}

	ids := make(map[string]bool, len(s.Artifacts))
	for _, a := range s.Artifacts {
		if a.ID == "" {
			errs = append(errs, ValidationError{
				SourceFile: sourceFile,
				Field:      "id",
				Err:        fmt.Errorf("%w: id", ErrMissingField),
			})
			continue
		}
		if a.Output == "" {
			errs = append(errs, ValidationError{
				SourceFile: sourceFile,
				ArtifactID: a.ID,
				Field:      "output",
				Err:        fmt.Errorf("%w: output", ErrMissingField),
			})
		}
		if ids[a.ID] {
			errs = append(errs, ValidationError{
				SourceFile: sourceFile,
				ArtifactID: a.ID,
				Err:        fmt.Errorf("%w: %q", ErrDuplicateArtifact, a.ID),
			})
		}
		ids[a.ID] = true
	}

	for _, a := range s.Artifacts {
		for _, dep := range a.DependsOn {
			if !ids[dep] {
				errs = append(errs, ValidationError{
					SourceFile: sourceFile,
					ArtifactID: a.ID,
					Field:      "depends_on",
					Err:        fmt.Errorf("%w: %q depends on %q", ErrUnknownDependency, a.ID, dep),
				})
			}
		}
	}

	return errs
}

func joinValidationErrors(errs []ValidationError) error {
	joined := make([]error, len(errs))
	for i := range errs {
		joined[i] = &errs[i]
	}
	return errors.Join(joined...)
}
