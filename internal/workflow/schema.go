// Package workflow defines the artifact workflow schema and the layered
// resolver that locates a schema definition for a project. A schema names
// the workflow and declares its artifacts: each artifact has an id, the
// ids it depends on, and an output path pattern describing where its file
// (or files) land inside a change directory.
package workflow

// ArtifactDef declares one unit of work in the workflow.
type ArtifactDef struct {
	ID          string   `toml:"id" yaml:"id"`
	Description string   `toml:"description,omitempty" yaml:"description,omitempty"`
	DependsOn   []string `toml:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	// Output is either a single relative file path (e.g. "proposal.md")
	// or a directory-glob pattern with one fixed directory segment and a
	// wildcard subpath (e.g. "specs/*/spec.md").
	Output string `toml:"output" yaml:"output"`
}

// Schema is a complete workflow definition. Artifact order is significant:
// readiness queries report artifacts in declaration order.
type Schema struct {
	Name      string        `toml:"name" yaml:"name"`
	Artifacts []ArtifactDef `toml:"artifacts" yaml:"artifacts"`
}

// Artifact returns the definition with the given id, or nil.
func (s *Schema) Artifact(id string) *ArtifactDef {
	for i := range s.Artifacts {
		if s.Artifacts[i].ID == id {
			return &s.Artifacts[i]
		}
	}
	return nil
}

// IDs returns artifact ids in declaration order.
func (s *Schema) IDs() []string {
	ids := make([]string, len(s.Artifacts))
	for i, a := range s.Artifacts {
		ids[i] = a.ID
	}
	return ids
}

// Default returns the built-in workflow used when no project or user
// schema file is found: propose, then specs and design in parallel, then
// tasks, then implementation tracked through the per-capability delta specs.
func Default() *Schema {
	return &Schema{
		Name: "default",
		Artifacts: []ArtifactDef{
			{
				ID:          "proposal",
				Description: "Why the change is needed and what it covers",
				Output:      "proposal.md",
			},
			{
				ID:          "specs",
				Description: "Per-capability delta specs for the change",
				DependsOn:   []string{"proposal"},
				Output:      "specs/*/spec.md",
			},
			{
				ID:          "design",
				Description: "Technical design decisions",
				DependsOn:   []string{"proposal"},
				Output:      "design.md",
			},
			{
				ID:          "tasks",
				Description: "Implementation task list",
				DependsOn:   []string{"specs", "design"},
				Output:      "tasks.md",
			},
		},
	}
}
