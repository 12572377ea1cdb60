// Package change manages the per-change directories of a project: listing
// active changes, scaffolding new ones, and moving finished changes into
// the archive with a stamped record.
package change

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/papapumpkin/parallax/internal/specdoc"
)

const (
	// DefaultChangesDir is the directory under the project root where
	// active changes live.
	DefaultChangesDir = "changes"
	// ArchiveDir is the subdirectory of the changes directory holding
	// archived changes.
	ArchiveDir = "archive"
	// DefaultSpecsDir is the directory under the project root holding the
	// canonical capability specs.
	DefaultSpecsDir = "specs"
	// RecordFile is the archive record written into an archived change.
	RecordFile = "archive.json"
)

var (
	// ErrNotFound indicates the named change does not exist.
	ErrNotFound = errors.New("change not found")
	// ErrExists indicates a change with that id already exists.
	ErrExists = errors.New("change already exists")
)

// Project locates the change and spec directories of one project. The
// directory names are relative to Root and usually come from config.
type Project struct {
	Root       string
	ChangesDir string
	SpecsDir   string
}

// NewProject returns a project rooted at root with the default layout.
func NewProject(root string) Project {
	return Project{Root: root, ChangesDir: DefaultChangesDir, SpecsDir: DefaultSpecsDir}
}

// Record stamps an archived change with where it came from and what the
// spec sync applied.
type Record struct {
	ID         string         `json:"id"` // random UUID for the archive event
	Change     string         `json:"change"`
	ArchivedAt time.Time      `json:"archived_at"`
	SpecCounts specdoc.Counts `json:"spec_counts"`
}

// Dir returns the directory of an active change.
func (p Project) Dir(id string) string {
	return filepath.Join(p.Root, p.ChangesDir, id)
}

// ArchivedDir returns the directory a change occupies once archived.
func (p Project) ArchivedDir(id string) string {
	return filepath.Join(p.Root, p.ChangesDir, ArchiveDir, id)
}

// SpecsRoot returns the canonical specs directory.
func (p Project) SpecsRoot() string {
	return filepath.Join(p.Root, p.SpecsDir)
}

// Exists reports whether an active change directory is present.
func (p Project) Exists(id string) bool {
	info, err := os.Stat(p.Dir(id))
	return err == nil && info.IsDir()
}

// List returns the ids of all active changes, sorted. The archive
// subdirectory is excluded.
func (p Project) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(p.Root, p.ChangesDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing changes: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == ArchiveDir {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// proposalSkeleton seeds a new change's proposal so the first workflow
// artifact has a recognizable shape to fill in.
const proposalSkeleton = `# Proposal: %s

## Why

## What Changes

## Impact
`

// Create scaffolds a new change directory with a proposal skeleton.
func (p Project) Create(id string) error {
	if p.Exists(id) {
		return fmt.Errorf("%w: %s", ErrExists, id)
	}
	dir := p.Dir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating change directory: %w", err)
	}
	proposal := fmt.Sprintf(proposalSkeleton, id)
	if err := os.WriteFile(filepath.Join(dir, "proposal.md"), []byte(proposal), 0o644); err != nil {
		return fmt.Errorf("writing proposal skeleton: %w", err)
	}
	return nil
}

// Archive moves a finished change under the archive subdirectory and
// stamps it with a record of the archive event. The spec counts come from
// the sync that ran (or zero counts when specs were skipped).
func (p Project) Archive(id string, counts specdoc.Counts) (*Record, error) {
	if !p.Exists(id) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	dest := p.ArchivedDir(id)
	if _, err := os.Stat(dest); err == nil {
		return nil, fmt.Errorf("%w: archive already holds %s", ErrExists, id)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	if err := os.Rename(p.Dir(id), dest); err != nil {
		return nil, fmt.Errorf("moving change to archive: %w", err)
	}

	rec := &Record{
		ID:         uuid.NewString(),
		Change:     id,
		ArchivedAt: time.Now().UTC(),
		SpecCounts: counts,
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dest, RecordFile), data, 0o644); err != nil {
		return nil, fmt.Errorf("writing archive record: %w", err)
	}
	return rec, nil
}

// LoadRecord reads the archive record of an archived change.
func (p Project) LoadRecord(id string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(p.ArchivedDir(id), RecordFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing archive record: %w", err)
	}
	return &rec, nil
}
