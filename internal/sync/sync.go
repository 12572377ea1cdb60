// Package sync folds a change's per-capability delta specs into the
// canonical capability specs. Execution is two-phase: prepare and
// validate are free of side effects and abort the whole batch on any
// failure; only after every capability has prepared and validated cleanly
// does the write phase touch the filesystem. Partial success across
// capabilities is never observable.
package sync

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/papapumpkin/parallax/internal/specdoc"
	"github.com/papapumpkin/parallax/internal/specval"
)

// SpecFileName is the spec file name inside each capability directory.
const SpecFileName = "spec.md"

// ErrNoDeltas indicates a change has no delta specs to sync. Callers
// treat this as a terminal, non-error state for the overall workflow.
var ErrNoDeltas = errors.New("no delta specs found")

// SpecUpdate pairs one capability's delta spec with its canonical target.
type SpecUpdate struct {
	Capability    string
	DeltaPath     string
	TargetPath    string
	TargetExisted bool
}

// Validator is the structural gate applied to every rebuilt spec before
// any file is written.
type Validator interface {
	Check(capability, text string) []specval.Issue
}

// Options controls a sync run.
type Options struct {
	SkipValidate bool // skip the structural gate
	DryRun       bool // prepare and validate, but never write
}

// CapabilityResult reports the outcome for one capability.
type CapabilityResult struct {
	Capability string
	Counts     specdoc.Counts
	Created    bool // target spec did not exist before this sync
}

// Result aggregates a completed (or dry) sync run.
type Result struct {
	Capabilities []CapabilityResult
	Totals       specdoc.Counts
	Written      []string // target paths written, empty on dry runs
}

// ValidationFailure aborts a batch whose rebuilt specs failed the
// structural gate. It carries every issue from every failing capability.
type ValidationFailure struct {
	Issues []specval.Issue
}

// Error summarizes the failure; per-issue diagnostics are in Issues.
func (e *ValidationFailure) Error() string {
	caps := make(map[string]bool)
	for _, i := range e.Issues {
		caps[i.Capability] = true
	}
	return fmt.Sprintf("spec validation failed: %d issue(s) across %d capability(ies)", len(e.Issues), len(caps))
}

// WriteFailure reports a write-phase error. The write phase has no
// rollback: targets already written stay written, and the caller must
// surface both lists.
type WriteFailure struct {
	Written []string // targets persisted before the failure
	Failed  string   // target that could not be written
	Err     error
}

// Error lists the failed target and how many writes preceded it.
func (e *WriteFailure) Error() string {
	return fmt.Sprintf("writing %s after %d file(s) were already written: %v", e.Failed, len(e.Written), e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *WriteFailure) Unwrap() error {
	return e.Err
}

// FindSpecUpdates discovers the delta specs under changeDir/specs and
// builds one SpecUpdate per capability, pointing at the corresponding
// path under specsRoot. Capabilities are returned in sorted order so runs
// are deterministic. Returns ErrNoDeltas when the change carries none.
func FindSpecUpdates(changeDir, specsRoot string) ([]SpecUpdate, error) {
	deltaRoot := filepath.Join(changeDir, "specs")
	entries, err := os.ReadDir(deltaRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoDeltas
		}
		return nil, fmt.Errorf("reading delta spec directory: %w", err)
	}

	var updates []SpecUpdate
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		deltaPath := filepath.Join(deltaRoot, e.Name(), SpecFileName)
		if _, err := os.Stat(deltaPath); err != nil {
			continue
		}
		targetPath := filepath.Join(specsRoot, e.Name(), SpecFileName)
		_, statErr := os.Stat(targetPath)
		updates = append(updates, SpecUpdate{
			Capability:    e.Name(),
			DeltaPath:     deltaPath,
			TargetPath:    targetPath,
			TargetExisted: statErr == nil,
		})
	}
	if len(updates) == 0 {
		return nil, ErrNoDeltas
	}
	sort.Slice(updates, func(i, j int) bool {
		return updates[i].Capability < updates[j].Capability
	})
	return updates, nil
}

// Syncer drives the prepare → validate → write protocol.
type Syncer struct {
	Validator Validator
}

// New returns a Syncer gated by the standard structural checker.
func New() *Syncer {
	return &Syncer{Validator: specval.Checker{}}
}

// rebuiltSpec is a prepared capability waiting on the gate.
type rebuiltSpec struct {
	update SpecUpdate
	text   string
	counts specdoc.Counts
}

// Run executes the full sync for the given updates. Any parse, merge, or
// validation error aborts before a single byte is written.
func (s *Syncer) Run(updates []SpecUpdate, opts Options) (*Result, error) {
	// Prepare phase: pure, no writes.
	prepared := make([]rebuiltSpec, 0, len(updates))
	for _, u := range updates {
		r, err := s.prepare(u)
		if err != nil {
			return nil, fmt.Errorf("capability %s: %w", u.Capability, err)
		}
		prepared = append(prepared, r)
	}

	// Validate phase: collect issues across the whole batch.
	if !opts.SkipValidate {
		var failing []specval.Issue
		for _, r := range prepared {
			issues := s.Validator.Check(r.update.Capability, r.text)
			for _, issue := range issues {
				if issue.Level == specval.LevelError {
					failing = append(failing, issue)
				}
			}
		}
		if len(failing) > 0 {
			return nil, &ValidationFailure{Issues: failing}
		}
	}

	result := &Result{}
	for _, r := range prepared {
		result.Capabilities = append(result.Capabilities, CapabilityResult{
			Capability: r.update.Capability,
			Counts:     r.counts,
			Created:    !r.update.TargetExisted,
		})
		result.Totals.Add(r.counts)
	}
	if opts.DryRun {
		return result, nil
	}

	// Write phase: file by file, no rollback. A failure partway through
	// leaves earlier targets written and is fatal.
	for _, r := range prepared {
		if err := writeSpec(r.update.TargetPath, r.text); err != nil {
			return nil, &WriteFailure{Written: result.Written, Failed: r.update.TargetPath, Err: err}
		}
		result.Written = append(result.Written, r.update.TargetPath)
	}
	return result, nil
}

// Check runs the prepare phase and the structural gate without writing
// anything, returning every issue found — warnings included. A parse or
// merge error is returned as-is; issues alone never produce an error.
func (s *Syncer) Check(updates []SpecUpdate) ([]specval.Issue, error) {
	var all []specval.Issue
	for _, u := range updates {
		r, err := s.prepare(u)
		if err != nil {
			return nil, fmt.Errorf("capability %s: %w", u.Capability, err)
		}
		all = append(all, s.Validator.Check(u.Capability, r.text)...)
	}
	return all, nil
}

// prepare parses the delta and target, applies the merge, and returns the
// rebuilt text without touching the filesystem.
func (s *Syncer) prepare(u SpecUpdate) (rebuiltSpec, error) {
	deltaData, err := os.ReadFile(u.DeltaPath)
	if err != nil {
		return rebuiltSpec{}, fmt.Errorf("reading delta spec: %w", err)
	}
	delta, err := specdoc.ParseDelta(string(deltaData))
	if err != nil {
		return rebuiltSpec{}, fmt.Errorf("parsing delta spec %s: %w", u.DeltaPath, err)
	}

	var doc *specdoc.Document
	if u.TargetExisted {
		mainData, err := os.ReadFile(u.TargetPath)
		if err != nil {
			return rebuiltSpec{}, fmt.Errorf("reading canonical spec: %w", err)
		}
		doc, err = specdoc.ParseDocument(string(mainData))
		if err != nil {
			return rebuiltSpec{}, fmt.Errorf("parsing canonical spec %s: %w", u.TargetPath, err)
		}
	} else {
		doc = specdoc.NewDocument(u.Capability)
	}

	counts, err := doc.Apply(delta)
	if err != nil {
		return rebuiltSpec{}, fmt.Errorf("merging %s: %w", u.DeltaPath, err)
	}
	return rebuiltSpec{update: u, text: doc.Text(), counts: counts}, nil
}

// writeSpec persists rebuilt text, creating parent directories as needed.
// The write itself is atomic per file (temp file + rename) so a crash
// never leaves a half-written canonical spec.
func writeSpec(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeFileAtomic(path, []byte(text), 0o644)
}

// writeFileAtomic writes data through a temp file in the same directory,
// fsyncs, and renames it into place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Describe renders a one-line summary for a capability result.
func Describe(r CapabilityResult) string {
	verb := "updated"
	if r.Created {
		verb = "created"
	}
	return fmt.Sprintf("%s %s (%s)", verb, r.Capability, strings.TrimSpace(r.Counts.String()))
}
