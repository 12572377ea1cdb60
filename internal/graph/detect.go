package graph

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DetectCompleted probes changeDir against each artifact's output pattern
// and returns the set of artifact ids whose output exists on disk. The set
// is recomputed from the filesystem on every call and never cached, so it
// cannot desynchronize from disk within one command invocation.
//
// A single-file pattern is complete iff the file exists; zero-byte files
// count. A directory-glob pattern is complete iff at least one file under
// the pattern's fixed directory segment matches it; non-matching files are
// ignored. Dependencies are never consulted here: completion is purely a
// filesystem fact.
func (g *Graph) DetectCompleted(changeDir string) map[string]bool {
	done := make(map[string]bool)
	for _, a := range g.schema.Artifacts {
		if outputExists(changeDir, a.Output) {
			done[a.ID] = true
		}
	}
	return done
}

func outputExists(changeDir, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		info, err := os.Stat(filepath.Join(changeDir, pattern))
		return err == nil && !info.IsDir()
	}
	return globMatch(changeDir, pattern)
}

// globMatch walks the pattern's fixed directory segment looking for any
// file whose path relative to changeDir matches the pattern.
func globMatch(changeDir, pattern string) bool {
	fixed := pattern[:strings.Index(pattern, "*")]
	fixed = strings.TrimSuffix(fixed, "/")
	if fixed == "" {
		fixed = "."
	}
	root := filepath.Join(changeDir, filepath.FromSlash(fixed))

	found := false
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found {
			return filepath.SkipAll
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(changeDir, path)
		if err != nil {
			return nil
		}
		if ok, _ := filepath.Match(filepath.FromSlash(pattern), rel); ok {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
