// Package graph builds the artifact dependency graph for a workflow schema
// and answers readiness, blocked, completion, and build-order queries. The
// graph is immutable after construction: every query is a pure function of
// a caller-supplied completion set, so the graph can never hold stale
// workflow state.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/papapumpkin/parallax/internal/workflow"
)

// Sentinel errors for graph construction.
var (
	// ErrCycle is returned when artifact dependencies form a cycle.
	ErrCycle = errors.New("dependency cycle detected")
	// ErrDuplicateArtifact is returned when two artifacts share an id.
	ErrDuplicateArtifact = errors.New("duplicate artifact id")
	// ErrUnknownDependency is returned when a dependency references an
	// artifact id that does not exist.
	ErrUnknownDependency = errors.New("unknown dependency")
)

// Graph is the dependency graph over a workflow schema's artifacts.
type Graph struct {
	schema *workflow.Schema
	ids    []string // declaration order
	// deps maps artifact id → its dependency ids, declaration order.
	deps map[string][]string
	// dependents maps artifact id → the ids that depend on it.
	dependents map[string][]string
	// buildOrder is fixed at construction; BuildOrder returns a copy.
	buildOrder []string
}

// FromSchema validates a schema's dependency structure and builds the
// graph. Artifact ids must be unique, every dependency must name an
// existing artifact, and the dependency relation must be acyclic. On any
// violation the error names the offending artifact and no graph is
// returned.
func FromSchema(s *workflow.Schema) (*Graph, error) {
	g := &Graph{
		schema:     s,
		ids:        s.IDs(),
		deps:       make(map[string][]string, len(s.Artifacts)),
		dependents: make(map[string][]string, len(s.Artifacts)),
	}

	for _, a := range s.Artifacts {
		if _, exists := g.deps[a.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateArtifact, a.ID)
		}
		g.deps[a.ID] = append([]string(nil), a.DependsOn...)
	}
	for _, a := range s.Artifacts {
		for _, dep := range a.DependsOn {
			if _, ok := g.deps[dep]; !ok {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrUnknownDependency, a.ID, dep)
			}
			g.dependents[dep] = append(g.dependents[dep], a.ID)
		}
	}

	if cycle := g.findCycle(); len(cycle) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycle, " → "))
	}

	g.buildOrder = g.computeBuildOrder()
	return g, nil
}

// Schema returns the schema the graph was built from.
func (g *Graph) Schema() *workflow.Schema {
	return g.schema
}

// IDs returns all artifact ids in schema declaration order.
func (g *Graph) IDs() []string {
	return append([]string(nil), g.ids...)
}

// Dependencies returns the declared dependency ids of an artifact.
func (g *Graph) Dependencies(id string) []string {
	return append([]string(nil), g.deps[id]...)
}

// NextArtifacts returns the ids not yet in done whose every dependency is
// in done, in schema declaration order.
func (g *Graph) NextArtifacts(done map[string]bool) []string {
	var ready []string
	for _, id := range g.ids {
		if done[id] {
			continue
		}
		if g.depsMet(id, done) {
			ready = append(ready, id)
		}
	}
	return ready
}

// Blocked returns, for every artifact that is neither done nor ready, the
// sorted list of its dependency ids missing from done.
func (g *Graph) Blocked(done map[string]bool) map[string][]string {
	blocked := make(map[string][]string)
	for _, id := range g.ids {
		if done[id] || g.depsMet(id, done) {
			continue
		}
		var unmet []string
		for _, dep := range g.deps[id] {
			if !done[dep] {
				unmet = append(unmet, dep)
			}
		}
		sort.Strings(unmet)
		blocked[id] = unmet
	}
	return blocked
}

// IsComplete reports whether done covers every artifact in the schema.
// Unknown ids in done are ignored.
func (g *Graph) IsComplete(done map[string]bool) bool {
	for _, id := range g.ids {
		if !done[id] {
			return false
		}
	}
	return true
}

// OutOfOrder returns completed artifact ids whose dependencies are not all
// completed. Completion is a filesystem fact, not a workflow invariant, so
// this is informational rather than an error.
func (g *Graph) OutOfOrder(done map[string]bool) []string {
	var out []string
	for _, id := range g.ids {
		if done[id] && !g.depsMet(id, done) {
			out = append(out, id)
		}
	}
	return out
}

// BuildOrder returns a topological ordering over all artifacts, computed
// once at construction. The same graph yields the same order on every
// call: ties break by schema declaration order, never alphabetically.
func (g *Graph) BuildOrder() []string {
	return append([]string(nil), g.buildOrder...)
}

func (g *Graph) depsMet(id string, done map[string]bool) bool {
	for _, dep := range g.deps[id] {
		if !done[dep] {
			return false
		}
	}
	return true
}

// computeBuildOrder repeatedly takes the first artifact, in declaration
// order, whose dependencies have all been placed. Quadratic, but schemas
// have a handful of artifacts and the scan order makes the result
// deterministic by construction.
func (g *Graph) computeBuildOrder() []string {
	placed := make(map[string]bool, len(g.ids))
	order := make([]string, 0, len(g.ids))
	for len(order) < len(g.ids) {
		for _, id := range g.ids {
			if placed[id] || !g.depsMet(id, placed) {
				continue
			}
			placed[id] = true
			order = append(order, id)
		}
	}
	return order
}

// findCycle runs a depth-first search with a recursion-stack marker and
// returns the artifact ids along the first cycle found, or nil.
func (g *Graph) findCycle() []string {
	const (
		unvisited = iota
		inStack
		finished
	)
	state := make(map[string]int, len(g.ids))
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		state[id] = inStack
		stack = append(stack, id)
		for _, dep := range g.deps[id] {
			switch state[dep] {
			case inStack:
				// Slice the stack from the first occurrence of dep to
				// report the actual cycle path.
				for i, v := range stack {
					if v == dep {
						cycle = append(append([]string(nil), stack[i:]...), dep)
						return true
					}
				}
			case unvisited:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = finished
		return false
	}

	for _, id := range g.ids {
		if state[id] == unvisited && visit(id) {
			return cycle
		}
	}
	return nil
}
