package graph

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/papapumpkin/parallax/internal/workflow"
)

// artifactSpec is a compact helper form: (id, deps...).
type artifactSpec struct {
	id   string
	deps []string
}

func buildSchema(specs []artifactSpec) *workflow.Schema {
	s := &workflow.Schema{Name: "test"}
	for _, a := range specs {
		s.Artifacts = append(s.Artifacts, workflow.ArtifactDef{
			ID:        a.id,
			DependsOn: a.deps,
			Output:    a.id + ".md",
		})
	}
	return s
}

func buildGraph(t *testing.T, specs []artifactSpec) *Graph {
	t.Helper()
	g, err := FromSchema(buildSchema(specs))
	if err != nil {
		t.Fatalf("FromSchema: %v", err)
	}
	return g
}

// defaultSpecs is the proposal → specs/design → tasks shape.
func defaultSpecs() []artifactSpec {
	return []artifactSpec{
		{id: "proposal"},
		{id: "specs", deps: []string{"proposal"}},
		{id: "design", deps: []string{"proposal"}},
		{id: "tasks", deps: []string{"specs", "design"}},
	}
}

func done(ids ...string) map[string]bool {
	m := make(map[string]bool)
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func TestFromSchema_Errors(t *testing.T) {
	t.Parallel()

	t.Run("duplicate artifact id", func(t *testing.T) {
		t.Parallel()
		_, err := FromSchema(buildSchema([]artifactSpec{{id: "a"}, {id: "a"}}))
		if !errors.Is(err, ErrDuplicateArtifact) {
			t.Errorf("err = %v, want ErrDuplicateArtifact", err)
		}
	})

	t.Run("unknown dependency", func(t *testing.T) {
		t.Parallel()
		_, err := FromSchema(buildSchema([]artifactSpec{{id: "a", deps: []string{"ghost"}}}))
		if !errors.Is(err, ErrUnknownDependency) {
			t.Errorf("err = %v, want ErrUnknownDependency", err)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		t.Parallel()
		_, err := FromSchema(buildSchema([]artifactSpec{
			{id: "a", deps: []string{"c"}},
			{id: "b", deps: []string{"a"}},
			{id: "c", deps: []string{"b"}},
		}))
		if !errors.Is(err, ErrCycle) {
			t.Errorf("err = %v, want ErrCycle", err)
		}
	})

	t.Run("self cycle", func(t *testing.T) {
		t.Parallel()
		_, err := FromSchema(buildSchema([]artifactSpec{{id: "a", deps: []string{"a"}}}))
		if !errors.Is(err, ErrCycle) {
			t.Errorf("err = %v, want ErrCycle", err)
		}
	})

	t.Run("no partial graph on failure", func(t *testing.T) {
		t.Parallel()
		g, err := FromSchema(buildSchema([]artifactSpec{{id: "a", deps: []string{"a"}}}))
		if err == nil || g != nil {
			t.Errorf("got (%v, %v), want nil graph with error", g, err)
		}
	})
}

func TestNextArtifacts_EmptyChange(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, defaultSpecs())

	got := g.NextArtifacts(done())
	if !reflect.DeepEqual(got, []string{"proposal"}) {
		t.Errorf("NextArtifacts(∅) = %v, want [proposal]", got)
	}

	blocked := g.Blocked(done())
	want := map[string][]string{
		"specs":  {"proposal"},
		"design": {"proposal"},
		"tasks":  {"design", "specs"},
	}
	if !reflect.DeepEqual(blocked, want) {
		t.Errorf("Blocked(∅) = %v, want %v", blocked, want)
	}
}

func TestNextArtifacts_AfterProposal(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, defaultSpecs())

	got := g.NextArtifacts(done("proposal"))
	// Schema declaration order, not alphabetical.
	if !reflect.DeepEqual(got, []string{"specs", "design"}) {
		t.Errorf("NextArtifacts = %v, want [specs design]", got)
	}

	blocked := g.Blocked(done("proposal"))
	want := map[string][]string{"tasks": {"design", "specs"}}
	if !reflect.DeepEqual(blocked, want) {
		t.Errorf("Blocked = %v, want %v", blocked, want)
	}
}

// Every artifact is in exactly one of {done, ready, blocked} for any
// completion set.
func TestReadinessPartition(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, defaultSpecs())
	ids := g.IDs()

	// Enumerate all subsets of the four artifacts.
	for mask := 0; mask < 1<<len(ids); mask++ {
		completed := make(map[string]bool)
		for i, id := range ids {
			if mask&(1<<i) != 0 {
				completed[id] = true
			}
		}

		ready := g.NextArtifacts(completed)
		blocked := g.Blocked(completed)

		for _, id := range ids {
			inDone := completed[id]
			inReady := contains(ready, id)
			_, inBlocked := blocked[id]

			n := 0
			for _, b := range []bool{inDone, inReady, inBlocked} {
				if b {
					n++
				}
			}
			if n != 1 {
				t.Fatalf("mask %b: artifact %s in %d partitions (done=%v ready=%v blocked=%v)",
					mask, id, n, inDone, inReady, inBlocked)
			}
		}

		// Blocked lists are exactly the declared deps absent from completed.
		for id, unmet := range blocked {
			var want []string
			for _, dep := range g.Dependencies(id) {
				if !completed[dep] {
					want = append(want, dep)
				}
			}
			sort.Strings(want)
			if !reflect.DeepEqual(unmet, want) {
				t.Fatalf("mask %b: Blocked[%s] = %v, want %v", mask, id, unmet, want)
			}
		}
	}
}

func TestIsComplete(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, defaultSpecs())

	if g.IsComplete(done("proposal", "specs", "design")) {
		t.Error("IsComplete without tasks should be false")
	}
	if !g.IsComplete(done("proposal", "specs", "design", "tasks")) {
		t.Error("IsComplete with all artifacts should be true")
	}
	// Unknown ids are ignored, not an error.
	if !g.IsComplete(done("proposal", "specs", "design", "tasks", "stray")) {
		t.Error("IsComplete should ignore unknown ids")
	}
}

func TestBuildOrder(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, defaultSpecs())

	first := g.BuildOrder()
	second := g.BuildOrder()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("BuildOrder not stable: %v vs %v", first, second)
	}
	if !reflect.DeepEqual(first, []string{"proposal", "specs", "design", "tasks"}) {
		t.Errorf("BuildOrder = %v, want schema-order topological sort", first)
	}

	// Validity: every dependency precedes its dependent.
	pos := make(map[string]int)
	for i, id := range first {
		pos[id] = i
	}
	for _, id := range g.IDs() {
		for _, dep := range g.Dependencies(id) {
			if pos[dep] >= pos[id] {
				t.Errorf("BuildOrder places %s after %s", dep, id)
			}
		}
	}

	// A second graph from the same schema produces the identical order.
	other := buildGraph(t, defaultSpecs())
	if !reflect.DeepEqual(first, other.BuildOrder()) {
		t.Error("BuildOrder differs between graphs built from the same schema")
	}
}

func TestOutOfOrder(t *testing.T) {
	t.Parallel()
	g := buildGraph(t, defaultSpecs())

	if out := g.OutOfOrder(done("proposal")); out != nil {
		t.Errorf("OutOfOrder = %v, want nil", out)
	}
	out := g.OutOfOrder(done("tasks"))
	if !reflect.DeepEqual(out, []string{"tasks"}) {
		t.Errorf("OutOfOrder = %v, want [tasks]", out)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
