package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_DetectsChange(t *testing.T) {
	dir := t.TempDir()

	artifact := filepath.Join(dir, "proposal.md")
	if err := os.WriteFile(artifact, []byte("## Why\n\nInitial draft.\n"), 0644); err != nil {
		t.Fatalf("failed to create artifact file: %v", err)
	}

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	// Modify the file.
	if err := os.WriteFile(artifact, []byte("## Why\n\nRevised draft.\n"), 0644); err != nil {
		t.Fatalf("failed to update artifact file: %v", err)
	}

	// Wait for change with timeout.
	select {
	case change := <-w.Changes:
		if change.Path != artifact {
			t.Errorf("expected path %q, got %q", artifact, change.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestWatcher_DetectsNestedFile(t *testing.T) {
	dir := t.TempDir()

	// Delta specs live under specs/<capability>/spec.md.
	capability := filepath.Join(dir, "specs", "auth")
	if err := os.MkdirAll(capability, 0755); err != nil {
		t.Fatalf("failed to create capability dir: %v", err)
	}

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	spec := filepath.Join(capability, "spec.md")
	if err := os.WriteFile(spec, []byte("## ADDED Requirements\n"), 0644); err != nil {
		t.Fatalf("failed to create spec file: %v", err)
	}

	select {
	case change := <-w.Changes:
		if change.Path != spec {
			t.Errorf("expected path %q, got %q", spec, change.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for nested change event")
	}
}

func TestWatcher_IgnoresNonMDFiles(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	// Write a non-md file.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	// Should not receive any change.
	select {
	case change := <-w.Changes:
		t.Errorf("unexpected change event: %+v", change)
	case <-time.After(300 * time.Millisecond):
		// Expected: no events for non-md files.
	}
}

func TestWatcher_IgnoresDotfiles(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	// Editor swap files start with a dot.
	if err := os.WriteFile(filepath.Join(dir, ".proposal.md"), []byte("swap"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	select {
	case change := <-w.Changes:
		t.Errorf("unexpected change event: %+v", change)
	case <-time.After(300 * time.Millisecond):
		// Expected: no events for dotfiles.
	}
}

func TestWatcher_StopReturnsWithUnreadEvents(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Produce more events than the channel buffers and never read any of
	// them; Stop must still return.
	for i := 0; i < 40; i++ {
		name := filepath.Join(dir, fmt.Sprintf("artifact-%02d.md", i))
		if err := os.WriteFile(name, []byte("body\n"), 0644); err != nil {
			t.Fatalf("failed to create artifact file: %v", err)
		}
	}
	time.Sleep(300 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return with unread change events")
	}
}

func TestWatcher_DetectsRemoval(t *testing.T) {
	dir := t.TempDir()

	artifact := filepath.Join(dir, "tasks.md")
	if err := os.WriteFile(artifact, []byte("- [ ] first task\n"), 0644); err != nil {
		t.Fatalf("failed to create artifact file: %v", err)
	}

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	// Remove the file.
	if err := os.Remove(artifact); err != nil {
		t.Fatalf("failed to remove artifact file: %v", err)
	}

	select {
	case change := <-w.Changes:
		if change.Path != artifact {
			t.Errorf("expected path %q, got %q", artifact, change.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for removal event")
	}
}
