package workflow

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ArtifactChange reports a detected change to an artifact file inside a
// watched change directory.
type ArtifactChange struct {
	Path string // absolute path of the changed file
}

// Watcher monitors a change directory for artifact file activity using
// fsnotify. Events are debounced so that editor save storms collapse into
// a single notification per file.
type Watcher struct {
	Dir     string
	Changes <-chan ArtifactChange // read-only external channel

	changes chan ArtifactChange // internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for the given change directory.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan ArtifactChange, 16)
	w := &Watcher{
		Dir:     dir,
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}
	return w, nil
}

// Start begins watching the change directory and every subdirectory under
// it. Artifact patterns like specs/*/spec.md land in nested directories,
// so the whole tree is registered.
func (w *Watcher) Start() error {
	err := filepath.WalkDir(w.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: track last event time per file.
	const debounce = 100 * time.Millisecond
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				// Flush pending on close.
				for file := range pending {
					w.notify(file)
				}
				return
			}

			// A new capability directory must be registered before files
			// inside it produce events.
			if event.Has(fsnotify.Create) {
				_ = w.watcher.Add(event.Name)
			}

			if !w.isArtifactFile(event.Name) {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				pending[event.Name] = time.Now()
			}

		case _, ok := <-ticker.C:
			if !ok {
				return
			}
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= debounce {
					w.notify(file)
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Ignore watch errors; they're non-fatal.
		}
	}
}

// notify delivers a change without blocking. If the reader has fallen
// behind the buffer, the event is dropped; the consumer rereads the whole
// change directory on every notification, so a dropped event only delays
// a reprint until the next one. Blocking here would wedge Stop, which
// waits for the loop to exit.
func (w *Watcher) notify(path string) {
	select {
	case w.changes <- ArtifactChange{Path: path}:
	default:
	}
}

func (w *Watcher) isArtifactFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.HasSuffix(base, ".md")
}
