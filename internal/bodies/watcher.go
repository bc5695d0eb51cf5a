package bodies

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Snapshot is a freshly loaded manifest, or the error loading it.
type Snapshot struct {
	Entries []Entry
	Err     error
}

// Watcher reloads a manifest whenever it changes on disk and delivers the
// result on Changes. Bursts of writes are coalesced.
type Watcher struct {
	Path    string
	Changes <-chan Snapshot

	changes  chan Snapshot
	done     chan struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher creates a watcher for the manifest at path.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ch := make(chan Snapshot, 4)
	return &Watcher{
		Path:     path,
		Changes:  ch,
		changes:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: 100 * time.Millisecond,
	}, nil
}

// Start watches the manifest's directory. Watching the directory rather than
// the file survives editors and WriteManifest replacing it by rename.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Close releases a watcher that was never started.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if !pending.IsZero() {
					w.emit()
				}
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.Path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= w.debounce {
				pending = time.Time{}
				w.emit()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// emit never blocks: when the consumer lags, the oldest pending snapshot is
// dropped in favour of the newest.
func (w *Watcher) emit() {
	entries, err := ManifestSource{Path: w.Path}.Entries(context.Background())
	snap := Snapshot{Entries: entries, Err: err}
	for {
		select {
		case w.changes <- snap:
			return
		default:
		}
		select {
		case <-w.changes:
		default:
		}
	}
}
