// Package watch monitors a mirrored repository tree and reports settled
// batches of relevant file changes, so corpus artifacts can be rebuilt
// while sources evolve.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/archinspect/repoanalyst/internal/corpus"
)

// DefaultDebounce is the quiet period after the last relevant event
// before a batch of changes is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors one directory tree for changes to files selected by
// corpus include patterns. Changes are deduplicated and debounced into
// batches of root-relative paths.
type Watcher struct {
	fsw     *fsnotify.Watcher
	root    string
	matcher *corpus.Matcher

	// Debounce is the quiet period before a batch fires.
	// Change it before Start.
	Debounce time.Duration

	callback func(files []string)
	ctx      context.Context
	cancel   context.CancelFunc

	accumulated   map[string]bool
	accumulatedMu sync.Mutex

	debounceTimer *time.Timer
	timerMu       sync.Mutex

	stopOnce sync.Once
	doneCh   chan struct{}
}

// New creates a watcher over root. include selects which changed files
// count, using the same pattern rules as corpus discovery. Directory
// names the corpus walker excludes are never watched.
func New(root string, include []string) (*Watcher, error) {
	matcher, err := corpus.NewMatcher(include)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:         fsw,
		root:        root,
		matcher:     matcher,
		Debounce:    DefaultDebounce,
		accumulated: make(map[string]bool),
		doneCh:      make(chan struct{}),
	}

	if err := w.addDirectoriesRecursively(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins watching. callback receives each settled batch of changed
// files as slash-separated paths relative to the root.
func (w *Watcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return fmt.Errorf("watch callback is nil")
	}

	w.callback = callback
	w.ctx, w.cancel = context.WithCancel(ctx)

	go w.watch()
	return nil
}

// Stop stops the watcher and waits for its event loop to finish.
// Stop is idempotent.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			// Never started, close doneCh manually
			close(w.doneCh)
		}
		err = w.fsw.Close()
	})
	return err
}

// watch is the main event loop.
func (w *Watcher) watch() {
	defer close(w.doneCh)

	flushCh := make(chan struct{}, 1)

	for {
		select {
		case <-w.ctx.Done():
			w.stopDebounceTimer()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			// New directories join the watch unless their name is excluded
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !corpus.IsExcludedDirName(filepath.Base(event.Name)) {
						if err := w.addDirectoriesRecursively(event.Name); err != nil {
							log.Printf("Warning: failed to watch new directory %s: %v\n", event.Name, err)
						}
					}
					continue
				}
			}

			rel, ok := w.relevantPath(event)
			if !ok {
				continue
			}

			w.accumulatedMu.Lock()
			w.accumulated[rel] = true
			w.accumulatedMu.Unlock()

			w.resetDebounceTimer(flushCh)

		case <-flushCh:
			w.flush()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: watcher error: %v\n", err)
		}
	}
}

// flush fires the callback with the accumulated batch, if any.
func (w *Watcher) flush() {
	w.accumulatedMu.Lock()
	if len(w.accumulated) == 0 {
		w.accumulatedMu.Unlock()
		return
	}
	files := make([]string, 0, len(w.accumulated))
	for file := range w.accumulated {
		files = append(files, file)
	}
	w.accumulated = make(map[string]bool)
	w.accumulatedMu.Unlock()

	w.callback(files)
}

// relevantPath maps an event to a root-relative slash path, reporting
// whether the event should count as a change.
func (w *Watcher) relevantPath(event fsnotify.Event) (string, bool) {
	// Only writes, creations and removals matter; renames surface as a
	// remove plus a create.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
		return "", false
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)

	if !w.matcher.Match(rel) {
		return "", false
	}
	return rel, true
}

// resetDebounceTimer restarts the quiet period, stopping and draining any
// timer already running.
func (w *Watcher) resetDebounceTimer(flushCh chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		if !w.debounceTimer.Stop() {
			select {
			case <-w.debounceTimer.C:
			default:
			}
		}
	}

	w.debounceTimer = time.AfterFunc(w.Debounce, func() {
		select {
		case flushCh <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopDebounceTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
}

// addDirectoriesRecursively adds rootPath and every non-excluded
// directory below it to the watch.
func (w *Watcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.WalkDir(rootPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == rootPath {
				return err
			}
			log.Printf("Warning: error accessing %s: %v\n", p, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != rootPath && corpus.IsExcludedDirName(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v\n", p, err)
		}
		return nil
	})
}
