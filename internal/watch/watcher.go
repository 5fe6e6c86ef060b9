// Package watch re-runs registered tasks when files matching their watch
// patterns change. Events are debounced to collapse editor save bursts, and
// each task re-run is rate limited: changes arriving faster than the limit
// are deferred to a later sweep rather than dropped.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"assetforge/internal/obs"
	"assetforge/internal/task"
)

// Watcher drives watch mode over one project root.
type Watcher struct {
	root     string
	registry *task.Registry
	debounce time.Duration
	limit    rate.Limit
	burst    int

	fs        *fsnotify.Watcher
	limiters  map[*task.Task]*rate.Limiter
	closeOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the window during which further events are folded into
// one re-run sweep.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithRateLimit bounds how often a single task may be re-run.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(w *Watcher) {
		w.limit = limit
		w.burst = burst
	}
}

// New creates a watcher over root for the given registry.
func New(root string, registry *task.Registry, opts ...Option) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fs watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		registry: registry,
		debounce: 250 * time.Millisecond,
		limit:    rate.Every(time.Second),
		burst:    1,
		fs:       fs,
		limiters: make(map[*task.Task]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(root); err != nil {
		fs.Close()
		return nil, err
	}
	return w, nil
}

// Close stops the underlying fs watcher. Idempotent.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fs.Close()
	})
	return err
}

// Run processes events until the context is cancelled. Task failures are
// reported and watching continues; only watcher-level failures end the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			obs.CountWatchEvent()

			// New directories join the watch tree so nested changes
			// keep arriving.
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						obs.Warn("watching new directory failed", map[string]any{
							"dir": ev.Name, "error": err.Error(),
						})
					}
					continue
				}
			}

			if rel, ok := w.rel(ev.Name); ok {
				pending[rel] = struct{}{}
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := pending
			pending = make(map[string]struct{})
			for rel := range w.sweep(ctx, changed) {
				pending[rel] = struct{}{}
			}
			// Deferred paths get another sweep once the window elapses
			// again, by which time the limiter may have refilled.
			if len(pending) > 0 {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			obs.Warn("watch error", map[string]any{"error": err.Error()})
		}
	}
}

// sweep runs every task matching any of the changed paths, once each, in
// registration order. Paths whose matched task is currently rate limited are
// returned so the caller can retry them: a matched change is deferred, never
// dropped.
func (w *Watcher) sweep(ctx context.Context, changed map[string]struct{}) map[string]struct{} {
	deferred := make(map[string]struct{})
	for _, t := range w.registry.Tasks() {
		var matched []string
		for rel := range changed {
			if t.Matches(rel) {
				matched = append(matched, rel)
			}
		}
		if len(matched) == 0 {
			continue
		}
		if !w.limiter(t).Allow() {
			for _, rel := range matched {
				deferred[rel] = struct{}{}
			}
			continue
		}

		obs.Info("change detected, re-running task", map[string]any{"task": t.Name})
		if err := t.Run(ctx); err != nil {
			// Already reported via the task's notifier; keep watching.
			obs.Warn("task re-run failed", map[string]any{
				"task": t.Name, "error": err.Error(),
			})
		}
	}
	return deferred
}

func (w *Watcher) limiter(t *task.Task) *rate.Limiter {
	l, ok := w.limiters[t]
	if !ok {
		l = rate.NewLimiter(w.limit, w.burst)
		w.limiters[t] = l
	}
	return l
}

// addTree registers dir and every non-hidden subdirectory with the watcher.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != dir && (strings.HasPrefix(name, ".") || name == "node_modules") {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watching %q: %w", path, err)
		}
		return nil
	})
}

// rel converts an event path to the slash-separated project-relative form
// task patterns are matched against.
func (w *Watcher) rel(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func relevant(ev fsnotify.Event) bool {
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
