// Package task implements named build tasks and their registry.
//
// A Task records its configuration at declaration time: a name, a category,
// a source/output path pair, watch patterns, and a deferred definition
// function. Running a task evaluates the definition, records the
// human-readable steps it took, marks completion, and reports the result.
package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"assetforge/internal/config"
	"assetforge/internal/notify"
	"assetforge/internal/obs"
)

// ErrNoDefinition indicates a task was run before a definition was attached.
var ErrNoDefinition = errors.New("task has no definition")

// DefaultCategory is used when a declaration names none.
const DefaultCategory = "default"

// Definition is the deferred body of a task, evaluated once per run.
type Definition func(ctx context.Context, t *Task) error

// RunError wraps a failed task run with the task's name.
type RunError struct {
	Task string
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("task %q: %v", e.Task, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Task is one declared build task. The configuration fields are fixed at
// declaration time; the run state (steps, completion, last error) is guarded
// by the mutex because watch mode re-runs tasks from its own goroutine.
type Task struct {
	Name     string
	Category string
	Paths    config.PathPair

	mu       sync.Mutex
	steps    []string
	watch    []string
	ignore   []string
	complete bool
	lastErr  error
	runID    string

	definition Definition
	notifier   notify.Notifier
	sourcemaps bool
	root       string
}

// Option configures a Task at declaration time.
type Option func(*Task)

// WithCategory sets the task's category.
func WithCategory(category string) Option {
	return func(t *Task) {
		if category != "" {
			t.Category = category
		}
	}
}

// WithPaths sets the source/output path pair.
func WithPaths(p config.PathPair) Option {
	return func(t *Task) { t.Paths = p }
}

// WithDefinition attaches the deferred definition.
func WithDefinition(def Definition) Option {
	return func(t *Task) { t.definition = def }
}

// WithNotifier routes lifecycle events to n.
func WithNotifier(n notify.Notifier) Option {
	return func(t *Task) { t.notifier = n }
}

// WithSourcemaps toggles sourcemap steps for this task's pipelines.
func WithSourcemaps(enabled bool) Option {
	return func(t *Task) { t.sourcemaps = enabled }
}

// WithRoot sets the directory source globs resolve against.
func WithRoot(root string) Option {
	return func(t *Task) { t.root = root }
}

// New declares a task. The task is inert until registered and run.
func New(name string, opts ...Option) *Task {
	t := &Task{
		Name:       name,
		Category:   DefaultCategory,
		sourcemaps: true,
		root:       ".",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Watch adds path patterns whose changes should re-run this task.
func (t *Task) Watch(globs ...string) *Task {
	t.mu.Lock()
	t.watch = append(t.watch, globs...)
	t.mu.Unlock()
	return t
}

// Ignore adds path patterns excluded from watching.
func (t *Task) Ignore(globs ...string) *Task {
	t.mu.Lock()
	t.ignore = append(t.ignore, globs...)
	t.mu.Unlock()
	return t
}

// WatchGlobs returns the task's watch patterns.
func (t *Task) WatchGlobs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.watch))
	copy(out, t.watch)
	return out
}

// Matches reports whether a changed path (slash-separated, relative to the
// project root) should re-run this task. Ignore patterns subtract from watch
// patterns.
func (t *Task) Matches(rel string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, g := range t.ignore {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return false
		}
	}
	for _, g := range t.watch {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// RecordStep appends a human-readable description of a pipeline step taken
// during the current run. Safe for concurrent use.
func (t *Task) RecordStep(desc string) {
	t.mu.Lock()
	t.steps = append(t.steps, desc)
	t.mu.Unlock()
}

// Steps returns a snapshot of the steps recorded by the most recent run.
func (t *Task) Steps() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.steps))
	copy(out, t.steps)
	return out
}

// Complete reports whether the task has finished a successful run.
func (t *Task) Complete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.complete
}

// LastError returns the error from the most recent failed run, if any.
func (t *Task) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// RunID returns the identifier of the most recent run.
func (t *Task) RunID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runID
}

// Run evaluates the deferred definition once. Steps recorded by a previous
// run are reset first. On success the task is marked complete and a summary
// is logged; on failure the task stays incomplete and the error is kept.
func (t *Task) Run(ctx context.Context) error {
	if t.definition == nil {
		return &RunError{Task: t.Name, Err: ErrNoDefinition}
	}

	t.mu.Lock()
	t.steps = nil
	t.runID = uuid.NewString()
	id := t.runID
	t.mu.Unlock()

	t.emit(notify.TaskStarted, id, "", 0)

	start := time.Now()
	err := t.definition(ctx, t)
	elapsed := time.Since(start)

	if err != nil {
		t.mu.Lock()
		t.lastErr = err
		t.mu.Unlock()
		obs.ObserveTaskRun(t.Name, "failed", elapsed)
		t.emit(notify.TaskFailed, id, err.Error(), elapsed)
		return &RunError{Task: t.Name, Err: err}
	}

	t.mu.Lock()
	t.complete = true
	t.lastErr = nil
	t.mu.Unlock()
	obs.ObserveTaskRun(t.Name, "completed", elapsed)
	t.emit(notify.TaskCompleted, id, t.summary(), elapsed)
	return nil
}

// Describe returns a one-line description of the task's declaration.
func (t *Task) Describe() string {
	return fmt.Sprintf("%s (%s): %v -> %s", t.Name, t.Category, t.Paths.Src, t.Paths.Dest)
}

// Log writes the declaration line and the recorded steps of the most recent
// run to w.
func (t *Task) Log(w io.Writer) {
	fmt.Fprintln(w, t.Describe())
	for i, step := range t.Steps() {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}
}

func (t *Task) summary() string {
	steps := t.Steps()
	if len(steps) == 0 {
		return ""
	}
	return fmt.Sprintf("%d steps", len(steps))
}

func (t *Task) emit(typ notify.EventType, runID, message string, d time.Duration) {
	if t.notifier == nil {
		return
	}
	t.notifier.Notify(notify.Event{
		Type:     typ,
		Task:     t.Name,
		Category: t.Category,
		RunID:    runID,
		Message:  message,
		Duration: d,
	})
}
