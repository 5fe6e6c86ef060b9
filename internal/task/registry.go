package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownTask indicates a run was requested for a name nothing registered.
var ErrUnknownTask = errors.New("unknown task")

// Registry is the ordered collection of declared tasks. Registration order
// is stable and drives run order. Duplicate names are allowed; RunAll runs
// every task with the requested name.
type Registry struct {
	mu    sync.Mutex
	tasks []*Task
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a task. Tasks live for the process lifetime once registered.
func (r *Registry) Add(t *Task) {
	r.mu.Lock()
	r.tasks = append(r.tasks, t)
	r.mu.Unlock()
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Tasks returns a snapshot of all tasks in registration order.
func (r *Registry) Tasks() []*Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// All returns every task with the given name, in registration order.
func (r *Registry) All(name string) []*Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Task
	for _, t := range r.tasks {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

// FirstIncomplete returns the first task with the given name that has not
// yet finished a successful run.
func (r *Registry) FirstIncomplete(name string) (*Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.Name == name && !t.Complete() {
			return t, true
		}
	}
	return nil, false
}

// Names returns the distinct task names in first-registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{}, len(r.tasks))
	var out []string
	for _, t := range r.tasks {
		if _, ok := seen[t.Name]; ok {
			continue
		}
		seen[t.Name] = struct{}{}
		out = append(out, t.Name)
	}
	return out
}

// RunAll runs every task registered under name, in registration order. The
// first failure stops the sequence and is returned.
func (r *Registry) RunAll(ctx context.Context, name string) error {
	matched := r.All(name)
	if len(matched) == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}
	for _, t := range matched {
		if err := t.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RunEach runs every registered task once, in registration order, stopping
// at the first failure.
func (r *Registry) RunEach(ctx context.Context) error {
	for _, t := range r.Tasks() {
		if err := t.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}
