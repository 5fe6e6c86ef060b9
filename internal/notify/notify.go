// Package notify reports task lifecycle results to whoever is listening:
// the structured log, the desktop, or anything else implementing Notifier.
package notify

import "time"

// EventType classifies a task lifecycle event.
type EventType string

const (
	TaskStarted   EventType = "task.started"
	TaskCompleted EventType = "task.completed"
	TaskFailed    EventType = "task.failed"
)

// Event is one task lifecycle notification.
type Event struct {
	Type     EventType
	Task     string
	Category string
	RunID    string
	Message  string
	Duration time.Duration
}

// Notifier receives task lifecycle events.
type Notifier interface {
	Notify(event Event)
}

// Hub dispatches events to multiple notifiers, in registration order.
type Hub struct {
	notifiers []Notifier
}

// NewHub creates a Hub with the given notifiers.
func NewHub(notifiers ...Notifier) *Hub {
	return &Hub{notifiers: notifiers}
}

// Add registers another notifier.
func (h *Hub) Add(n Notifier) {
	h.notifiers = append(h.notifiers, n)
}

// Notify sends an event to every registered notifier.
func (h *Hub) Notify(event Event) {
	for _, n := range h.notifiers {
		n.Notify(event)
	}
}
