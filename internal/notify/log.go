package notify

import "assetforge/internal/obs"

// Log writes task lifecycle events to the structured log.
type Log struct{}

// NewLog creates the log adapter.
func NewLog() *Log {
	return &Log{}
}

// Notify logs the event; failures log at error level.
func (l *Log) Notify(event Event) {
	fields := map[string]any{
		"task":     event.Task,
		"category": event.Category,
		"run_id":   event.RunID,
	}
	if event.Duration > 0 {
		fields["duration"] = event.Duration.String()
	}
	if event.Message != "" {
		fields["detail"] = event.Message
	}

	if event.Type == TaskFailed {
		obs.Error(string(event.Type), fields)
		return
	}
	obs.Info(string(event.Type), fields)
}
