package notify

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"

	"assetforge/internal/obs"
)

// Desktop sends task results to the desktop notification mechanism.
//
// Delivery is best-effort: a toast that cannot be shown is logged and
// otherwise ignored, it never fails a task. Started events are skipped to
// avoid notification storms in watch mode.
type Desktop struct{}

// NewDesktop creates the desktop adapter.
func NewDesktop() *Desktop {
	return &Desktop{}
}

// Notify shows a toast for completed and failed events.
func (d *Desktop) Notify(event Event) {
	var err error
	switch event.Type {
	case TaskCompleted:
		title := fmt.Sprintf("assetforge: %s", event.Task)
		body := event.Message
		if body == "" {
			body = fmt.Sprintf("completed in %s", event.Duration.Round(time.Millisecond))
		}
		err = beeep.Notify(title, body, "")
	case TaskFailed:
		title := fmt.Sprintf("assetforge: %s failed", event.Task)
		err = beeep.Alert(title, event.Message, "")
	default:
		return
	}
	if err != nil {
		obs.Warn("desktop notification failed", map[string]any{
			"task":  event.Task,
			"error": err.Error(),
		})
	}
}
