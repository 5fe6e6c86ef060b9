package obs

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestInitMetrics_Idempotent(t *testing.T) {
	// MustRegister panics on duplicate registration; the sync.Once must
	// absorb repeated init calls.
	InitMetrics()
	InitMetrics()
}

func TestMetricsHandler_ExposesTaskMetrics(t *testing.T) {
	InitMetrics()
	ObserveTaskRun("styles", "completed", 120*time.Millisecond)
	ObserveTaskRun("styles", "failed", 5*time.Millisecond)
	CountWatchEvent()

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`assetforge_task_runs_total{status="completed",task="styles"} 1`,
		`assetforge_task_runs_total{status="failed",task="styles"} 1`,
		"assetforge_task_duration_seconds_count",
		"assetforge_watch_events_total",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("scrape output missing %q:\n%s", want, body)
		}
	}
}
