package obs

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Task metrics, exposed during watch mode.
var (
	taskRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetforge_task_runs_total",
			Help: "Total number of task runs by outcome.",
		},
		[]string{"task", "status"},
	)

	taskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetforge_task_duration_seconds",
			Help:    "Task run durations in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task"},
	)

	watchEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assetforge_watch_events_total",
		Help: "Filesystem events observed by the watcher.",
	})
)

var initOnce sync.Once

// InitMetrics registers metrics with the default registry. Safe to call more
// than once.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(taskRunsTotal, taskDuration, watchEventsTotal)
	})
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// ObserveTaskRun records one task run with its outcome and duration.
func ObserveTaskRun(task, status string, d time.Duration) {
	taskRunsTotal.WithLabelValues(task, status).Inc()
	taskDuration.WithLabelValues(task).Observe(d.Seconds())
}

// CountWatchEvent records one filesystem event.
func CountWatchEvent() {
	watchEventsTotal.Inc()
}
