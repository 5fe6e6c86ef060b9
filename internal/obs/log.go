// Package obs provides shared observability: a structured line logger and
// process-wide task metrics.
package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

var (
	loggerOnce sync.Once
	logger     *log.Logger

	quietMu sync.RWMutex
	quiet   bool
)

// Logger returns the shared structured logger used across the tool.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// SetQuiet suppresses info-level output. Warnings and errors still print.
func SetQuiet(q bool) {
	quietMu.Lock()
	quiet = q
	quietMu.Unlock()
}

// Info emits an info-level JSON log line unless quiet mode is on.
func Info(msg string, fields map[string]any) {
	quietMu.RLock()
	q := quiet
	quietMu.RUnlock()
	if q {
		return
	}
	emit("info", msg, fields)
}

// Warn emits a warning-level JSON log line.
func Warn(msg string, fields map[string]any) {
	emit("warn", msg, fields)
}

// Error emits an error-level JSON log line.
func Error(msg string, fields map[string]any) {
	emit("error", msg, fields)
}

func emit(level, msg string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		entry[k] = v
	}
	entry["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level
	entry["msg"] = msg

	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"log marshal failed"}`)
		return
	}
	Logger().Println(string(data))
}
