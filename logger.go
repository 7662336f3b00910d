package pagetex

import (
	"log/slog"

	"github.com/gogpu/gg"

	"github.com/gogpu/pagetex/internal/logging"
)

// SetLogger configures the logger for pagetex and all its sub-packages.
// By default, pagetex produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
// The logger is also handed to gg so rasterizer diagnostics share it.
//
// Log levels used by pagetex:
//   - [slog.LevelDebug]: per-job progress (stages, skipped archive entries)
//   - [slog.LevelInfo]: server lifecycle
//   - [slog.LevelWarn]: compiler warnings, skipped fonts, stale deliveries
//   - [slog.LevelError]: failed jobs (job_id, stage, kind, error)
//
// Example:
//
//	pagetex.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
	gg.SetLogger(l)
}

// Logger returns the current logger used by pagetex.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
