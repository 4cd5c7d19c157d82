package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the process-wide slog handler. debug mode enables
// debug-level output, which includes request/response logging from
// instrumented http clients.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
