package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs a text handler writing to stderr as the default logger,
// stdout is reserved for command output.
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
