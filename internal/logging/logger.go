package logging

import (
	"io"
	"log/slog"
	"os"
)

func stdoutHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(stdoutHandler(os.Stdout)))
}

// AttachStore keeps stdout logging and additionally persists ERROR+ records.
// The returned handler must be stopped on shutdown.
func AttachStore(store LogStore) *PGHandler {
	pg := NewPGHandler(store)
	slog.SetDefault(slog.New(NewMultiHandler(stdoutHandler(os.Stdout), pg)))
	return pg
}
