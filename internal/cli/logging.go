package cli

import (
	"io"
	"log/slog"
)

// SetupLogging installs the default slog logger: text to w at Info,
// or Debug when verbose.
func SetupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
