package logging

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger at the given level and installs it as the
// process default.
func New(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}
