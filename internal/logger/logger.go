package logger

import (
	"log/slog"
	"os"
)

// New builds the process logger: JSON in prod, text elsewhere. Every
// record carries the service name and environment.
func New(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if env == "prod" {
		opts.Level = slog.LevelInfo
	}
	var h slog.Handler
	if env == "prod" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h).With(
		slog.String("service", "ganamos-api"),
		slog.String("env", env),
	)
}
