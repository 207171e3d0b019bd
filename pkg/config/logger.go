package config

import (
	"log/slog"
	"os"

	"github.com/golang-cz/devslog"
)

// NewLogger builds the application logger and installs it as the slog default.
// Development gets the colored devslog handler, everything else JSON.
func NewLogger(cfg *Config) *slog.Logger {
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	} else {
		handler = devslog.NewHandler(os.Stdout, &devslog.Options{
			HandlerOptions: &slog.HandlerOptions{
				AddSource: true,
				Level:     slog.LevelDebug,
			},
			NewLineAfterLog: false,
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
