package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. LOG_FORMAT selects the handler: "json"
// for machine-ingested output, "pretty" (the default) for local development
// text without source locations, anything else for text with them.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil {
		switch cfg.LogFormat {
		case "json":
			return slog.New(slog.NewJSONHandler(os.Stdout, opts))
		case "pretty":
			opts.AddSource = false
		}
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
