package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/biasharahq/platform/internal/config"
)

// NewLogger creates a structured zerolog.Logger for the named service.
// The log level comes from the config; unknown levels fall back to info.
func NewLogger(cfg *config.Config, service string) zerolog.Logger {
	ctx := zerolog.New(os.Stdout).With().Timestamp()

	if service != "" {
		ctx = ctx.Str("service", service)
	}
	if cfg.DefaultEngine != "" {
		ctx = ctx.Str("default_engine", cfg.DefaultEngine)
	}

	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
