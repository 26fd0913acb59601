// Package cli provides the initialization steps shared by every command:
// configuration, logging and signal handling.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"wealthwise/internal/config"
	"wealthwise/internal/log"
)

// LoadAndValidateConfig loads configuration from path (optional), .env and
// the environment, and validates it.
func LoadAndValidateConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the application logger from cfg and installs it as the
// slog default. An unknown level falls back to info.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	lc := log.DefaultConfig()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		lc.Level = level
	}
	lc.Format = cfg.LogFormat
	if out != nil {
		lc.Output = out
	}

	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
