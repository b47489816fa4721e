// Package logger builds the root zerolog logger every component derives from.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultService = "autotrade-bridge"

// Config holds logger configuration
type Config struct {
	Level   string // trace, debug, info, warn, error; unknown values mean info
	Pretty  bool   // human-readable console output for dev mode
	Service string // stamped on every line, defaults to autotrade-bridge
}

// New creates the root logger writing to stdout. Components derive their own
// loggers from it via With().Str("component", ...).
func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit sink, for tests asserting on output.
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	service := cfg.Service
	if service == "" {
		service = defaultService
	}

	return zerolog.New(w).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

// SetGlobalLogger replaces the zerolog package-level logger so code logging
// through zerolog/log shares the same sink and fields.
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
