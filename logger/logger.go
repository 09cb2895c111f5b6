// Package logger holds the process wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the global logger. It discards everything until Initialize is
// called, so library code can log without setup.
var Logger = zerolog.Nop()

// Initialize sets up the global logger.
//
// format "json" writes one JSON object per line, anything else a human
// readable console output. An unknown level means info.
func Initialize(level, format string, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339

	if format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "2006-01-02 15:04:05",
		}
	}
	Logger = zerolog.New(out).With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = Logger
}

// Get returns the global logger.
func Get() *zerolog.Logger { return &Logger }

// For returns a logger tagged with a component field.
func For(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}
