// Package logging configures zerolog for the CLI
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLevel overrides the configured level when set
const EnvLevel = "CUSTOMSDOC_LOG_LEVEL"

// New builds a logger writing to w. JSON output is line-delimited; otherwise a
// console writer is used. Logs always go to stderr in the CLI so they never mix
// with JSON documents on stdout.
func New(w io.Writer, level zerolog.Level, json bool) zerolog.Logger {
	out := w
	if !json {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Init builds the process logger on stderr and installs it as the global
// zerolog logger. The level comes from CUSTOMSDOC_LOG_LEVEL when set,
// otherwise from level.
func Init(level string, json bool) zerolog.Logger {
	if env := os.Getenv(EnvLevel); env != "" {
		level = env
	}
	logger := New(os.Stderr, ParseLevel(level), json)
	log.Logger = logger
	return logger
}

// ParseLevel converts "debug", "info", "warn", "error" or "off" to a zerolog
// level. Unknown strings default to warn.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled", "none":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}
