// Package logging configures zerolog for KrishiConnect. Setup installs the
// global logger once at startup; packages derive component loggers from it
// with NewLogger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel names a minimum severity.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// ServiceName is attached to every line written by the global logger.
const ServiceName = "krishi-connect"

// Config holds logger configuration.
type Config struct {
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON output at info level on stderr.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Output: os.Stderr}
}

// Setup installs the global logger and returns it. Loggers created by
// NewLogger before Setup keep the previous configuration.
func Setup(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	log.Logger = zerolog.New(out).With().
		Timestamp().
		Str("service", ServiceName).
		Logger()
	return log.Logger
}

// ParseLevel maps a level name to zerolog. Matching ignores case and
// surrounding space; "warning" is accepted and unknown names mean info.
func ParseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger derives a logger tagged with component from the global one.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache operations (optimistic commit, backend, key)
//   - Retry backoff waits
//   - Canceled runs
//
// Info: Normal operation events
//   - Committed fetch results
//   - Snapshot syncs
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Retry attempts
//   - Cache read/write errors (treated as an empty cache)
//   - Empty or unreadable payloads (sample data shown)
//   - Rate limit cooldowns
//
// Error: Error conditions requiring attention
//   - Fetches that exhausted their attempts
//   - Configuration errors
//
// Context Fields:
//   - component: pipeline, client, cache, server, jobs, weather
//   - run_id, seq: pipeline run identity
//   - query, page: requested listing view
//   - error_class: client, server, rate_limit, network
//   - source: cache, network, sample
//   - attempt, backoff: retry progress
