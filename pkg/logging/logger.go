// Package logging configures the zerolog loggers used by the Homi client,
// the browse CLI and the browse proxy.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level written.
	Level LogLevel

	// Pretty switches from JSON lines to the human-readable console writer.
	Pretty bool

	// Service is attached to every entry as "service" when set.
	Service string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(string(cfg.Level)))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	logger := ctx.Logger()

	log.Logger = logger
	return logger
}

// ParseLevel converts a level name to a zerolog level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger derives a logger tagged with the given component name from the
// global logger.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: request flow and cache decisions
//   - query built for a page fetch, cache hit/miss, conditional request
//   - stale responses discarded after a newer reset
//   - filter snapshot changes
//
// Info: normal operation
//   - reset fetches triggered by a filter change
//   - proxy startup/shutdown
//
// Warn: degraded but continuing
//   - a page fetch failed and pagination was stopped
//   - cache or rate limit state errors
//   - unreadable saved-jobs data
//
// Error: the operation could not complete
//   - request blocked by the rate limit tracker
//   - configuration errors
//
// Context fields:
//   - resource: browse resource path (/professionals, /jobs)
//   - page, limit, reset: fetch parameters
//   - seq: fetch sequence number
//   - status: HTTP status code
//   - error_class: client, server, rate_limit, network, decode
//   - filters: canonical filter key
