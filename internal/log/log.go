// Package log provides structured logging for the paper NFT tooling.
package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide base logger. Packages that accept a logger
// explicitly fall back to a component logger derived from it.
var Logger zerolog.Logger

// Component loggers.
var (
	Mint      zerolog.Logger
	Verify    zerolog.Logger
	Ledger    zerolog.Logger
	Journal   zerolog.Logger
	Reconcile zerolog.Logger
)

func init() {
	Logger = NewConsoleLogger(os.Stderr, "info")
	initComponentLoggers()
}

// Init configures the base logger. When file is non-empty, logs go to both
// the console and the file; the file always receives JSON.
func Init(level string, jsonOutput bool, file string) error {
	var console io.Writer
	if jsonOutput {
		console = os.Stderr
	} else {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		Logger = zerolog.New(zerolog.MultiLevelWriter(console, f)).
			Level(ParseLevel(level)).
			With().
			Timestamp().
			Logger()
	} else {
		Logger = zerolog.New(console).
			Level(ParseLevel(level)).
			With().
			Timestamp().
			Logger()
	}

	initComponentLoggers()
	return nil
}

// NewConsoleLogger creates a human-readable console logger.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}
	return zerolog.New(output).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// NewJSONLogger creates a structured JSON logger.
func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel converts a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func initComponentLoggers() {
	Mint = WithComponent("mint")
	Verify = WithComponent("verify")
	Ledger = WithComponent("ledger")
	Journal = WithComponent("journal")
	Reconcile = WithComponent("reconcile")
}

// WithComponent returns a logger with a component field.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// Timer logs the duration of an operation at debug level when the returned
// func is called.
func Timer(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("timing")
	}
}
