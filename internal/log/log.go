// Package log provides the logging infrastructure shared by all docchat
// components.
//
// It exposes a thin layer over log/slog:
//   - A type alias for *slog.Logger used as a constructor dependency
//   - Factory functions producing configured loggers
//   - A Nop logger for tests
//
// Loggers are injected, never pulled from a global. Each component receives
// one via its constructor and may add context with logger.With():
//
//	logger := log.New(log.Config{Level: slog.LevelDebug})
//	engine := rag.NewEngine(dir, embedder, params, logger.With("component", "rag"))
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a type alias for *slog.Logger. Using the standard library type
// directly keeps full compatibility with the slog ecosystem and avoids a
// custom interface that would have to be re-wrapped at every boundary.
type Logger = *slog.Logger

// Config defines logger configuration options.
type Config struct {
	// Level sets the minimum log level. Default: slog.LevelInfo
	Level slog.Level

	// JSON enables JSON format output. Default: false (text format)
	JSON bool

	// AddSource adds source file information to log entries. Default: false
	AddSource bool
}

// New creates a logger with the given configuration, writing to os.Stderr.
// Stderr keeps stdout free for command output (ask, ingest print results there).
func New(cfg Config) Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter creates a logger that writes to the specified writer.
// Useful for tests that want to inspect log output.
func NewWithWriter(w io.Writer, cfg Config) Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// NewNop creates a logger that discards all output.
func NewNop() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
