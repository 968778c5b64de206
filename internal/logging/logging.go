// Package logging builds the slog logger used by the tscale command.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for file logging.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// Options selects the log level and sink.
type Options struct {
	// Verbose lowers the level from Info to Debug.
	Verbose bool

	// File, when set, sends logs to a size-rotated file instead of the
	// console writer.
	File string
}

// New returns a text logger writing to console, or to a rotating file when
// opts.File is set. The returned closer releases the file and must be
// called on shutdown; for console logging it is a no-op.
func New(console io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if opts.File == "" {
		return slog.New(slog.NewTextHandler(console, handlerOpts)), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
		return nil, nil, err
	}
	sink := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSizeMB, // megabytes
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays, // days
		Compress:   true,
	}
	return slog.New(slog.NewTextHandler(sink, handlerOpts)), sink, nil
}

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
