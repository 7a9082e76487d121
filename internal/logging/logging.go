// Package logging configures the process-wide slog logger with optional
// file rotation.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger. An empty Filename logs to stdout only.
type Options struct {
	Level      string // debug | info | warn | error
	Format     string // json | text
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init installs the configured logger as the slog default.
func Init(opts Options) error {
	var writer io.Writer = os.Stdout

	if opts.Filename != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Filename), 0o755); err != nil {
			return err
		}
		roller := &lumberjack.Logger{
			Filename:   opts.Filename,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		if opts.Format == "json" {
			writer = roller
		} else {
			writer = io.MultiWriter(os.Stdout, roller)
		}
	}

	level := parseLevel(opts.Level)

	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
