package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pvrsync/internal/config"
)

// RunLogName is the append-only log file written under the configured log
// directory on every invocation.
const RunLogName = "pvrsync.log"

// Options describes logger construction parameters.
type Options struct {
	Level   string
	Format  string
	Console io.Writer
	RunLog  io.Writer
}

// New constructs a slog logger that writes structured output to the console
// writer and tab-separated run-log lines to the run-log writer. Either writer
// may be nil.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var console slog.Handler
	if opts.Console != nil {
		switch format {
		case "json":
			console = slog.NewJSONHandler(opts.Console, &slog.HandlerOptions{Level: levelVar})
		case "console":
			console = newConsoleHandler(opts.Console, levelVar)
		default:
			return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
		}
	}

	var runlog slog.Handler
	if opts.RunLog != nil {
		runlog = newTabHandler(opts.RunLog, levelVar)
	}

	return slog.New(newFanoutHandler(console, runlog)), nil
}

// NewFromConfig creates a logger writing to stderr plus the append-only
// run log under the configured log directory.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Console: os.Stderr})
	}

	opts := Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Console: os.Stderr,
	}

	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		logPath := filepath.Join(cfg.Paths.LogDir, RunLogName)
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", logPath, err)
		}
		opts.RunLog = file
	}

	return New(opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
