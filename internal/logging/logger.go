package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields is a set of structured log fields.
type Fields = logrus.Fields

// LogConfig selects level, format and destination.
type LogConfig struct {
	Level string
	// Format is "text" or "json".
	Format string
	// Output is "stdout", "stderr", "discard", or a file path rotated by
	// lumberjack.
	Output string
	// MaxSizeMB and MaxBackups bound file rotation.
	MaxSizeMB  int
	MaxBackups int
}

// Logger is the diagnostic logger. The TUI owns the terminal, so it writes
// to .draftdesk/logs/draftdesk.log.
type Logger struct {
	*logrus.Logger
	closer io.Closer
}

// New builds a logger from cfg.
func New(cfg LogConfig) (*Logger, error) {
	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	base := logrus.New()
	base.SetLevel(parsed)
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		base.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	l := &Logger{Logger: base}
	switch out := strings.TrimSpace(cfg.Output); out {
	case "", "stderr":
		base.SetOutput(os.Stderr)
	case "stdout":
		base.SetOutput(os.Stdout)
	case "discard":
		base.SetOutput(io.Discard)
	default:
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return nil, fmt.Errorf("logging: ensure log dir: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   out,
			MaxSize:    orDefault(cfg.MaxSizeMB, 5),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
		}
		base.SetOutput(rotator)
		l.closer = rotator
	}
	return l, nil
}

// NewFile writes text logs at level to path.
func NewFile(path, level string) (*Logger, error) {
	return New(LogConfig{Level: level, Format: "text", Output: path})
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l, _ := New(LogConfig{Output: "discard"})
	return l
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Printf writes a single info line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.Logger == nil {
		return
	}
	l.Infof(strings.TrimRight(format, "\n"), args...)
}

func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
