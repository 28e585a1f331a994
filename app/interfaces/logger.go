package interfaces

import (
	"context"
	"log/slog"
	"strings"
)

// Logger is the logging contract shared by the engine packages.
// Levels are "debug", "info", "warn" and "error".
type Logger interface {
	Log(level, message string)
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Log(level, message string) {}

// SlogLogger forwards engine log lines to a slog.Logger
type SlogLogger struct {
	L *slog.Logger
}

// NewSlogLogger wraps l, falling back to slog.Default()
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{L: l}
}

func (s *SlogLogger) Log(level, message string) {
	s.L.Log(context.Background(), ParseLevel(level), message)
}

// ParseLevel maps a level name to a slog level; unknown names are info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OrNop returns l, or a NopLogger when l is nil
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// RecordingLogger keeps every line; used by tests and by "config check"
type RecordingLogger struct {
	Lines []LogLine
}

// LogLine is one recorded log entry
type LogLine struct {
	Level   string
	Message string
}

func (r *RecordingLogger) Log(level, message string) {
	r.Lines = append(r.Lines, LogLine{Level: level, Message: message})
}

// Contains reports whether any recorded message contains substr
func (r *RecordingLogger) Contains(substr string) bool {
	for _, l := range r.Lines {
		if strings.Contains(l.Message, substr) {
			return true
		}
	}
	return false
}
