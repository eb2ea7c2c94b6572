// Package logging provides structured logging for service components. It
// wraps a standard slog.Logger for local logging and can mirror entries to a
// NATS subject so operational tooling streams them without scraping files.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Level represents the severity of a log entry.
type Level string

const (
	// LevelDebug represents debug-level logs
	LevelDebug Level = "DEBUG"
	// LevelInfo represents informational logs
	LevelInfo Level = "INFO"
	// LevelWarn represents warning logs
	LevelWarn Level = "WARN"
	// LevelError represents error logs
	LevelError Level = "ERROR"
)

// Entry is the structured log entry published to NATS.
type Entry struct {
	Timestamp string `json:"timestamp"` // RFC3339 format
	Level     Level  `json:"level"`
	Component string `json:"component"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
}

// Logger logs locally through slog and optionally publishes every entry to
// NATS under "sos.logs.<component>". Publishing is best-effort; a publish
// failure never fails the logging call.
type Logger struct {
	component string
	nc        *nats.Conn
	logger    *slog.Logger
	enabled   bool
}

// NewLogger creates a component logger. A nil NATS connection disables
// publishing; a nil slog logger falls back to slog.Default.
func NewLogger(component string, nc *nats.Conn, logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{
		component: component,
		nc:        nc,
		logger:    logger.With("component", component),
		enabled:   nc != nil,
	}
}

// Debug logs a debug-level message.
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.DebugContext(context.Background(), msg, args...)
	l.publish(LevelDebug, msg, nil)
}

// Info logs an info-level message.
func (l *Logger) Info(msg string, args ...any) {
	l.logger.InfoContext(context.Background(), msg, args...)
	l.publish(LevelInfo, msg, nil)
}

// Warn logs a warning-level message.
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.WarnContext(context.Background(), msg, args...)
	l.publish(LevelWarn, msg, nil)
}

// Error logs an error-level message with the error details.
func (l *Logger) Error(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err)
	}
	l.logger.ErrorContext(context.Background(), msg, args...)
	l.publish(LevelError, msg, err)
}

func (l *Logger) publish(level Level, msg string, err error) {
	if !l.enabled {
		return
	}
	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Component: l.component,
		Message:   msg,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	data, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		return
	}
	subject := fmt.Sprintf("sos.logs.%s", l.component)
	// best effort, dropped entries are acceptable
	_ = l.nc.Publish(subject, data)
}
