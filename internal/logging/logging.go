package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a deliberately small, framework-agnostic logging interface.
// Components depend on it instead of a concrete logger so tests can swap in a dummy.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value any
}

// MaskValue replaces values of sensitive fields.
const MaskValue = "***REDACTED***"

var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"token":               true,
	"password":            true,
	"redis_password":      true,
}

// StdoutLogger is a structured logger that writes one record per line through
// a slog handler. The zero value is not usable; use NewStdoutLogger or NewLogger.
type StdoutLogger struct {
	logger *slog.Logger
}

// Options controls how NewLogger builds its handler.
type Options struct {
	// Verbose enables debug records.
	Verbose bool
	// JSON switches from logfmt-style text to JSON lines.
	JSON bool
	// Component is attached to every record when non-empty.
	Component string
}

// NewStdoutLogger creates a JSON logger on stdout at info level. component is
// optional and becomes a persistent field.
func NewStdoutLogger(component string) *StdoutLogger {
	return NewLogger(os.Stdout, Options{JSON: true, Component: component})
}

// NewLogger creates a logger writing to w.
func NewLogger(w io.Writer, opts Options) *StdoutLogger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}

	l := slog.New(h)
	if opts.Component != "" {
		l = l.With(slog.String("component", opts.Component))
	}
	return &StdoutLogger{logger: l}
}

func (s *StdoutLogger) log(level slog.Level, msg string, fields ...Field) {
	if !s.logger.Enabled(context.Background(), level) {
		return
	}
	s.logger.LogAttrs(context.Background(), level, msg, toAttrs(fields)...)
}

func (s *StdoutLogger) Debug(msg string, fields ...Field) {
	s.log(slog.LevelDebug, msg, fields...)
}

func (s *StdoutLogger) Info(msg string, fields ...Field) {
	s.log(slog.LevelInfo, msg, fields...)
}

func (s *StdoutLogger) Warn(msg string, fields ...Field) {
	s.log(slog.LevelWarn, msg, fields...)
}

func (s *StdoutLogger) Error(msg string, fields ...Field) {
	s.log(slog.LevelError, msg, fields...)
}

// With returns a child logger carrying fields on every record.
func (s *StdoutLogger) With(fields ...Field) Logger {
	attrs := toAttrs(fields)
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return &StdoutLogger{logger: s.logger.With(args...)}
}

func toAttrs(fields []Field) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		if sensitiveKeys[strings.ToLower(f.Key)] {
			attrs = append(attrs, slog.String(f.Key, MaskValue))
			continue
		}
		if err, ok := f.Value.(error); ok {
			attrs = append(attrs, slog.String(f.Key, err.Error()))
			continue
		}
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	return attrs
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field)  {}
func (nopLogger) Info(string, ...Field)   {}
func (nopLogger) Warn(string, ...Field)   {}
func (nopLogger) Error(string, ...Field)  {}
func (n nopLogger) With(...Field) Logger { return n }
