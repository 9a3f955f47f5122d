// Package logging provides a leveled logger backed by zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

// ParseLevel parses a log level string.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format selects the output encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Logger is a leveled logger. Child loggers created with With copy the
// parent's level and output at creation time.
type Logger struct {
	mu     *sync.Mutex
	level  Level
	format Format
	output io.Writer
	fields []field
	zl     zerolog.Logger
}

type field struct {
	key   string
	value interface{}
}

// New creates a new console logger writing to stderr.
func New(level Level) *Logger {
	return NewWithFormat(level, FormatConsole, os.Stderr)
}

// NewWithFormat creates a logger with an explicit format and destination.
func NewWithFormat(level Level, format Format, w io.Writer) *Logger {
	l := &Logger{
		mu:     &sync.Mutex{},
		level:  level,
		format: format,
		output: w,
	}
	l.rebuild()
	return l
}

// rebuild recreates the zerolog logger (must be called with mu held or
// before the logger is shared).
func (l *Logger) rebuild() {
	out := l.output
	if l.format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: l.output, TimeFormat: "15:04:05.000", NoColor: true}
	}

	ctx := zerolog.New(out).Level(l.level.zerolog()).With().Timestamp()
	for _, f := range l.fields {
		ctx = ctx.Interface(f.key, f.value)
	}
	l.zl = ctx.Logger()
}

// SetOutput sets the log output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.rebuild()
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.rebuild()
}

// With returns a child logger that adds a structured field to every entry.
func (l *Logger) With(key string, value interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	fields := make([]field, len(l.fields), len(l.fields)+1)
	copy(fields, l.fields)

	child := &Logger{
		mu:     l.mu,
		level:  l.level,
		format: l.format,
		output: l.output,
		fields: append(fields, field{key, value}),
	}
	child.rebuild()
	return child
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}
	l.zl.WithLevel(level.zerolog()).Msgf(format, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	return NewWithFormat(LevelError+1, FormatJSON, io.Discard)
}
