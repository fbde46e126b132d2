package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"lifeops/internal/shared/contextkeys"

	"github.com/sirupsen/logrus"
)

// Constants for configuration
const (
	// Log formats
	FormatJSON = "json"
	FormatText = "text"

	// Backends
	BackendLogrus = "logrus"
	BackendZap    = "zap"

	envProduction = "production"

	// Timestamp format
	timestampFormat = "2006-01-02T15:04:05.000Z07:00"
	textTimestamp   = "2006-01-02 15:04:05"
)

// Logger defines the interface for structured logging operations
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	WithFields(fields map[string]interface{}) Logger
	WithContext(ctx context.Context) Logger
	WithComponent(component string) Logger
}

// Options selects backend, level and output format
type Options struct {
	Level       string
	Format      string
	Backend     string
	Environment string
	Output      io.Writer
}

// New builds a logger for the given options
func New(opts Options) (Logger, error) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	switch strings.ToLower(opts.Backend) {
	case "", BackendLogrus:
		return newLogrusLogger(opts)
	case BackendZap:
		return newZapLogger(opts)
	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

// NewLogger creates a logrus logger configured from LOG_LEVEL, LOG_FORMAT and APP_ENV
func NewLogger() Logger {
	l, err := newLogrusLogger(Options{
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
		Environment: os.Getenv("APP_ENV"),
		Output:      os.Stdout,
	})
	if err != nil {
		return NewNop()
	}
	return l
}

// jsonOutput reports whether the structured JSON encoding should be used
func (o Options) jsonOutput() bool {
	switch strings.ToLower(o.Format) {
	case FormatJSON:
		return true
	case FormatText:
		return false
	}
	return o.Environment == envProduction
}

// LogrusLogger implements the Logger interface using logrus
type LogrusLogger struct {
	entry *logrus.Entry
}

func newLogrusLogger(opts Options) (*LogrusLogger, error) {
	logger := logrus.New()
	logger.SetLevel(parseLogrusLevel(opts.Level))
	logger.SetFormatter(logrusFormatter(opts))
	logger.SetOutput(opts.Output)

	return &LogrusLogger{
		entry: logrus.NewEntry(logger),
	}, nil
}

// Debug logs a debug message
func (l *LogrusLogger) Debug(args ...interface{}) {
	l.entry.Debug(args...)
}

// Info logs an info message
func (l *LogrusLogger) Info(args ...interface{}) {
	l.entry.Info(args...)
}

// Warn logs a warning message
func (l *LogrusLogger) Warn(args ...interface{}) {
	l.entry.Warn(args...)
}

// Error logs an error message
func (l *LogrusLogger) Error(args ...interface{}) {
	l.entry.Error(args...)
}

// Fatal logs a fatal message and exits
func (l *LogrusLogger) Fatal(args ...interface{}) {
	l.entry.Fatal(args...)
}

func (l *LogrusLogger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *LogrusLogger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *LogrusLogger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *LogrusLogger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *LogrusLogger) Fatalf(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}

// WithFields adds structured fields to the logger
func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{
		entry: l.entry.WithFields(logrus.Fields(fields)),
	}
}

// WithContext adds the request id and user id carried by ctx
func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return l
	}
	return &LogrusLogger{
		entry: l.entry.WithFields(logrus.Fields(fields)),
	}
}

// WithComponent adds component name to the logger
func (l *LogrusLogger) WithComponent(component string) Logger {
	return &LogrusLogger{
		entry: l.entry.WithField("component", component),
	}
}

// contextFields extracts the well-known string values from ctx
func contextFields(ctx context.Context) map[string]interface{} {
	fields := map[string]interface{}{}
	if ctx == nil {
		return fields
	}
	addContextField(ctx, contextkeys.RequestIDKey, "request_id", fields)
	addContextField(ctx, contextkeys.UserIDKey, "user_id", fields)
	addContextField(ctx, contextkeys.ComponentKey, "component", fields)
	return fields
}

func addContextField(ctx context.Context, key interface{}, fieldName string, fields map[string]interface{}) {
	if val := ctx.Value(key); val != nil {
		if strVal, ok := val.(string); ok && strVal != "" {
			fields[fieldName] = strVal
		}
	}
}

func parseLogrusLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

func logrusFormatter(opts Options) logrus.Formatter {
	if opts.jsonOutput() {
		return &logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		}
	}

	// Text formatter for development
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: textTimestamp,
		ForceColors:     opts.Output == os.Stdout,
	}
}

// nopLogger discards everything
type nopLogger struct{}

// NewNop returns a logger that discards all output
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(...interface{}) {}

func (nopLogger) Info(...interface{}) {}

func (nopLogger) Warn(...interface{}) {}

func (nopLogger) Error(...interface{}) {}

func (nopLogger) Fatal(...interface{}) {}

func (nopLogger) Debugf(string, ...interface{}) {}

func (nopLogger) Infof(string, ...interface{}) {}

func (nopLogger) Warnf(string, ...interface{}) {}

func (nopLogger) Errorf(string, ...interface{}) {}

func (nopLogger) Fatalf(string, ...interface{}) {}

func (n nopLogger) WithFields(map[string]interface{}) Logger { return n }

func (n nopLogger) WithContext(context.Context) Logger { return n }

func (n nopLogger) WithComponent(string) Logger { return n }
