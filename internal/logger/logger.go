// Package logger provides structured logging for the director service,
// wrapping zerolog the way the teacher's own application wraps
// github.com/rs/zerolog for request- and execution-scoped logging.
package logger

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config controls log level and output format.
type Config struct {
	Level  string // debug|info|warn|error
	Format string // json|text
}

// Logger wraps zerolog.Logger with the key-value calling convention the
// rest of the codebase (and its tests) already use.
type Logger struct {
	logger zerolog.Logger
}

// New creates a logger from cfg.
func New(cfg Config) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var writer interface{ Write([]byte) (int, error) } = os.Stdout
	if strings.EqualFold(cfg.Format, "text") {
		writer = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	base := zerolog.New(writer).With().Timestamp().Logger().Level(parseLevel(cfg.Level))
	return &Logger{logger: base}
}

// With returns a derived logger carrying the given attributes, used to
// stamp every log line in a tick with thread_id/tick_index.
func (l *Logger) With(args ...interface{}) *Logger {
	ctx := l.logger.With()
	ctx = withFields(ctx, args)
	return &Logger{logger: ctx.Logger()}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	withEventFields(l.logger.Debug(), args).Msg(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) {
	withEventFields(l.logger.Info(), args).Msg(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	withEventFields(l.logger.Warn(), args).Msg(msg)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	withEventFields(l.logger.Error(), args).Msg(msg)
}

// InfoContext logs an info message, attaching any zerolog context a
// caller's middleware stashed on ctx via zerolog.Ctx.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...interface{}) {
	withEventFields(l.fromContext(ctx).Info(), args).Msg(msg)
}

// ErrorContext logs an error message with context.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...interface{}) {
	withEventFields(l.fromContext(ctx).Error(), args).Msg(msg)
}

// fromContext returns the zerolog.Logger a caller's middleware attached
// to ctx via zerolog.Ctx, falling back to l's own logger when ctx
// carries none (zerolog.Ctx returns a disabled no-op logger in that
// case, never nil).
func (l *Logger) fromContext(ctx context.Context) *zerolog.Logger {
	if ctxLogger := zerolog.Ctx(ctx); ctxLogger.GetLevel() != zerolog.Disabled {
		return ctxLogger
	}
	return &l.logger
}

func withFields(ctx zerolog.Context, args []interface{}) zerolog.Context {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, args[i+1])
	}
	return ctx
}

func withEventFields(e *zerolog.Event, args []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	return e
}

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.InfoLevel
	}
	return parsed
}

var defaultLogger = New(Config{Level: "info", Format: "json"})

// Default returns the package-wide default logger.
func Default() *Logger { return defaultLogger }

// SetDefault replaces the package-wide default logger, used by
// cmd/server after config is loaded.
func SetDefault(l *Logger) { defaultLogger = l }
