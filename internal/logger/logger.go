// Package logger is the process-wide slog setup. Attributes attached to a
// context with With are added to every record logged through the *Context
// functions, so a request id or job name follows the work through the layers.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

type attrsKey struct{}

// With returns a context whose log records carry args as extra attributes.
func With(ctx context.Context, args ...any) context.Context {
	prev, _ := ctx.Value(attrsKey{}).([]any)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

// contextHandler copies the attributes stored by With onto each record.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if args, ok := ctx.Value(attrsKey{}).([]any); ok {
			r.Add(args...)
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(contextHandler{handler})
}

// Initialize sets up the global logger with the specified level and format
func Initialize(level, format string) {
	defaultLogger = newLogger(os.Stdout, level, format)
	slog.SetDefault(defaultLogger)
}

func get() *slog.Logger {
	if defaultLogger == nil {
		Initialize("info", "text")
	}
	return defaultLogger
}

func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	get().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	get().Error(msg, args...)
}

func DebugContext(ctx context.Context, msg string, args ...any) {
	get().DebugContext(ctx, msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	get().InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	get().WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	get().ErrorContext(ctx, msg, args...)
}

// EnterMethod logs method entry at debug level.
func EnterMethod(methodName string, args ...any) {
	allArgs := append([]any{"method", methodName, "event", "enter"}, args...)
	get().Debug("→ Method entered", allArgs...)
}

// ExitMethod logs method exit at debug level.
func ExitMethod(methodName string, args ...any) {
	allArgs := append([]any{"method", methodName, "event", "exit"}, args...)
	get().Debug("← Method exited", allArgs...)
}

// ExitMethodWithError logs a failed method exit at error level.
func ExitMethodWithError(methodName string, err error, args ...any) {
	allArgs := append([]any{"method", methodName, "event", "exit", "error", err}, args...)
	get().Error("← Method exited with error", allArgs...)
}

// DatabaseCall logs a store statement before it runs.
func DatabaseCall(operation, table string, args ...any) {
	allArgs := append([]any{"operation", operation, "table", table}, args...)
	get().Debug("→ Database call", allArgs...)
}

// DatabaseResult logs the outcome of a store statement.
func DatabaseResult(operation string, rowsAffected int64, err error, args ...any) {
	allArgs := append([]any{"operation", operation, "rows_affected", rowsAffected}, args...)
	if err != nil {
		allArgs = append(allArgs, "error", err)
		get().Error("← Database call failed", allArgs...)
	} else {
		get().Debug("← Database call succeeded", allArgs...)
	}
}

// ExternalServiceCall logs a call leaving the process.
func ExternalServiceCall(service, operation string, args ...any) {
	allArgs := append([]any{"service", service, "operation", operation}, args...)
	get().Debug("→ External service call", allArgs...)
}

// ExternalServiceResult logs the outcome of an external call.
func ExternalServiceResult(service, operation string, err error, args ...any) {
	allArgs := append([]any{"service", service, "operation", operation}, args...)
	if err != nil {
		allArgs = append(allArgs, "error", err)
		get().Error("← External service call failed", allArgs...)
	} else {
		get().Debug("← External service call succeeded", allArgs...)
	}
}
