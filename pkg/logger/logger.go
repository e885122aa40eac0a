package logger

import (
	"context"
	"log/slog"
	"os"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	VendorIDKey  contextKey = "vendor_id"
)

// identityKeys are the fields WithContext lifts out of a request context,
// in the order they appear in log lines.
var identityKeys = []contextKey{RequestIDKey, UserIDKey, VendorIDKey}

var defaultLogger = newDefault()

// newDefault builds the process logger from the environment: LOG_LEVEL=debug
// lowers the threshold, LOG_FORMAT=text swaps JSON for human-readable output.
func newDefault() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if os.Getenv("LOG_LEVEL") == "debug" {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if os.Getenv("LOG_FORMAT") == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func Default() *slog.Logger {
	return defaultLogger
}

// WithRequestID stamps the request ID onto the context so every later log
// call on that request carries it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// WithUserID marks the context as acting for an end-user or admin account.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}

// WithVendorID marks the context as acting for a vendor account.
func WithVendorID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, VendorIDKey, id)
}

// WithContext returns the logger enriched with whichever identity fields
// the context carries.
func WithContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	for _, key := range identityKeys {
		if v := ctx.Value(key); v != nil {
			logger = logger.With(string(key), v)
		}
	}
	return logger
}

func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Info(msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Error(msg, args...)
}

func DebugContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Debug(msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Warn(msg, args...)
}
