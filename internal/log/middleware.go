package log

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext extracts a logger from the context, falling back to the
// default slog logger.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// Middleware stores logger in the request context, tagged with the request
// id returned by requestID when it is not empty.
func Middleware(logger *Logger, requestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logger
			if requestID != nil {
				if id := requestID(r); id != "" {
					l = l.With(FieldRequestID, id)
				}
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), l)))
		})
	}
}

// LogHTTPEnd logs a finished request. 4xx responses are warnings and 5xx
// responses are errors.
func LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 500 {
		level = slog.LevelError
	} else if statusCode >= 400 {
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithHTTPResponse(statusCode, durationMs).
		WithClientIP(clientIP)

	FromContext(ctx).Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogError logs err with its category and operation.
func LogError(ctx context.Context, msg string, err error, errorType, operation string) {
	fields := NewFields().
		WithError(err).
		WithOperation(operation)
	fields["error_type"] = errorType

	FromContext(ctx).ErrorContext(ctx, msg, fields.ToSlice()...)
}
