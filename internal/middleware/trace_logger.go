// Package middleware holds the HTTP middleware shared by the adsignal
// handlers: request IDs, trace-aware logging and ad-influence detection.
package middleware

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type loggerKey struct{}

// WithTraceLogger stores a request-scoped logger in the context carrying the
// trace and span IDs of the active span and the request ID, when present.
func WithTraceLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scoped := withTraceFields(r.Context(), logger)
			if id := RequestIDFromContext(r.Context()); id != "" {
				scoped = scoped.With(zap.String("request_id", id))
			}
			if scoped != logger {
				r = r.WithContext(context.WithValue(r.Context(), loggerKey{}, scoped))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoggerFromContext returns the logger stored by WithTraceLogger. Without
// one, fallback is returned, annotated with the span from ctx if any.
func LoggerFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return logger
	}
	return withTraceFields(ctx, fallback)
}

// LoggerFromRequest is LoggerFromContext for r's context.
func LoggerFromRequest(r *http.Request, fallback *zap.Logger) *zap.Logger {
	return LoggerFromContext(r.Context(), fallback)
}

func withTraceFields(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
