package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/broady/taskmaster"
)

// LoggingInterceptor creates an interceptor that logs endpoint calls using slog.
// It logs the start and end of each call, including duration and error status.
func LoggingInterceptor(logger *slog.Logger) taskmaster.UnaryInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx *taskmaster.Context, req any, next taskmaster.HandlerFunc) (any, error) {
		start := time.Now()

		logger.DebugContext(ctx, "request started",
			slog.String("endpoint", ctx.EndpointID()),
		)

		res, err := next(ctx, req)
		duration := time.Since(start)

		if err != nil {
			logger.WarnContext(ctx, "request failed",
				slog.String("endpoint", ctx.EndpointID()),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
		} else {
			logger.InfoContext(ctx, "request completed",
				slog.String("endpoint", ctx.EndpointID()),
				slog.Duration("duration", duration),
			)
		}

		return res, err
	}
}

// statusRecorder captures the status code and body size written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// AccessLog returns an HTTP middleware that logs one line per request,
// including requests that never reach an endpoint (404, 405, preflight).
// Server errors log at error level, client errors at warn.
func AccessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", rec.bytes),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
