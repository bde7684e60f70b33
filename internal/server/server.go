// Package server wires the task store to HTTP routes.
package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/broady/taskmaster"
	"github.com/broady/taskmaster/internal/store"
	"github.com/broady/taskmaster/middleware"
	"github.com/broady/taskmaster/task"
)

// Banner is the body of GET /.
const Banner = "TaskMaster API is running"

type options struct {
	logger      *slog.Logger
	corsOrigins []string
	maskErrors  bool
	accessLog   bool
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger used by the app, interceptors and access log.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCORSOrigins restricts cross-origin access. Empty allows every origin.
func WithCORSOrigins(origins ...string) Option {
	return func(o *options) { o.corsOrigins = origins }
}

// WithMaskInternalErrors hides internal error messages from clients.
func WithMaskInternalErrors(mask bool) Option {
	return func(o *options) { o.maskErrors = mask }
}

// WithAccessLog toggles the per-request access log line.
func WithAccessLog(enabled bool) Option {
	return func(o *options) { o.accessLog = enabled }
}

// New builds the task API on top of s.
func New(s *store.Store, opts ...Option) (*taskmaster.App, error) {
	o := options{logger: slog.Default(), accessLog: true}
	for _, opt := range opts {
		opt(&o)
	}

	app := taskmaster.NewApp().
		WithLogger(o.logger).
		WithErrorTransformer(transformError).
		WithValidationMessages(task.MessageFor).
		WithUnaryInterceptor(middleware.LoggingInterceptor(o.logger))
	if o.maskErrors {
		app.WithMaskInternalErrors()
	}
	cors := middleware.DefaultCORSConfig()
	if len(o.corsOrigins) > 0 {
		cors.AllowedOrigins = o.corsOrigins
	}
	if o.accessLog {
		app.WithMiddleware(middleware.AccessLog(o.logger))
	}
	app.WithMiddleware(middleware.CORS(cors))

	if err := task.RegisterValidations(app.Validator()); err != nil {
		return nil, err
	}

	app.Handle("GET /{$}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, Banner)
	}))

	h := &Tasks{store: s}
	h.Register(app.Service("Tasks", "/api/tasks"))
	NewStatus(app, s).Register(app.Service("Status", "/api/status"))

	return app, nil
}

// transformError maps store and domain errors onto API errors. Anything else
// falls through to the default transformer.
func transformError(err error) *taskmaster.Error {
	if errors.Is(err, store.ErrNotFound) {
		return taskmaster.NewError(taskmaster.CodeNotFound, "task not found")
	}
	var verr *task.ValidationError
	if errors.As(err, &verr) {
		return taskmaster.NewError(taskmaster.CodeInvalidArgument, verr.Error()).
			WithDetails(verr.Details())
	}
	return nil
}
