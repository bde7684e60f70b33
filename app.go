// Package taskmaster is the HTTP layer of the TaskMaster API: a small app
// router that binds typed Go handlers to REST routes, with request decoding,
// validation, interceptors and a uniform JSON error body.
//
//	app := taskmaster.NewApp()
//	tasks := app.Service("Tasks", "/api/tasks")
//	tasks.Register("Get", taskmaster.Query(getTask).Path("/{id}"))
//	http.ListenAndServe(":3001", app.Handler())
package taskmaster

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"runtime/debug"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

// App is the central router for API handlers.
// It manages route registration, middleware, interceptors, and error handling.
// Use Handler() to get an http.Handler for use with http.ListenAndServe.
type App struct {
	mu                 sync.RWMutex
	mux                *http.ServeMux
	routes             map[string]*route // by pattern
	names              map[string]string // "Service.Endpoint" -> pattern
	errorTransformer   ErrorTransformer
	validationMessages ValidationMessages
	maskInternalErrors bool
	interceptors       []UnaryInterceptor
	middlewares        []func(http.Handler) http.Handler
	logger             *slog.Logger
	maxRequestBodySize uint64
	validate           *validator.Validate
	decoder            *schema.Decoder
}

type route struct {
	service      string
	name         string
	endpoint     Endpoint
	interceptors []UnaryInterceptor
}

// probeMethods are tried against unmatched requests to tell 404 from 405.
var probeMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}

// NewApp creates an App with a 1MB request body limit and a validator that
// reports fields by their JSON names.
func NewApp() *App {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			if alias := f.Tag.Get("schema"); alias != "" {
				return alias
			}
			return f.Name
		case "":
			return f.Name
		}
		return name
	})

	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return &App{
		mux:                http.NewServeMux(),
		routes:             make(map[string]*route),
		names:              make(map[string]string),
		maxRequestBodySize: 1 << 20, // 1MB default
		validate:           v,
		decoder:            dec,
	}
}

// WithErrorTransformer adds a custom error transformer.
// It returns the app for chaining.
func (a *App) WithErrorTransformer(fn ErrorTransformer) *App {
	a.errorTransformer = fn
	return a
}

// WithValidationMessages sets the wording used for custom validation tags
// registered on Validator.
func (a *App) WithValidationMessages(fn ValidationMessages) *App {
	a.validationMessages = fn
	return a
}

// WithMaskInternalErrors enables masking of internal error messages.
// The original error is still logged and visible to interceptors.
func (a *App) WithMaskInternalErrors() *App {
	a.maskInternalErrors = true
	return a
}

// WithUnaryInterceptor adds a global interceptor.
//
// Interceptor execution order:
//  1. Global interceptors (added via App.WithUnaryInterceptor)
//  2. Service interceptors (added via Service.WithUnaryInterceptor)
//  3. Handler interceptors (added via Handler.WithUnaryInterceptor)
//  4. Handler function
//
// Within each level, interceptors execute in the order they were added.
func (a *App) WithUnaryInterceptor(i UnaryInterceptor) *App {
	a.interceptors = append(a.interceptors, i)
	return a
}

// WithMiddleware adds an HTTP middleware to wrap the app.
// Middleware is applied in the order added (first added is outermost).
func (a *App) WithMiddleware(mw func(http.Handler) http.Handler) *App {
	a.middlewares = append(a.middlewares, mw)
	return a
}

// WithLogger sets a custom logger for the app.
// If not set, slog.Default() will be used.
func (a *App) WithLogger(logger *slog.Logger) *App {
	a.logger = logger
	return a
}

// WithMaxRequestBodySize sets the default maximum request body size for all handlers.
// A value of 0 means no limit.
func (a *App) WithMaxRequestBodySize(size uint64) *App {
	a.maxRequestBodySize = size
	return a
}

// Validator returns the validator used for request structs, so callers can
// register custom tags before serving.
func (a *App) Validator() *validator.Validate {
	return a.validate
}

func (a *App) getLogger() *slog.Logger {
	if a.logger == nil {
		return slog.Default()
	}
	return a.logger
}

// Handle registers a plain http.Handler for a net/http pattern such as
// "GET /{$}". Plain handlers bypass decoding and interceptors.
func (a *App) Handle(pattern string, h http.Handler) {
	a.mux.Handle(pattern, h)
}

// Handler returns an http.Handler for use with http.ListenAndServe or other
// HTTP servers. The returned handler includes all configured middleware.
func (a *App) Handler() http.Handler {
	var h http.Handler = http.HandlerFunc(a.serveHTTP)
	// Apply middleware in reverse order so first added is outermost
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}
	return h
}

// Routes returns the registered endpoints as "Service.Endpoint" -> "METHOD /path".
func (a *App) Routes() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]string, len(a.names))
	for k, v := range a.names {
		out[k] = v
	}
	return out
}

// RouteList returns the registered patterns sorted by path then method.
func (a *App) RouteList() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.routes))
	for pattern := range a.routes {
		out = append(out, pattern)
	}
	sort.Slice(out, func(i, j int) bool {
		mi, pi, _ := strings.Cut(out[i], " ")
		mj, pj, _ := strings.Cut(out[j], " ")
		if pi != pj {
			return pi < pj
		}
		return mi < mj
	})
	return out
}

// serveHTTP handles incoming API requests (internal, called via Handler()).
func (a *App) serveHTTP(w http.ResponseWriter, req *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			a.getLogger().Error("PANIC recovered",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			writeError(w, NewError(CodeInternal, fmt.Sprintf("internal server error (panic): %v", rec)), a.logger)
		}
	}()

	if _, pattern := a.mux.Handler(req); pattern != "" {
		a.mux.ServeHTTP(w, req)
		return
	}

	if allowed := a.allowedMethods(req); len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		writeError(w, Errorf(CodeMethodNotAllowed, "method %s not allowed", req.Method), a.logger)
		return
	}
	writeError(w, NewError(CodeNotFound, "route not found"), a.logger)
}

// allowedMethods reports which methods would match req's path.
func (a *App) allowedMethods(req *http.Request) []string {
	var allowed []string
	for _, m := range probeMethods {
		if m == req.Method {
			continue
		}
		probe := req.Clone(req.Context())
		probe.Method = m
		if _, pattern := a.mux.Handler(probe); pattern != "" {
			allowed = append(allowed, m)
		}
	}
	return allowed
}

// Service returns a Service namespace rooted at prefix, e.g. "/api/tasks".
func (a *App) Service(name, prefix string) *Service {
	return &Service{
		app:    a,
		name:   name,
		prefix: strings.TrimSuffix(prefix, "/"),
	}
}

// Service is a named group of endpoints sharing a path prefix and interceptors.
type Service struct {
	app          *App
	name         string
	prefix       string
	interceptors []UnaryInterceptor
}

// WithUnaryInterceptor adds an interceptor to this service.
// Service interceptors execute after global interceptors but before handler interceptors.
// See App.WithUnaryInterceptor for the complete execution order.
func (s *Service) WithUnaryInterceptor(i UnaryInterceptor) *Service {
	s.interceptors = append(s.interceptors, i)
	return s
}

// Register registers a handler under the given endpoint name. The route is
// the handler's method plus the service prefix joined with its path.
// Registering the same method and path again replaces the previous handler
// and logs a warning.
func (s *Service) Register(name string, ep Endpoint) {
	meta := ep.Metadata()
	path := s.prefix + meta.Path
	if path == "" {
		path = "/"
	}
	pattern := meta.HTTPMethod + " " + path

	a := s.app
	a.mu.Lock()
	defer a.mu.Unlock()

	r := &route{
		service:      s.name,
		name:         name,
		endpoint:     ep,
		interceptors: slices.Clone(s.interceptors),
	}
	if prev, exists := a.routes[pattern]; exists {
		a.getLogger().Warn("duplicate route registration",
			slog.String("service", s.name),
			slog.String("endpoint", name),
			slog.String("route", pattern))
		delete(a.names, prev.service+"."+prev.name)
		a.routes[pattern] = r
		a.names[s.name+"."+name] = pattern
		return
	}
	a.routes[pattern] = r
	a.names[s.name+"."+name] = pattern

	a.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		a.dispatch(pattern, w, req)
	})
}

func (a *App) dispatch(pattern string, w http.ResponseWriter, req *http.Request) {
	a.mu.RLock()
	r := a.routes[pattern]
	a.mu.RUnlock()

	ctx := newContext(req.Context(), w, req, r.service, r.name)
	ctx.logger = a.logger

	interceptors := make([]UnaryInterceptor, 0, len(a.interceptors)+len(r.interceptors))
	interceptors = append(interceptors, a.interceptors...)
	interceptors = append(interceptors, r.interceptors...)

	r.endpoint.serveHTTP(ctx, handlerConfig{
		interceptors:       interceptors,
		errorTransformer:   a.errorTransformer,
		validationMessages: a.validationMessages,
		maskInternalErrors: a.maskInternalErrors,
		logger:             a.getLogger(),
		maxRequestBodySize: a.maxRequestBodySize,
		validate:           a.validate,
		decoder:            a.decoder,
	})
}
