package taskmaster

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey struct {
	name string
}

var endpointContextKey = &contextKey{"endpoint"}

// Context carries request metadata through interceptors and handlers.
// It embeds the request's context.Context, so it can be passed anywhere a
// context.Context is expected.
type Context struct {
	context.Context

	service  string
	endpoint string
	request  *http.Request
	writer   http.ResponseWriter
	logger   *slog.Logger
}

// NewContext creates a Context for the named endpoint. The App creates these
// for every request; tests create them directly.
func NewContext(parent context.Context, service, endpoint string) *Context {
	return newContext(parent, nil, nil, service, endpoint)
}

func newContext(parent context.Context, w http.ResponseWriter, r *http.Request, service, endpoint string) *Context {
	ctx := &Context{
		service:  service,
		endpoint: endpoint,
		request:  r,
		writer:   w,
	}
	ctx.Context = context.WithValue(parent, endpointContextKey, ctx)
	return ctx
}

// Service returns the name of the service the endpoint belongs to.
func (c *Context) Service() string { return c.service }

// Endpoint returns the endpoint name within its service.
func (c *Context) Endpoint() string { return c.endpoint }

// EndpointID returns "Service.Endpoint".
func (c *Context) EndpointID() string { return c.service + "." + c.endpoint }

// HTTPRequest returns the underlying request, or nil outside an HTTP call.
func (c *Context) HTTPRequest() *http.Request { return c.request }

// Logger returns the app logger, never nil.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// SetHeader sets an HTTP response header. It is a no-op outside an HTTP call.
func (c *Context) SetHeader(key, value string) {
	if c.writer != nil {
		c.writer.Header().Set(key, value)
	}
}

// FromContext returns the *Context stored in ctx by the App.
func FromContext(ctx context.Context) (*Context, bool) {
	if c, ok := ctx.(*Context); ok {
		return c, true
	}
	c, ok := ctx.Value(endpointContextKey).(*Context)
	return c, ok
}

// RequestFromContext returns the HTTP request from the context.
func RequestFromContext(ctx context.Context) *http.Request {
	if c, ok := FromContext(ctx); ok {
		return c.request
	}
	return nil
}
