package taskmaster

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

// Endpoint is the interface for registered handlers.
// It is exported so users can pass it to Register, but sealed so they cannot implement it.
type Endpoint interface {
	// Metadata returns route metadata for this endpoint.
	Metadata() *EndpointMetadata
	serveHTTP(ctx *Context, cfg handlerConfig)
}

// EndpointMetadata describes how an endpoint is exposed over HTTP.
type EndpointMetadata struct {
	HTTPMethod string
	// Path is relative to the owning service's prefix. It may contain
	// net/http wildcards such as "/{id}".
	Path     string
	Status   int
	Request  reflect.Type
	Response reflect.Type
}

// handlerConfig is assembled by the App for each request.
type handlerConfig struct {
	interceptors       []UnaryInterceptor
	errorTransformer   ErrorTransformer
	validationMessages ValidationMessages
	maskInternalErrors bool
	logger             *slog.Logger
	maxRequestBodySize uint64
	validate           *validator.Validate
	decoder            *schema.Decoder
}

// Handler is a typed endpoint for a specific Request/Response pair.
//
// Requests are decoded from the JSON body (for methods that carry one), then
// path wildcards and, for body-less methods, the query string are decoded on
// top with gorilla/schema using `schema` struct tags. The result is validated
// with the App's validator before the handler runs.
type Handler[Req any, Res any] struct {
	fn                 func(context.Context, Req) (Res, error)
	method             string
	path               string
	status             int
	interceptors       []UnaryInterceptor
	maxRequestBodySize *uint64
}

// Query creates a GET endpoint. The response status is 200.
func Query[Req any, Res any](fn func(context.Context, Req) (Res, error)) *Handler[Req, Res] {
	return &Handler[Req, Res]{fn: fn, method: http.MethodGet, status: http.StatusOK}
}

// Exec creates a POST endpoint. The response status is 200; use Method and
// WithStatus for other verbs and codes.
func Exec[Req any, Res any](fn func(context.Context, Req) (Res, error)) *Handler[Req, Res] {
	return &Handler[Req, Res]{fn: fn, method: http.MethodPost, status: http.StatusOK}
}

// Method sets the HTTP method.
func (h *Handler[Req, Res]) Method(m string) *Handler[Req, Res] {
	h.method = strings.ToUpper(m)
	return h
}

// Path sets the route path relative to the service prefix, e.g. "/{id}".
func (h *Handler[Req, Res]) Path(p string) *Handler[Req, Res] {
	h.path = p
	return h
}

// WithStatus sets the status code written on success. 204 writes no body.
func (h *Handler[Req, Res]) WithStatus(code int) *Handler[Req, Res] {
	h.status = code
	return h
}

// WithUnaryInterceptor adds an interceptor to this handler.
// Handler interceptors execute after global and service interceptors.
func (h *Handler[Req, Res]) WithUnaryInterceptor(i UnaryInterceptor) *Handler[Req, Res] {
	h.interceptors = append(h.interceptors, i)
	return h
}

// WithMaxRequestBodySize overrides the App's request body limit for this
// handler. A value of 0 means no limit.
func (h *Handler[Req, Res]) WithMaxRequestBodySize(size uint64) *Handler[Req, Res] {
	h.maxRequestBodySize = &size
	return h
}

// Metadata returns the runtime metadata for the handler.
func (h *Handler[Req, Res]) Metadata() *EndpointMetadata {
	return &EndpointMetadata{
		HTTPMethod: h.method,
		Path:       h.path,
		Status:     h.status,
		Request:    reflect.TypeFor[Req](),
		Response:   reflect.TypeFor[Res](),
	}
}

func (h *Handler[Req, Res]) serveHTTP(ctx *Context, cfg handlerConfig) {
	w := ctx.writer

	req, err := h.decode(ctx, cfg)
	if err != nil {
		handleError(w, err, cfg)
		return
	}

	all := make([]UnaryInterceptor, 0, len(cfg.interceptors)+len(h.interceptors))
	all = append(all, cfg.interceptors...)
	all = append(all, h.interceptors...)

	final := func(c context.Context, reqAny any) (any, error) {
		reqTyped, ok := reqAny.(Req)
		if !ok {
			return nil, Errorf(CodeInternal, "interceptor modified request type incorrectly")
		}
		return h.fn(c, reqTyped)
	}

	var res any
	if chain := chainInterceptors(all); chain != nil {
		res, err = chain(ctx, req, final)
	} else {
		res, err = final(ctx, req)
	}
	if err != nil {
		handleError(w, err, cfg)
		return
	}

	if h.status == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.status)
	if err := encodeResponse(w, res); err != nil {
		// Response may be partially written, nothing we can do.
		cfg.logger.Error("failed to encode response",
			slog.String("endpoint", ctx.EndpointID()),
			slog.Any("error", err))
	}
}

// decode builds a Req from the HTTP request and validates it.
func (h *Handler[Req, Res]) decode(ctx *Context, cfg handlerConfig) (Req, error) {
	var req Req
	r := ctx.request

	// target is the pointer we decode into. If Req is itself a pointer type,
	// allocate its element.
	var target any
	reqType := reflect.TypeFor[Req]()
	isStruct := reqType.Kind() == reflect.Struct
	if reqType.Kind() == reflect.Pointer {
		val := reflect.New(reqType.Elem())
		req = val.Interface().(Req)
		target = val.Interface()
		isStruct = reqType.Elem().Kind() == reflect.Struct
	} else {
		target = &req
	}

	if hasBody(h.method) && r.Body != nil && r.Body != http.NoBody {
		body := io.Reader(r.Body)
		limit := cfg.maxRequestBodySize
		if h.maxRequestBodySize != nil {
			limit = *h.maxRequestBodySize
		}
		if limit > 0 {
			body = http.MaxBytesReader(ctx.writer, r.Body, int64(limit))
		}
		if err := json.NewDecoder(body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				return req, err
			}
			return req, Errorf(CodeInvalidArgument, "failed to decode body: %v", err)
		}
	}

	if isStruct {
		values := url.Values{}
		if !hasBody(h.method) {
			values = r.URL.Query()
		}
		for _, name := range pathWildcards(h.path) {
			values.Set(name, r.PathValue(name))
		}
		if len(values) > 0 {
			if err := cfg.decoder.Decode(target, values); err != nil {
				return req, Errorf(CodeInvalidArgument, "failed to decode query: %v", err)
			}
		}
		if err := cfg.validate.Struct(target); err != nil {
			return req, err
		}
	}
	return req, nil
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// pathWildcards returns the wildcard names in a net/http pattern path.
func pathWildcards(path string) []string {
	var names []string
	for _, seg := range strings.Split(path, "/") {
		if len(seg) < 3 || seg[0] != '{' || seg[len(seg)-1] != '}' {
			continue
		}
		name := strings.TrimSuffix(seg[1:len(seg)-1], "...")
		if name != "$" {
			names = append(names, name)
		}
	}
	return names
}

func handleError(w http.ResponseWriter, err error, cfg handlerConfig) {
	var svcErr *Error
	if cfg.errorTransformer != nil {
		svcErr = cfg.errorTransformer(err)
	}
	if svcErr == nil {
		svcErr = defaultTransform(err, cfg.validationMessages)
	}
	if svcErr.Code == CodeInternal {
		cfg.logger.Error("internal error", slog.Any("error", err))
		if cfg.maskInternalErrors {
			svcErr = NewError(CodeInternal, "internal server error")
		}
	}
	writeError(w, svcErr, cfg.logger)
}
