package taskmaster

import (
	"context"
)

// HandlerFunc represents the next handler in an interceptor chain.
// It is passed to [UnaryInterceptor] functions to invoke the next interceptor
// or the final handler.
type HandlerFunc func(ctx context.Context, req any) (res any, err error)

// UnaryInterceptor is a hook that wraps endpoint execution.
//
//	func timing(ctx *taskmaster.Context, req any, next taskmaster.HandlerFunc) (any, error) {
//	    start := time.Now()
//	    res, err := next(ctx, req)
//	    log.Printf("%s took %v", ctx.EndpointID(), time.Since(start))
//	    return res, err
//	}
//
// Interceptors can inspect or replace the request before calling next,
// inspect or replace the response after, or short-circuit by returning an
// error without calling next.
type UnaryInterceptor func(ctx *Context, req any, next HandlerFunc) (res any, err error)

// chainInterceptors combines multiple interceptors into a single one.
// The first interceptor in the slice is the outer-most one (runs first).
func chainInterceptors(interceptors []UnaryInterceptor) UnaryInterceptor {
	if len(interceptors) == 0 {
		return nil
	}
	if len(interceptors) == 1 {
		return interceptors[0]
	}
	return func(ctx *Context, req any, handler HandlerFunc) (any, error) {
		// Chain: i[0] -> i[1] -> ... -> handler
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			current := interceptors[i]
			next := chain
			chain = func(c context.Context, req any) (any, error) {
				tc, ok := FromContext(c)
				if !ok {
					tc = ctx
				}
				return current(tc, req, next)
			}
		}
		return chain(ctx, req)
	}
}
