package taskmaster

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestRequestFromContext(t *testing.T) {
	t.Run("with request in context", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/tasks", nil)
		w := httptest.NewRecorder()
		ctx := newContext(context.Background(), w, req, "Tasks", "List")

		result := RequestFromContext(ctx)
		if result != req {
			t.Error("expected request to be returned from context")
		}
	})

	t.Run("without request in context", func(t *testing.T) {
		if RequestFromContext(context.Background()) != nil {
			t.Error("expected nil when request not in context")
		}
	})
}

func TestSetHeader(t *testing.T) {
	t.Run("with writer in context", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/tasks", nil)
		w := httptest.NewRecorder()
		ctx := newContext(context.Background(), w, req, "Tasks", "List")

		ctx.SetHeader("X-Custom-Header", "custom-value")

		if w.Header().Get("X-Custom-Header") != "custom-value" {
			t.Errorf("expected header to be set, got %s", w.Header().Get("X-Custom-Header"))
		}
	})

	t.Run("without writer in context", func(t *testing.T) {
		ctx := NewContext(context.Background(), "Tasks", "List")
		// Should not panic
		ctx.SetHeader("X-Custom-Header", "custom-value")
	})
}

func TestFromContext(t *testing.T) {
	ctx := NewContext(context.Background(), "Tasks", "Get")

	t.Run("direct", func(t *testing.T) {
		got, ok := FromContext(ctx)
		if !ok || got != ctx {
			t.Fatal("expected FromContext to return the same *Context")
		}
	})

	t.Run("derived", func(t *testing.T) {
		derived, cancel := context.WithCancel(ctx)
		defer cancel()
		got, ok := FromContext(derived)
		if !ok || got != ctx {
			t.Fatal("expected FromContext to find *Context through a derived context")
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, ok := FromContext(context.Background()); ok {
			t.Error("expected no *Context in background context")
		}
	})
}

func TestContextNames(t *testing.T) {
	ctx := NewContext(context.Background(), "Tasks", "Update")
	if ctx.Service() != "Tasks" {
		t.Errorf("Service() = %q", ctx.Service())
	}
	if ctx.Endpoint() != "Update" {
		t.Errorf("Endpoint() = %q", ctx.Endpoint())
	}
	if ctx.EndpointID() != "Tasks.Update" {
		t.Errorf("EndpointID() = %q", ctx.EndpointID())
	}
	if ctx.Logger() == nil {
		t.Error("Logger() must never be nil")
	}
	if ctx.HTTPRequest() != nil {
		t.Error("HTTPRequest() should be nil outside an HTTP call")
	}
}
