package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/broady/taskmaster"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestLoggingInterceptor_Success(t *testing.T) {
	var buf bytes.Buffer
	interceptor := LoggingInterceptor(newTestLogger(&buf))

	ctx := taskmaster.NewContext(context.Background(), "Tasks", "List")

	handler := func(ctx context.Context, req any) (any, error) {
		return "response", nil
	}

	result, err := interceptor(ctx, "request", handler)

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result != "response" {
		t.Errorf("expected response, got %v", result)
	}

	logOutput := buf.String()
	for _, want := range []string{"request started", "request completed", "Tasks.List", "duration"} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("expected %q in log output:\n%s", want, logOutput)
		}
	}
}

func TestLoggingInterceptor_Error(t *testing.T) {
	var buf bytes.Buffer
	interceptor := LoggingInterceptor(newTestLogger(&buf))

	ctx := taskmaster.NewContext(context.Background(), "Tasks", "Get")

	customErr := taskmaster.NewError(taskmaster.CodeNotFound, "task not found")
	handler := func(ctx context.Context, req any) (any, error) {
		return nil, customErr
	}

	result, err := interceptor(ctx, "request", handler)

	if err != customErr {
		t.Errorf("expected custom error, got %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result, got %v", result)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "request failed") {
		t.Error("expected 'request failed' in log output")
	}
	if !strings.Contains(logOutput, "not_found") || !strings.Contains(logOutput, "task not found") {
		t.Error("expected error details in log output")
	}
}

func TestLoggingInterceptor_NilLogger(t *testing.T) {
	// Should not panic with nil logger, should use default
	interceptor := LoggingInterceptor(nil)

	ctx := taskmaster.NewContext(context.Background(), "Tasks", "List")

	result, err := interceptor(ctx, "request", func(ctx context.Context, req any) (any, error) {
		return "response", nil
	})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result != "response" {
		t.Errorf("expected response, got %v", result)
	}
}

func TestLoggingInterceptor_PropagatesContextAndRequest(t *testing.T) {
	var buf bytes.Buffer
	interceptor := LoggingInterceptor(newTestLogger(&buf))

	type ctxKey string
	key := ctxKey("test-key")
	baseCtx := context.WithValue(context.Background(), key, "test-value")
	ctx := taskmaster.NewContext(baseCtx, "Tasks", "Create")

	type testReq struct {
		Title string
	}
	expectedReq := testReq{Title: "Buy groceries"}

	_, err := interceptor(ctx, expectedReq, func(ctx context.Context, req any) (any, error) {
		if ctx.Value(key) != "test-value" {
			t.Error("expected context value to be propagated")
		}
		if req != expectedReq {
			t.Error("expected request to be passed through")
		}
		return nil, nil
	})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAccessLog(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantLevel  string
		wantStatus int
	}{
		{"implicit ok", 0, "hello", "INFO", http.StatusOK},
		{"created", http.StatusCreated, "{}", "INFO", http.StatusCreated},
		{"not found", http.StatusNotFound, "", "WARN", http.StatusNotFound},
		{"server error", http.StatusInternalServerError, "", "ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				if tt.body != "" {
					w.Write([]byte(tt.body))
				}
			})

			req := httptest.NewRequest("PUT", "/api/tasks/abc", nil)
			w := httptest.NewRecorder()
			AccessLog(newTestLogger(&buf))(handler).ServeHTTP(w, req)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["status"] != float64(tt.wantStatus) {
				t.Errorf("status = %v, want %d", entry["status"], tt.wantStatus)
			}
			if entry["method"] != "PUT" || entry["path"] != "/api/tasks/abc" {
				t.Errorf("unexpected method/path in %v", entry)
			}
			if entry["bytes"] != float64(len(tt.body)) {
				t.Errorf("bytes = %v, want %d", entry["bytes"], len(tt.body))
			}
		})
	}
}

func TestAccessLog_WrapsApp(t *testing.T) {
	var buf bytes.Buffer
	app := taskmaster.NewApp().WithMiddleware(AccessLog(newTestLogger(&buf)))

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/missing", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(buf.String(), `"status":404`) {
		t.Errorf("expected 404 to be logged, got %q", buf.String())
	}
}

func TestStatusRecorder_Unwrap(t *testing.T) {
	w := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: w}
	if rec.Unwrap() != w {
		t.Error("Unwrap should return the wrapped writer")
	}
}
