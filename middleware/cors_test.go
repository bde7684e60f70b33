package middleware

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("expected AllowedOrigins to be [*], got %v", cfg.AllowedOrigins)
	}
	for _, m := range []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"} {
		if !slices.Contains(cfg.AllowedMethods, m) {
			t.Errorf("expected %s in AllowedMethods %v", m, cfg.AllowedMethods)
		}
	}
	if !slices.Contains(cfg.AllowedHeaders, "Content-Type") {
		t.Errorf("expected Content-Type in AllowedHeaders %v", cfg.AllowedHeaders)
	}
}

func TestCORS_NilConfig(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()

	CORS(nil)(okHandler()).ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("expected default Access-Control-Allow-Origin *, got %s", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestCORS_Preflight(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for preflight request")
	})

	req := httptest.NewRequest("OPTIONS", "/api/tasks/1", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	w := httptest.NewRecorder()

	CORS(DefaultCORSConfig())(handler).ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	methods := w.Header().Get("Access-Control-Allow-Methods")
	if !strings.Contains(methods, "PUT") || !strings.Contains(methods, "DELETE") {
		t.Errorf("expected PUT and DELETE in Access-Control-Allow-Methods, got %q", methods)
	}
	if w.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Error("expected Access-Control-Allow-Headers header to be set")
	}
}

func TestCORS_Origins(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *CORSConfig
		origin      string
		wantOrigin  string
		wantCreds   string
		wantVaryHdr bool
	}{
		{
			name:       "specific allowed",
			cfg:        &CORSConfig{AllowedOrigins: []string{"http://example.com", "http://test.com"}},
			origin:     "http://test.com",
			wantOrigin: "http://test.com", wantVaryHdr: true,
		},
		{
			name:   "specific disallowed",
			cfg:    &CORSConfig{AllowedOrigins: []string{"http://example.com"}},
			origin: "http://evil.com",
		},
		{
			name:   "specific without origin header",
			cfg:    &CORSConfig{AllowedOrigins: []string{"http://example.com"}},
			origin: "",
		},
		{
			name:       "empty origins default to wildcard",
			cfg:        &CORSConfig{AllowedOrigins: []string{}},
			origin:     "http://example.com",
			wantOrigin: "*",
		},
		{
			name:       "wildcard with credentials echoes origin",
			cfg:        &CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true},
			origin:     "https://another-domain.com",
			wantOrigin: "https://another-domain.com", wantCreds: "true", wantVaryHdr: true,
		},
		{
			name:       "wildcard with credentials and no origin",
			cfg:        &CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true},
			wantOrigin: "*", wantCreds: "true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/tasks", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			CORS(tt.cfg)(okHandler()).ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCreds {
				t.Errorf("Access-Control-Allow-Credentials = %q, want %q", got, tt.wantCreds)
			}
			if got := w.Header().Get("Vary") == "Origin"; got != tt.wantVaryHdr {
				t.Errorf("Vary: Origin = %v, want %v", got, tt.wantVaryHdr)
			}
		})
	}
}

func TestCORS_PreflightHeaders(t *testing.T) {
	cfg := &CORSConfig{
		AllowedOrigins: []string{"*"},
		ExposedHeaders: []string{"X-Custom-Header", "X-Another-Header"},
		MaxAge:         3600,
	}

	req := httptest.NewRequest("OPTIONS", "/api/tasks", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()

	CORS(cfg)(okHandler()).ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
		t.Errorf("expected Access-Control-Max-Age 3600, got %s", got)
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "X-Custom-Header, X-Another-Header" {
		t.Errorf("expected exposed headers, got %s", got)
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected default allowed methods to be set")
	}
	if w.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Error("expected default allowed headers to be set")
	}
}

func TestCORS_NonPreflightRequest(t *testing.T) {
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest("POST", "/api/tasks", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()

	CORS(DefaultCORSConfig())(handler).ServeHTTP(w, req)

	if !handlerCalled {
		t.Error("expected handler to be called for non-preflight request")
	}
	if w.Code != http.StatusCreated {
		t.Errorf("expected handler status to pass through, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS headers to be set even for non-preflight requests")
	}
}
