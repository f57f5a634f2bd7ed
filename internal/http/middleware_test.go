package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"bookbrain/internal/contextutil"
)

// captureDefault routes slog.Default to a buffer for the duration of the test.
func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLoggerMiddleware_AttachesRequestFields(t *testing.T) {
	buf := captureDefault(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextutil.LoggerFromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusAccepted)
	})
	chain := middleware.RequestID(LoggerMiddleware(handler))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/books/b1/ask", nil)
	w := httptest.NewRecorder()
	chain.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d", w.Code, http.StatusAccepted)
	}
	out := buf.String()
	for _, want := range []string{"inside handler", "method=POST", "path=/api/v1/books/b1/ask", "request_id="} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}
}

func TestLoggerMiddleware_NoRequestID(t *testing.T) {
	buf := captureDefault(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextutil.LoggerFromContext(r.Context()).Info("inside handler")
	})
	LoggerMiddleware(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("unexpected request_id without RequestID middleware: %s", buf.String())
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		statusCode int
		shouldLog  bool
	}{
		{
			name:       "question logged",
			method:     http.MethodPost,
			path:       "/api/v1/books/b1/ask",
			statusCode: http.StatusOK,
			shouldLog:  true,
		},
		{
			name:       "healthy health check skipped",
			method:     http.MethodGet,
			path:       "/api/health",
			statusCode: http.StatusOK,
			shouldLog:  false,
		},
		{
			name:       "failing health check logged",
			method:     http.MethodGet,
			path:       "/api/health",
			statusCode: http.StatusServiceUnavailable,
			shouldLog:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req = req.WithContext(contextutil.WithLogger(req.Context(), logger))
			w := httptest.NewRecorder()

			RequestLogger(handler).ServeHTTP(w, req)

			if w.Code != tt.statusCode {
				t.Errorf("status = %d, want %d", w.Code, tt.statusCode)
			}
			if logged := buf.Len() > 0; logged != tt.shouldLog {
				t.Errorf("logged = %v, want %v: %s", logged, tt.shouldLog, buf.String())
			}
			if tt.shouldLog && !strings.Contains(buf.String(), fmt.Sprintf("status=%d", tt.statusCode)) {
				t.Errorf("log line missing status: %s", buf.String())
			}
		})
	}
}

func TestResponseWriter_DefaultsToOK(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	if _, err := rw.Write([]byte("body")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200 when WriteHeader is not called", rw.statusCode)
	}

	rw2 := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	rw2.WriteHeader(http.StatusTeapot)
	if rw2.statusCode != http.StatusTeapot {
		t.Errorf("statusCode = %d, want %d", rw2.statusCode, http.StatusTeapot)
	}
}

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		wantHandled bool
	}{
		{name: "preflight", method: http.MethodOptions, origin: "http://localhost:3000", wantStatus: http.StatusNoContent, wantOrigin: "http://localhost:3000"},
		{name: "echoes origin", method: http.MethodPut, origin: "http://localhost:3000", wantStatus: http.StatusOK, wantOrigin: "http://localhost:3000", wantHandled: true},
		{name: "wildcard without origin", method: http.MethodGet, wantStatus: http.StatusOK, wantOrigin: "*", wantHandled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handled := false
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handled = true
				handler.ServeHTTP(w, r)
			})

			req := httptest.NewRequest(tt.method, "/api/v1/books/b1/document", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			CORS(inner).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "PUT") {
				t.Errorf("Allow-Methods = %q, want PUT allowed for document replacement", got)
			}
			if handled != tt.wantHandled {
				t.Errorf("handler called = %v, want %v", handled, tt.wantHandled)
			}
		})
	}
}
