package core

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gridpulse/internal/config"
	"gridpulse/internal/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewServer(&config.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	return srv
}

func TestRecoverer(t *testing.T) {
	srv := newTestServer(t)

	handler := srv.Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler exploded")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/grid", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), string(types.ErrCodeInternalUnexpected)) {
		t.Errorf("body %q should carry the internal error code", rec.Body.String())
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = types.GetRequestID(r.Context())
	}))

	// Generated when absent.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/grid", nil))
	if seen == "" {
		t.Error("request ID should be generated")
	}
	if got := rec.Header().Get("X-Request-Id"); got != seen {
		t.Errorf("echoed X-Request-Id = %q, want %q", got, seen)
	}

	// Propagated when supplied by the caller.
	req := httptest.NewRequest(http.MethodGet, "/v1/grid", nil)
	req.Header.Set("X-Request-Id", "caller-supplied")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "caller-supplied" {
		t.Errorf("request ID = %q, want caller-supplied", seen)
	}
}

func TestClientIdentityMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		remoteAddr string
		want       string
	}{
		{"api key caller", "secret-key", "10.0.0.5:4411", "key:secret-key"},
		{"anonymous caller by ip", "", "10.0.0.5:4411", "ip:10.0.0.5"},
		{"remote addr without port", "", "10.0.0.5", "ip:10.0.0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := ClientIdentityMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = types.GetClientIdentity(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/v1/grid", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.apiKey != "" {
				req.Header.Set("X-Api-Key", tt.apiKey)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("identity = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponseCapture(t *testing.T) {
	// Implicit 200 via Write.
	rec := httptest.NewRecorder()
	rc := &responseCapture{ResponseWriter: rec}
	if _, err := rc.Write([]byte("ok")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if rc.statusCode != http.StatusOK {
		t.Errorf("implicit statusCode = %d, want 200", rc.statusCode)
	}

	// Explicit code wins; later writes do not overwrite it.
	rec = httptest.NewRecorder()
	rc = &responseCapture{ResponseWriter: rec}
	rc.WriteHeader(http.StatusTeapot)
	_, _ = rc.Write([]byte("short and stout"))
	if rc.statusCode != http.StatusTeapot {
		t.Errorf("statusCode = %d, want 418", rc.statusCode)
	}
}

type staticProbe struct {
	name string
	err  error
}

func (p staticProbe) Name() string                { return p.name }
func (p staticProbe) Check(context.Context) error { return p.err }
