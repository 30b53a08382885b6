package core

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"gridpulse/internal/config"
)

func TestRateLimitScopedToV1(t *testing.T) {
	cfg := &config.Config{
		RateLimit: config.RateLimitConfig{Window: 15 * time.Minute, Ceiling: 1},
	}
	srv, err := NewServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	srv.RateLimitStore = NewMemoryRateLimitStore()
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		r.Get("/grid", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	srv.MountRoutes()

	do := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "198.51.100.7:4411"
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		return rec.Code
	}

	// The v1 surface is budgeted: a ceiling of 1 rejects the second request.
	if code := do("/v1/grid"); code != http.StatusOK {
		t.Fatalf("first /v1/grid status = %d, want 200", code)
	}
	if code := do("/v1/grid"); code != http.StatusTooManyRequests {
		t.Fatalf("second /v1/grid status = %d, want 429", code)
	}

	// The health endpoint is never budgeted, even for a client whose v1
	// budget is exhausted.
	for i := 0; i < 5; i++ {
		if code := do("/health"); code != http.StatusOK {
			t.Fatalf("/health request %d status = %d, want 200", i+1, code)
		}
	}
}
