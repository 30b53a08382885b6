package core

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"gridpulse/internal/types"
)

// Fallback rate-limit parameters used when the configuration does not
// specify a window or ceiling.
const (
	defaultRateLimitWindow = 15 * time.Minute
	defaultRateLimitMax    = 100
)

// RateLimitStore abstracts the backing store for rate limiting.
type RateLimitStore interface {
	// IncrementAndCheck atomically increments the counter for the given key
	// and checks whether the limit has been exceeded within the window.
	IncrementAndCheck(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error)
}

// RateLimitResult contains the outcome of a rate limit check.
type RateLimitResult struct {
	// Allowed indicates whether the request is within the rate limit.
	Allowed bool
	// Remaining is the number of requests remaining in the current window.
	Remaining int
	// ResetAt is the time when the current rate limit window resets.
	ResetAt time.Time
}

// RateLimit enforces the fixed-window request budget on the inbound proxy
// surface. It gates only direct client-facing requests; internally scheduled
// refresh cycles never pass through this middleware.
//
// The key is the caller identity resolved by ClientIdentityMiddleware. If no
// RateLimitStore is configured (e.g., during tests), the middleware passes
// through without limiting. On store errors the middleware fails open so a
// limiter outage cannot block all traffic.
//
// On every request the middleware sets the standard headers:
//   - X-RateLimit-Limit: maximum requests in the window.
//   - X-RateLimit-Remaining: requests remaining.
//   - X-RateLimit-Reset: Unix timestamp when the window resets.
//
// When rate limited it also sets Retry-After (seconds until reset).
func (s *Server) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.RateLimitStore == nil {
			next.ServeHTTP(w, r)
			return
		}

		identity := types.GetClientIdentity(r.Context())
		if identity == "" {
			next.ServeHTTP(w, r)
			return
		}

		limit, window := s.rateLimitParams()

		result, err := s.RateLimitStore.IncrementAndCheck(r.Context(), identity, limit, window)
		if err != nil {
			s.Logger.Error("rate limit store error",
				slog.String("client", identity),
				slog.String("error", err.Error()),
			)
			next.ServeHTTP(w, r)
			return
		}

		setRateLimitHeaders(w, limit, result)

		if !result.Allowed {
			s.Logger.Warn("rate limit exceeded",
				slog.String("client", identity),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)

			retryAfter := int(time.Until(result.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			requestID := types.GetRequestID(r.Context())
			resp := APIErrorResponse{
				Error: ErrorDetail{
					Code:      string(types.ErrCodeRateLimit),
					Message:   "Rate limit exceeded. Please retry after the reset time.",
					RequestID: requestID,
				},
			}
			JSON(w, r, http.StatusTooManyRequests, resp)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimitParams resolves the configured ceiling and window, falling back
// to the defaults.
func (s *Server) rateLimitParams() (int, time.Duration) {
	limit, window := defaultRateLimitMax, defaultRateLimitWindow
	if s.Config != nil {
		if s.Config.RateLimit.Ceiling > 0 {
			limit = s.Config.RateLimit.Ceiling
		}
		if s.Config.RateLimit.Window > 0 {
			window = s.Config.RateLimit.Window
		}
	}
	return limit, window
}

// setRateLimitHeaders writes the standard X-RateLimit-* headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, result RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// windowCounter tracks one client's request count within the current fixed
// window.
type windowCounter struct {
	count       int
	windowStart time.Time
}

// MemoryRateLimitStore is an in-process fixed-window RateLimitStore. Windows
// are aligned to wall-clock multiples of the window duration so every client
// sees the same reset boundary regardless of when their first request lands.
type MemoryRateLimitStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	// lastSweep records when stale counters were last evicted; the sweep runs
	// at most once per window so steady traffic does not pay a full map scan
	// on every request.
	lastSweep time.Time
	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewMemoryRateLimitStore creates an empty in-memory store.
func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		counters: make(map[string]*windowCounter),
		now:      time.Now,
	}
}

// IncrementAndCheck implements RateLimitStore with an atomic
// check-and-increment under a single lock.
func (m *MemoryRateLimitStore) IncrementAndCheck(_ context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Truncate(window)

	m.sweep(windowStart)

	c, ok := m.counters[key]
	if !ok || !c.windowStart.Equal(windowStart) {
		c = &windowCounter{windowStart: windowStart}
		m.counters[key] = c
	}

	c.count++
	resetAt := windowStart.Add(window)

	if c.count > limit {
		return RateLimitResult{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   resetAt,
		}, nil
	}

	return RateLimitResult{
		Allowed:   true,
		Remaining: limit - c.count,
		ResetAt:   resetAt,
	}, nil
}

// sweep evicts counters from expired windows so clients seen once do not
// occupy the map for the life of the process. Callers must hold m.mu. The
// scan runs at most once per window boundary.
func (m *MemoryRateLimitStore) sweep(windowStart time.Time) {
	if !m.lastSweep.Before(windowStart) {
		return
	}
	m.lastSweep = windowStart
	for key, c := range m.counters {
		if c.windowStart.Before(windowStart) {
			delete(m.counters, key)
		}
	}
}
