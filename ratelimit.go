package restrouter

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the RateLimit middleware.
type RateLimitConfig struct {
	Rate    float64                                      // requests per second
	Burst   int                                          // max burst
	KeyFunc func(r *http.Request) string                 // default: remote IP
	OnLimit func(w http.ResponseWriter, r *http.Request) // default: 429 response
	MaxIdle time.Duration                                // drop limiters idle longer than this (default: 5m)
}

// RateLimit returns middleware that applies a token bucket per key.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = remoteHost
	}
	if cfg.OnLimit == nil {
		cfg.OnLimit = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = 5 * time.Minute
	}

	set := &limiterSet{
		limit:   rate.Limit(cfg.Rate),
		burst:   cfg.Burst,
		maxIdle: cfg.MaxIdle,
		entries: make(map[string]*limiterEntry),
	}
	retryAfter := "1"
	if cfg.Rate > 0 && cfg.Rate < 1 {
		retryAfter = strconv.FormatFloat(1/cfg.Rate, 'f', 0, 64)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !set.get(cfg.KeyFunc(r), time.Now()).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				cfg.OnLimit(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet holds one limiter per key and prunes idle ones on access.
type limiterSet struct {
	limit   rate.Limit
	burst   int
	maxIdle time.Duration

	mu          sync.Mutex
	entries     map[string]*limiterEntry
	lastCleanup time.Time
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastCleanup) >= s.maxIdle {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) > s.maxIdle {
				delete(s.entries, k)
			}
		}
		s.lastCleanup = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
