package httpx

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const rateLimiterSweepInterval = 5 * time.Minute

// RateLimiter counts hits per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) RateDecision
	Close() error
}

type RateDecision struct {
	Allowed   bool
	Count     int
	WindowEnd time.Time
}

type memoryRateLimiter struct {
	mu      sync.Mutex
	entries map[string]rateState
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

type rateState struct {
	count     int
	windowEnd time.Time
}

func NewMemoryRateLimiter() RateLimiter {
	rl := newMemoryRateLimiter(time.Now)
	go rl.sweepLoop()
	return rl
}

func newMemoryRateLimiter(now func() time.Time) *memoryRateLimiter {
	return &memoryRateLimiter{
		entries: make(map[string]rateState),
		now:     now,
		stopCh:  make(chan struct{}),
	}
}

func (rl *memoryRateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) RateDecision {
	if limit <= 0 {
		return RateDecision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	state, ok := rl.entries[key]
	if !ok || now.After(state.windowEnd) {
		state = rateState{count: 1, windowEnd: now.Add(window)}
		rl.entries[key] = state
		return RateDecision{Allowed: true, Count: 1, WindowEnd: state.windowEnd}
	}
	if state.count >= limit {
		return RateDecision{Allowed: false, Count: state.count, WindowEnd: state.windowEnd}
	}
	state.count++
	rl.entries[key] = state
	return RateDecision{Allowed: true, Count: state.count, WindowEnd: state.windowEnd}
}

func (rl *memoryRateLimiter) sweepLoop() {
	ticker := time.NewTicker(rateLimiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup(rl.now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *memoryRateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, state := range rl.entries {
		if now.After(state.windowEnd) {
			delete(rl.entries, key)
		}
	}
}

func (rl *memoryRateLimiter) Close() error {
	rl.once.Do(func() { close(rl.stopCh) })
	return nil
}

// withRateLimit throttles next per client IP using the router's auth limit.
func (r *Router) withRateLimit(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if r.authRateLimit <= 0 {
			next(w, req)
			return
		}
		d := r.limiter.Allow(req.Context(), route+"|"+rateLimitKeyIP(req), r.authRateLimit, r.authRateWindow)

		remaining := r.authRateLimit - d.Count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(r.authRateLimit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !d.Allowed {
			if !d.WindowEnd.IsZero() {
				secs := int(time.Until(d.WindowEnd).Seconds()) + 1
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
			r.metrics.RateLimited(route)
			writeFailure(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next(w, req)
	}
}

func rateLimitKeyIP(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}
	if host == "" {
		host = "unknown"
	}
	return "ip:" + host
}
