package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"honeyshop/internal/activity"
	"honeyshop/pkg/httputil"
)

// RateLimiter throttles requests per client IP. Hitting the limit is
// itself a signal worth capturing, so rejections are reported as
// suspicious activity.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	activity *activity.Logger

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter builds a per-IP limiter allowing rps sustained requests
// with the given burst.
func NewRateLimiter(rps float64, burst int, logger *activity.Logger) *RateLimiter {
	rl := &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		activity: logger,
		visitors: make(map[string]*visitor),
	}
	go rl.evictStale()
	return rl
}

// Handler is the middleware entry point.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := activity.ClientIP(r)
		if !rl.limiterFor(ip).Allow() {
			rl.activity.Suspicious("RATE_LIMITED", activity.Details{
				"ip":   ip,
				"path": r.URL.Path,
			}, r.Header.Get(SessionHeader), activity.FromRequest(r))
			httputil.WriteMessage(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// evictStale drops limiters for IPs idle longer than ten minutes so the
// visitor map cannot grow without bound.
func (rl *RateLimiter) evictStale() {
	for range time.Tick(time.Minute) {
		cutoff := time.Now().Add(-10 * time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if v.lastSeen.Before(cutoff) {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
