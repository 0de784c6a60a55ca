package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"instructor-portal/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	name     string
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	now      func() time.Time
	log      *zap.Logger
}

// NewRateLimiter allows perMinute requests per client, with bursts up to perMinute.
func NewRateLimiter(name string, perMinute int, log *zap.Logger) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{
		name:     name,
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
		idleTTL:  10 * time.Minute,
		limiters: make(map[string]*clientLimiter),
		now:      time.Now,
		log:      log,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cl, ok := rl.limiters[key]
	if !ok {
		rl.evictIdle(now)
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastAccess = now
	return cl.limiter.AllowN(now, 1)
}

// evictIdle drops buckets unused for idleTTL; caller holds mu
func (rl *RateLimiter) evictIdle(now time.Time) {
	for key, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > rl.idleTTL {
			delete(rl.limiters, key)
		}
	}
}

// Middleware keys clients by identity when signed in, otherwise by remote IP.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !rl.Allow(key) {
				rl.log.Warn("Rate limit exceeded",
					zap.String("limiter", rl.name),
					zap.String("client", key),
				)
				retryAfter := int(1 / float64(rl.limit))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				utils.ResponseTooManyRequests(w, "Too many requests, please slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if id, ok := utils.GetIdentityIDFromContext(r.Context()); ok {
		return "id:" + id.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
