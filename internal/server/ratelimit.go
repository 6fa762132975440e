package server

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/spigell/vendor-matcher/internal/recommend"
)

const (
	limiterIdleTTL   = time.Hour
	limiterSweepSize = 1024
)

// RateLimit bounds how often a single client may call a route.
type RateLimit struct {
	PerMinute int
	Burst     int
}

func (r RateLimit) enabled() bool { return r.PerMinute > 0 }

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one token bucket per client IP. Idle buckets are swept
// lazily once the map grows.
type ClientLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	now      func() time.Time
	limiters map[string]*clientLimiter
}

func NewClientLimiter(cfg RateLimit, now func() time.Time) *ClientLimiter {
	if now == nil {
		now = time.Now
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &ClientLimiter{
		limit:    rate.Limit(float64(cfg.PerMinute) / 60),
		burst:    burst,
		now:      now,
		limiters: make(map[string]*clientLimiter),
	}
}

// Reserve takes a token for the client. When none is available it returns false
// and how long the client should wait.
func (l *ClientLimiter) Reserve(client string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.limiters) >= limiterSweepSize {
		for key, entry := range l.limiters {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(l.limiters, key)
			}
		}
	}

	entry, ok := l.limiters[client]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[client] = entry
	}
	entry.lastSeen = now

	if entry.limiter.AllowN(now, 1) {
		return true, 0
	}

	r := entry.limiter.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

// Throttle rejects requests over the client limit with 429 and a Retry-After header.
func Throttle(limiter *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, wait := limiter.Reserve(c.ClientIP())
		if allowed {
			c.Next()
			return
		}

		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, recommend.Response{
			Success: false,
			Message: "Too many requests, try again later.",
		})
	}
}
