package rest

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
)

const minLimiterIdle = time.Minute

type playerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per active player. A bucket idle long
// enough to have refilled is dropped, since a fresh one behaves the same.
type RateLimiter struct {
	every rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	limiters  map[string]*playerLimiter
	lastSweep time.Time
}

func NewRateLimiter(cfg config.RateLimit) *RateLimiter {
	perMinute := max(cfg.RequestsPerMinute, 1)
	burst := max(cfg.Burst, 1)
	interval := time.Minute / time.Duration(perMinute)

	return &RateLimiter{
		every:    rate.Every(interval),
		burst:    burst,
		idle:     max(interval*time.Duration(burst), minLimiterIdle),
		now:      time.Now,
		limiters: make(map[string]*playerLimiter),
	}
}

func (that *RateLimiter) allow(playerID string) bool {
	now := that.now()

	that.mu.Lock()
	defer that.mu.Unlock()

	that.sweep(now)

	entry, ok := that.limiters[playerID]
	if !ok {
		entry = &playerLimiter{limiter: rate.NewLimiter(that.every, that.burst)}
		that.limiters[playerID] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// sweep drops idle buckets at most once per idle period.
func (that *RateLimiter) sweep(now time.Time) {
	if now.Sub(that.lastSweep) < that.idle {
		return
	}
	that.lastSweep = now

	for playerID, entry := range that.limiters {
		if now.Sub(entry.lastSeen) >= that.idle {
			delete(that.limiters, playerID)
		}
	}
}

func (that *RateLimiter) size() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.limiters)
}

// Middleware must run after playerIdentity.
func (that *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !that.allow(c.GetString(playerIDKey)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
