package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitor holds the rate limiter and the last time we saw this IP.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter hands out one token bucket per client IP.
type ipLimiter struct {
	every   time.Duration
	burst   int
	message string

	mu       sync.Mutex
	visitors map[string]*visitor
}

func newIPLimiter(every time.Duration, burst int, message string) *ipLimiter {
	return &ipLimiter{
		every:    every,
		burst:    burst,
		message:  message,
		visitors: make(map[string]*visitor),
	}
}

func (l *ipLimiter) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (l *ipLimiter) prune(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTTL {
			delete(l.visitors, ip)
		}
	}
}

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func (l *ipLimiter) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visitors = make(map[string]*visitor)
}

func (l *ipLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.get(c.ClientIP(), time.Now()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": l.message})
			return
		}
		c.Next()
	}
}

const (
	visitorBurst      = 100
	writeVisitorBurst = 20
	visitorIdleTTL    = 10 * time.Minute
)

var (
	// 1 request/second on average after the burst.
	general = newIPLimiter(time.Second, visitorBurst, "Too many requests. Please slow down.")
	// Result and catalogue writes: 1 request every 10 seconds after the burst.
	writes = newIPLimiter(10*time.Second, writeVisitorBurst, "Too many writes. Please wait and try again.")
)

// RateLimitMiddleware applies a simple per-IP rate limit for all routes.
func RateLimitMiddleware() gin.HandlerFunc {
	return general.middleware()
}

// WriteRateLimitMiddleware applies a stricter per-IP rate limit for writes.
func WriteRateLimitMiddleware() gin.HandlerFunc {
	return writes.middleware()
}

// PruneVisitors drops limiters for IPs not seen within visitorIdleTTL.
func PruneVisitors(now time.Time) {
	general.prune(now)
	writes.prune(now)
}

// StartVisitorJanitor prunes idle limiters until stop is closed.
func StartVisitorJanitor(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				PruneVisitors(now)
			}
		}
	}()
}
