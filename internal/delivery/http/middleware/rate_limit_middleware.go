package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"vows-and-wishes/pkg/response"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const RateLimitExceededMessage = "Rate limit exceeded. Try again later."

const (
	limiterIdleTTL = 10 * time.Minute
	sweepInterval  = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware keeps one token bucket per client IP. Buckets idle
// for longer than limiterIdleTTL are dropped.
type RateLimitMiddleware struct {
	mu         sync.Mutex
	limiters   map[string]*clientLimiter
	lastSweep  time.Time
	rps        rate.Limit
	burst      int
	trustProxy bool
	now        func() time.Time
	log        *logrus.Logger
}

// NewRateLimitMiddleware keys buckets on the peer address. With trustProxy
// the address appended by the proxy to X-Forwarded-For is used instead.
func NewRateLimitMiddleware(rps float64, burst int, trustProxy bool, log *logrus.Logger) *RateLimitMiddleware {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitMiddleware{
		limiters:   make(map[string]*clientLimiter),
		rps:        rate.Limit(rps),
		burst:      burst,
		trustProxy: trustProxy,
		now:        time.Now,
		log:        log,
	}
}

// getLimiter returns the limiter for ip, creating one if it doesn't exist
func (m *RateLimitMiddleware) getLimiter(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweepLocked(now)
	}

	entry, exists := m.limiters[ip]
	if !exists {
		entry = &clientLimiter{limiter: rate.NewLimiter(m.rps, m.burst)}
		m.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (m *RateLimitMiddleware) sweepLocked(now time.Time) {
	for ip, entry := range m.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(m.limiters, ip)
		}
	}
	m.lastSweep = now
}

// Clients returns how many buckets are held
func (m *RateLimitMiddleware) Clients() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}

func (m *RateLimitMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := m.clientIP(r)
		if !m.getLimiter(ip).Allow() {
			m.log.WithField("ip", ip).Warn("Rate limit exceeded")
			response.TooManyRequests(w, RateLimitExceededMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is the peer address, or the last X-Forwarded-For hop behind a trusted proxy
func (m *RateLimitMiddleware) clientIP(r *http.Request) string {
	if m.trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			hops := strings.Split(forwarded, ",")
			if ip := strings.TrimSpace(hops[len(hops)-1]); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
