package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/patrickwarner/adsignal/internal/observability"
	"github.com/patrickwarner/adsignal/internal/ratelimit"
)

// RateLimit rejects requests with 429 once a client has spent its token
// bucket. Clients are keyed by ClientIP. name labels the rejection metric.
func RateLimit(l *ratelimit.ClientLimiter, metrics observability.MetricsRegistry, name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !l.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(ClientIP(r)) {
				metrics.IncrementRateLimitHits(name)
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop, falling back to the
// remote address without its port.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
