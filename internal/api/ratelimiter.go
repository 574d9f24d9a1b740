package api

import (
	"net/http"

	"golang.org/x/time/rate"
)

const (
	requestLimitDetails = "rate limit exceeded, please retry shortly"
	searchLimitDetails  = "too many shelf searches in flight, please retry shortly"
)

// rateLimiter gates requests before they reach the searches, which are
// CPU-bound and can run for seconds on a large catalog.
type rateLimiter interface {
	Allow() bool
}

type limiterAdapter struct {
	limiter *rate.Limiter
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &limiterAdapter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (l *limiterAdapter) Allow() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}

// rateLimitMiddleware rejects requests the limiter refuses with 429. A nil
// limiter passes everything through.
func rateLimitMiddleware(limiter rateLimiter, details string, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "Too many requests", details)
	})
}
