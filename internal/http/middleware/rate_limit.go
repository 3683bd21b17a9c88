package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"wazmeow/pkg/logger"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
	KeyFunc           func(*http.Request) string
}

// DefaultRateLimitConfig returns a default rate limit configuration
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerMinute: 100,
		BurstSize:         10,
	}
}

// RateLimitMiddleware enforces the default per-client request budget on
// every API route. Keyed by client IP unless the config overrides KeyFunc.
func RateLimitMiddleware(config *RateLimitConfig, log logger.Logger) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultRateLimitConfig()
	}

	keyFunc := httprate.KeyByIP
	if config.KeyFunc != nil {
		keyFunc = func(r *http.Request) (string, error) {
			return config.KeyFunc(r), nil
		}
	}

	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(rateLimitExceededHandler(log)),
	)
}

// ExpensiveRouteRateLimit is the tighter budget applied to session
// create and connect endpoints, which fan out into pairing and
// socket construction. 50 requests per 5 minutes per client.
func ExpensiveRouteRateLimit(log logger.Logger) func(http.Handler) http.Handler {
	return httprate.Limit(
		50,
		5*time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimitExceededHandler(log)),
	)
}

func rateLimitExceededHandler(log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if log != nil {
			log.WarnWithFields("Rate limit exceeded", logger.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"success": false, "error": "Rate limit exceeded", "code": "RATE_LIMIT_EXCEEDED"}`))
	}
}
