package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/statusrelay/statusrelay/internal/api/models"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

// StatusRateLimit applies to the public status-change endpoint
// (30 req/min per IP). The endpoint is unauthenticated, so the limit
// is the only brake on a misbehaving caller flooding the shared bus.
var StatusRateLimit = RateLimitConfig{
	RequestLimit: 30,
	WindowLength: time.Minute,
}

// RateLimitByIP creates a rate limiter middleware keyed by client IP.
// Uses X-Forwarded-For when present (extracted by chi's RealIP
// middleware).
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

// rateLimitExceededHandler writes an RFC7807 Problem response when the
// rate limit is exceeded.
func rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	problem := models.NewTooManyRequests(GetRequestID(r.Context()),
		"Rate limit exceeded. Please try again later.")
	problem.Instance = r.URL.Path
	problem.Write(w)
}
