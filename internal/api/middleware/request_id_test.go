package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/statusrelay/statusrelay/internal/api/middleware"
)

func TestRequestID_GeneratesID(t *testing.T) {
	var captured string
	h := middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		captured = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, strings.HasPrefix(captured, "req_"))
	assert.Equal(t, captured, rec.Header().Get("X-Request-Id"))
}

func TestRequestID_PropagatesInboundID(t *testing.T) {
	var captured string
	h := middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		captured = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "req_upstream")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req_upstream", captured)
	assert.Equal(t, "req_upstream", rec.Header().Get("X-Request-Id"))
}
