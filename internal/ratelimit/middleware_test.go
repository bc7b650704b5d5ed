package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, max int) Handler {
	t.Helper()
	limiter, _ := newTestLimiter(t)
	return Handler{
		Limiter: limiter,
		Config: Config{
			Key:    func(*http.Request) string { return "10.0.0.1" },
			Window: time.Second,
			Max:    max,
		},
	}
}

func TestMiddlewareEnforcesLimit(t *testing.T) {
	handler := newTestHandler(t, 1)
	wrapped := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/c1/quote/shipping", nil)

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req.Clone(req.Context()))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req.Clone(req.Context()))
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Equal(t, "1", rr.Header().Get("X-RateLimit-Limit"))
	require.NotEmpty(t, rr.Header().Get("Retry-After"))
	require.JSONEq(t, `{"error":{"code":"rate_limited","message":"too many quote requests"}}`, rr.Body.String())
}

func TestMiddlewareProceedsOnLimiterError(t *testing.T) {
	handler := newTestHandler(t, 1)
	_ = handler.Limiter.Client.Close()

	var reported error
	handler.OnError = func(err error) { reported = err }

	wrapped := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/carts/c1/quote/shipping", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Error(t, reported)
}

func TestMiddlewareBypassedWithoutKeyFunc(t *testing.T) {
	handler := Handler{}
	wrapped := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
}
