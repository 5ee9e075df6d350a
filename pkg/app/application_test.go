package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bedbook/pkg/client"
	"bedbook/pkg/config"
	"bedbook/pkg/logger"
	"bedbook/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

type stubHandler struct{}

func (stubHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/bookings/user", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})
	router.POST("/api/v1/payments/webhook", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Port:                 "8080",
		RateLimitRequests:    100,
		RateLimitWindow:      time.Minute,
		RequestTimeout:       time.Second,
		IdempotencyTTL:       time.Minute,
		MaxRequestSize:       1 << 20,
		PaymentWebhookSecret: "secret",
		Log:                  logger.Discard(),
		Client:               client.NewClient(),
	}
}

func TestApplication_MiddlewareChain(t *testing.T) {
	a := NewApplication(testConfig())
	a.SetApp(stubHandler{})
	defer a.rateLimiter.Stop()
	defer a.idempotencyStore.Stop()
	h := a.Handler()

	tests := []struct {
		name   string
		req    func() *http.Request
		status int
	}{
		{
			name:   "liveness bypasses principal",
			req:    func() *http.Request { return httptest.NewRequest(http.MethodGet, "/health", nil) },
			status: http.StatusOK,
		},
		{
			name:   "protected route without principal",
			req:    func() *http.Request { return httptest.NewRequest(http.MethodGet, "/api/v1/bookings/user", nil) },
			status: http.StatusUnauthorized,
		},
		{
			name: "protected route with principal",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/user", nil)
				r.Header.Set(middleware.UserIDHeader, "user-1")
				return r
			},
			status: http.StatusOK,
		},
		{
			name: "unsigned webhook",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(`{}`))
				r.Header.Set("Content-Type", "application/json")
				return r
			},
			status: http.StatusUnauthorized,
		},
		{
			name: "signed webhook without principal",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(`{}`))
				r.Header.Set("Content-Type", "application/json")
				r.Header.Set(middleware.PaymentSignatureHeader, middleware.Sign([]byte(`{}`), "secret"))
				return r
			},
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.req())
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
		})
	}
}
