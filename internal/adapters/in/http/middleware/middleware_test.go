package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/acms/internal/adapters/out/ratelimit"
	"github.com/bnema/acms/internal/usecase/auth"
)

func testLogger() zerowrap.Logger {
	return zerowrap.Default()
}

func newAuthService(t *testing.T, enabled bool) *auth.Service {
	t.Helper()
	svc, err := auth.NewService(auth.Config{Enabled: enabled, TokenSecret: []byte("middleware-test-secret")})
	require.NoError(t, err)
	return svc
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger(testLogger()))
	e.GET("/", func(c echo.Context) error {
		assert.NotNil(t, zerowrap.FromCtx(c.Request().Context()))
		return c.NoContent(http.StatusNoContent)
	})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 32)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = serve(e, req)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestPanicRecovery(t *testing.T) {
	e := echo.New()
	e.Use(PanicRecovery(testLogger()))
	e.GET("/", func(c echo.Context) error {
		panic("boom")
	})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func TestBearerAuth(t *testing.T) {
	svc := newAuthService(t, true)
	token, err := svc.GenerateToken(zerowrap.WithCtx(context.Background(), testLogger()), "ci", []string{"containers"}, time.Hour)
	require.NoError(t, err)

	e := echo.New()
	e.Use(BearerAuth(svc))
	e.GET("/", func(c echo.Context) error {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		return c.String(http.StatusOK, claims.Subject)
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := serve(e, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get(echo.HeaderWWWAuthenticate), "Bearer")
			} else {
				assert.Equal(t, "ci", rec.Body.String())
			}
		})
	}
}

func TestBearerAuth_Disabled(t *testing.T) {
	e := echo.New()
	e.Use(BearerAuth(newAuthService(t, false)))
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeaders())
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRateLimit(t *testing.T) {
	store := ratelimit.NewMemoryStore(ratelimit.Config{Enabled: true, RPS: 0.001, Burst: 2}, testLogger())

	e := echo.New()
	e.Use(RateLimit(store, testLogger(), func(c echo.Context) bool {
		return c.Path() == "/healthz"
	}))
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusNoContent, serve(e, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limited")

	assert.Equal(t, http.StatusNoContent, serve(e, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}
