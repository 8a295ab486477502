package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagency/internal/auth"
	"travelagency/internal/config"
	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
	"travelagency/internal/i18n"
	"travelagency/internal/ratelimit"
	"travelagency/internal/telemetry"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testSessions() *auth.Sessions {
	return auth.NewSessions(config.SessionConfig{
		Secret:     "0123456789abcdef0123456789abcdef",
		TTL:        time.Hour,
		CookieName: "admin_session",
	})
}

func testBundle(t *testing.T) *i18n.Bundle {
	t.Helper()
	b, err := i18n.New("en", "")
	require.NoError(t, err)
	return b
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDGeneratesAndKeeps(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "edge-abc-123")
	w = serve(r, req)
	assert.Equal(t, "edge-abc-123", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "bad id\twith spaces")
	w = serve(r, req)
	assert.NotEqual(t, "bad id\twith spaces", w.Body.String())
}

func TestRequireAdminAcceptsCookieAndBearer(t *testing.T) {
	s := testSessions()
	token, _, err := s.Issue(models.AdminUser{ID: 3, Email: "ed@example.com", Role: models.RoleEditor})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireAdmin(s, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "role": GetUserRole(c), "email": GetUserEmail(c)})
	})
	r.DELETE("/danger", RequireAdmin(s, nil), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "admin_session", Value: token})
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":3,"role":"editor","email":"ed@example.com"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body.Code)

	req = httptest.NewRequest(http.MethodDelete, "/danger", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}

func TestRequireAdminReloadsAccount(t *testing.T) {
	s := testSessions()
	token, _, err := s.Issue(models.AdminUser{ID: 7, Email: "old@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	var account models.AdminUser
	var lookupErr error
	lookup := func(c *gin.Context, id int64) (models.AdminUser, error) {
		assert.Equal(t, int64(7), id)
		return account, lookupErr
	}

	r := gin.New()
	r.DELETE("/danger", RequireAdmin(s, lookup), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserEmail(c))
	})
	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/danger", nil)
		req.AddCookie(&http.Cookie{Name: "admin_session", Value: token})
		return serve(r, req)
	}

	account = models.AdminUser{ID: 7, Email: "new@example.com", Role: models.RoleAdmin, Active: true}
	w := send()
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new@example.com", w.Body.String())

	// demoted since the token was issued
	account.Role = models.RoleEditor
	assert.Equal(t, http.StatusForbidden, send().Code)

	lookupErr = domain.UnauthorizedError{Msg: "account disabled"}
	assert.Equal(t, http.StatusUnauthorized, send().Code)

	lookupErr = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, send().Code)
}

func TestRateLimitRejectsAfterLimit(t *testing.T) {
	reg := prometheus.NewRegistry()
	rejections, err := telemetry.NewRateLimitCounter(reg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(Locale(testBundle(t)))
	r.GET("/tours", RateLimit("public", ratelimit.New(2, time.Minute, 100), nil, rejections), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/tours", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/tours", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body.Code)
	assert.Equal(t, "Too many requests. Please slow down.", body.Message)
	assert.Equal(t, float64(1), testutil.ToFloat64(rejections.WithLabelValues("public")))
}

func TestResetRateLimitClearsWindowOnSuccess(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit("login", ratelimit.New(2, time.Minute, 100), nil, nil), func(c *gin.Context) {
		if c.Query("ok") == "1" {
			ResetRateLimit(c)
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusUnauthorized)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/login?ok=1", nil)).Code)

	// the failed attempt no longer counts
	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)).Code)

	// no limiter on the route: nothing to reset
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	ResetRateLimit(c)
}

func TestClientKeyPrefersAdminID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "203.0.113.9:5555"
	assert.Equal(t, "ip:203.0.113.9", ClientKey(c))

	c.Set(ctxUserID, int64(12))
	assert.Equal(t, "user:12", ClientKey(c))
}

func TestLocaleResolutionOrder(t *testing.T) {
	r := gin.New()
	r.Use(Locale(testBundle(t)))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetLocale(c)) })

	req := httptest.NewRequest(http.MethodGet, "/?lang=fr", nil)
	req.AddCookie(&http.Cookie{Name: LocaleCookie, Value: "es"})
	assert.Equal(t, "fr", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/?lang=xx", nil)
	req.AddCookie(&http.Cookie{Name: LocaleCookie, Value: "es"})
	assert.Equal(t, "es", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "fr-CA,fr;q=0.9,en;q=0.5")
	assert.Equal(t, "fr", serve(r, req).Body.String())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "en", w.Body.String())
	assert.Equal(t, "en", w.Header().Get("Content-Language"))
}

func TestPrometheusLabelsByRoute(t *testing.T) {
	m, err := telemetry.NewHTTPMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	r := gin.New()
	r.Use(Prometheus(m))
	r.GET("/api/tours/:slug", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/api/tours/lofoten", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/api/tours/:slug", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://www.example.com/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://www.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://www.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}
