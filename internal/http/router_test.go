package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagency/internal/auth"
	intconfig "travelagency/internal/config"
	h "travelagency/internal/http/handlers"
	"travelagency/internal/i18n"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T, env intconfig.Env) *gin.Engine {
	t.Helper()
	bundle, err := i18n.New("en", "")
	require.NoError(t, err)
	hd := &h.Handler{
		Env:  env,
		I18n: bundle,
		Sessions: auth.NewSessions(intconfig.SessionConfig{
			Secret: "0123456789abcdef0123456789abcdef", TTL: time.Hour, CookieName: "admin_session",
		}),
	}
	r, err := NewRouter(env, hd, prometheus.NewRegistry())
	require.NoError(t, err)
	return r
}

func TestRouterSystemEndpoints(t *testing.T) {
	r := testRouter(t, intconfig.Env{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/routes", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/webhooks/stripe")
	assert.Contains(t, w.Body.String(), "/api/admin/uploads/*key")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestRouterUnknownRouteEnvelope(t *testing.T) {
	r := testRouter(t, intconfig.Env{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["code"])
	assert.NotEmpty(t, body["request_id"])
}

func TestRouterAdminNeedsSession(t *testing.T) {
	r := testRouter(t, intconfig.Env{})

	for _, path := range []string{"/api/admin/tours", "/api/admin/settings", "/api/auth/me"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRouterLoginIsRateLimited(t *testing.T) {
	env := intconfig.Env{RateLimit: intconfig.RateLimitConfig{
		Enabled:  true,
		Capacity: 100,
		Public:   intconfig.RatePolicy{Limit: 100, Window: time.Minute},
		Forms:    intconfig.RatePolicy{Limit: 100, Window: time.Minute},
		Login:    intconfig.RatePolicy{Limit: 1, Window: time.Minute},
	}}
	r := testRouter(t, env)

	// invalid bodies still count against the window
	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`)))
		return w
	}
	assert.Equal(t, http.StatusBadRequest, send().Code)
	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
