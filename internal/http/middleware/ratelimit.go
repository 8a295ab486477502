package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"travelagency/internal/ratelimit"
	"travelagency/internal/utils"
)

// KeyFunc picks the bucket a request is counted in.
type KeyFunc func(c *gin.Context) string

// ClientKey counts signed-in admins by id and everyone else by client IP.
func ClientKey(c *gin.Context) string {
	if id := GetUserID(c); id > 0 {
		return "user:" + strconv.FormatInt(id, 10)
	}
	return "ip:" + c.ClientIP()
}

const rateLimitResetKey = "ratelimit_reset"

// ResetRateLimit clears the caller's window for the policy guarding this
// route. Login uses it so a successful sign-in does not keep counting earlier
// failures against the next session.
func ResetRateLimit(c *gin.Context) {
	if v, ok := c.Get(rateLimitResetKey); ok {
		if reset, ok := v.(func()); ok {
			reset()
		}
	}
}

// RateLimit enforces one counting-window policy. A nil limiter disables it.
func RateLimit(policy string, l *ratelimit.Limiter, key KeyFunc, rejections *prometheus.CounterVec) gin.HandlerFunc {
	if key == nil {
		key = ClientKey
	}
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		k := key(c)
		d := l.Allow(k)
		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
		if d.Allowed {
			c.Set(rateLimitResetKey, func() { l.Reset(k) })
			c.Next()
			return
		}

		if rejections != nil {
			rejections.WithLabelValues(policy).Inc()
		}
		utils.LogEvent(GetRequestID(c), "ratelimit", policy, "request rejected")
		c.Header("Retry-After", strconv.Itoa(d.RetryAfter(time.Now())))
		AbortWithError(c, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
	}
}
