package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"travelagency/internal/i18n"
)

const (
	localeKey    = "locale"
	bundleKey    = "i18n"
	LocaleCookie = "lang"
)

// Locale resolves the request language from ?lang, the lang cookie,
// Accept-Language and finally the bundle default.
func Locale(b *i18n.Bundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		if b == nil {
			c.Next()
			return
		}
		locale := resolveLocale(c, b)
		c.Set(localeKey, locale)
		c.Set(bundleKey, b)
		c.Header("Content-Language", locale)
		c.Next()
	}
}

func resolveLocale(c *gin.Context, b *i18n.Bundle) string {
	if q := strings.ToLower(strings.TrimSpace(c.Query("lang"))); q != "" && b.Supported(q) {
		return q
	}
	if v, err := c.Cookie(LocaleCookie); err == nil {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" && b.Supported(v) {
			return v
		}
	}
	if al := c.GetHeader("Accept-Language"); al != "" {
		return b.Match(al)
	}
	return b.Default()
}

// GetLocale returns the resolved locale, or "en" when the middleware did not run.
func GetLocale(c *gin.Context) string {
	if l := c.GetString(localeKey); l != "" {
		return l
	}
	return "en"
}

// Bundle returns the catalog attached by Locale, if any.
func Bundle(c *gin.Context) *i18n.Bundle {
	if v, ok := c.Get(bundleKey); ok {
		if b, ok := v.(*i18n.Bundle); ok {
			return b
		}
	}
	return nil
}

// Translate looks key up in the request locale. ok is false when no catalog
// knows the key.
func Translate(c *gin.Context, key string, args ...any) (string, bool) {
	b := Bundle(c)
	if b == nil || !b.Has(GetLocale(c), key) {
		return "", false
	}
	return b.T(GetLocale(c), key, args...), true
}
