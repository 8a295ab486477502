package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"travelagency/internal/auth"
	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
	"travelagency/internal/utils"
)

const (
	ctxUserID    = "userID"
	ctxUserRole  = "userRole"
	ctxUserEmail = "userEmail"
)

// AccountLookup reloads the admin account a session was issued for.
type AccountLookup func(c *gin.Context, userID int64) (models.AdminUser, error)

// RequireAdmin accepts the session cookie or an Authorization: Bearer token.
// With a lookup the account is reloaded on every request, so a disabled or
// demoted admin loses access before the token expires.
func RequireAdmin(s *auth.Sessions, lookup AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := sessionClaims(c, s)
		if !ok {
			AbortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
			return
		}
		if lookup != nil {
			u, err := lookup(c, claims.UserID())
			if domain.IsUnauthorized(err) {
				AbortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
				return
			}
			if err != nil {
				utils.LogError(GetRequestID(c), "auth", "reload_admin", err)
				AbortWithError(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
				return
			}
			claims.Email = u.Email
			claims.Role = u.Role
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAdmin attaches the admin identity when a valid session is present
// and lets anonymous requests through.
func OptionalAdmin(s *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := sessionClaims(c, s); ok {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// RequireRoles must run after RequireAdmin.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, GetUserRole(c)) {
			AbortWithError(c, http.StatusForbidden, "forbidden", "role not allowed", nil)
			return
		}
		c.Next()
	}
}

func sessionClaims(c *gin.Context, s *auth.Sessions) (auth.Claims, bool) {
	if s == nil {
		return auth.Claims{}, false
	}
	token := ""
	if v, err := c.Cookie(s.CookieName()); err == nil {
		token = v
	}
	if token == "" {
		h := c.GetHeader("Authorization")
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			token = strings.TrimSpace(h[7:])
		}
	}
	if token == "" {
		return auth.Claims{}, false
	}
	claims, err := s.Parse(token)
	if err != nil {
		return auth.Claims{}, false
	}
	return claims, true
}

func setClaims(c *gin.Context, claims auth.Claims) {
	c.Set(ctxUserID, claims.UserID())
	c.Set(ctxUserRole, claims.Role)
	c.Set(ctxUserEmail, claims.Email)
}

func GetUserID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

func GetUserRole(c *gin.Context) string {
	return c.GetString(ctxUserRole)
}

func GetUserEmail(c *gin.Context) string {
	return c.GetString(ctxUserEmail)
}
