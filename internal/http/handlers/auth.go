package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
	"travelagency/internal/http/middleware"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login sets the admin_session cookie and also returns the token for API clients.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.authService(c).Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if domain.IsUnauthorized(err) {
			respondError(c, http.StatusUnauthorized, "invalid_credentials", err.Error(), nil)
			return
		}
		RespondDomainError(c, err)
		return
	}
	middleware.ResetRateLimit(c)
	http.SetCookie(c.Writer, h.Sessions.Cookie(res.Token, res.ExpiresAt))
	c.JSON(http.StatusOK, gin.H{"user": res.User, "token": res.Token, "expires_at": res.ExpiresAt})
}

func (h *Handler) Logout(c *gin.Context) {
	if h.Sessions != nil {
		http.SetCookie(c.Writer, h.Sessions.ClearCookie())
	}
	c.Status(http.StatusNoContent)
}

// ActiveAdmin backs RequireAdmin on the admin group. /auth/me skips it because
// Me reloads the account itself.
func (h *Handler) ActiveAdmin(c *gin.Context, userID int64) (models.AdminUser, error) {
	return h.authService(c).Me(c.Request.Context(), userID)
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.authService(c).Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}
