package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelagency/internal/domain/models"
	"travelagency/internal/http/middleware"
)

func (h *Handler) ListAdminUsers(c *gin.Context) {
	users, err := h.adminUsers(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (h *Handler) CreateAdminUser(c *gin.Context) {
	var in models.AdminUserInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.adminUsers(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) UpdateAdminUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in models.AdminUserInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.adminUsers(c).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteAdminUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.adminUsers(c).Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
