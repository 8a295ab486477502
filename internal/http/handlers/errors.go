package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"travelagency/internal/domain"
	"travelagency/internal/http/middleware"
	"travelagency/internal/utils"
)

func respondError(c *gin.Context, status int, code, message string, details any) {
	middleware.AbortWithError(c, status, code, message, details)
}

func statusOf(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsConflict(err):
		return http.StatusConflict
	case domain.IsUnauthorized(err):
		return http.StatusUnauthorized
	case domain.IsForbidden(err):
		return http.StatusForbidden
	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// RespondDomainError maps domain errors to HTTP responses. Internal errors are
// logged and answered without their text.
func RespondDomainError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		utils.LogError(middleware.GetRequestID(c), "http", c.FullPath(), err)
	}
	if status == http.StatusInternalServerError {
		respondError(c, status, "internal_error", "internal error", nil)
		return
	}

	var details any
	var v domain.ValidationError
	if errors.As(err, &v) && v.Field != "" {
		details = gin.H{"field": v.Field}
	}
	respondError(c, status, domain.CodeOf(err, "error"), err.Error(), details)
}
