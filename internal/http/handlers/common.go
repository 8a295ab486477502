package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"travelagency/internal/domain"
)

// bindJSON decodes and validates the body, answering 400 with the failing
// fields when it cannot.
func bindJSON[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[jsonField(fe.Namespace())] = fe.Tag()
			}
			respondError(c, http.StatusBadRequest, "validation_error", "invalid fields", gin.H{"fields": fields})
			return false
		}
		respondError(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return false
	}
	return true
}

// jsonField turns "BookingInput.Customer.Email" into "customer.email".
func jsonField(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// paramID parses a positive integer path parameter or answers 400.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid "+name, gin.H{"field": name})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	return n
}

func queryInt64(c *gin.Context, key string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(c.Query(key)), 10, 64)
	return n
}

// queryBool returns nil when the parameter is absent or not a boolean.
func queryBool(c *gin.Context, key string) *bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return nil
	}
	return &v
}

func pagination(c *gin.Context) domain.Pagination {
	return domain.NewPagination(queryInt(c, "page"), queryInt(c, "page_size"))
}
