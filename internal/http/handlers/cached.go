package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const jsonContentType = "application/json; charset=utf-8"

// serveCached answers from the read-through cache, running load on a miss.
// The body is the JSON encoding of whatever load returns; load errors are
// mapped like any other domain error and never cached.
func (h *Handler) serveCached(c *gin.Context, key string, load func(ctx context.Context) (any, error)) {
	body, hit, err := h.Cache.GetOrLoad(c.Request.Context(), key, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if hit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.Data(http.StatusOK, jsonContentType, body)
}
