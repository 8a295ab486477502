package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"travelagency/internal/cache"
	"travelagency/internal/domain/models"
)

func tourFilter(c *gin.Context, publishedOnly bool) models.TourFilter {
	return models.TourFilter{
		Destination:   strings.TrimSpace(c.Query("destination")),
		Category:      strings.TrimSpace(c.Query("category")),
		Featured:      queryBool(c, "featured"),
		MinPrice:      queryInt64(c, "min_price"),
		MaxPrice:      queryInt64(c, "max_price"),
		Query:         strings.TrimSpace(c.Query("q")),
		Sort:          strings.TrimSpace(c.Query("sort")),
		PublishedOnly: publishedOnly,
	}
}

// ListTours is the public, cached tour listing.
func (h *Handler) ListTours(c *gin.Context) {
	f := tourFilter(c, true)
	p := pagination(c)
	h.serveCached(c, cache.TourListKey(f, p), func(ctx context.Context) (any, error) {
		return h.tours(c).List(ctx, f, p)
	})
}

func (h *Handler) GetTour(c *gin.Context) {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))
	h.serveCached(c, cache.TourSlugKey(slug), func(ctx context.Context) (any, error) {
		return h.tours(c).GetPublished(ctx, slug)
	})
}

func (h *Handler) AdminListTours(c *gin.Context) {
	page, err := h.tours(c).List(c.Request.Context(), tourFilter(c, false), pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) AdminGetTour(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	t, err := h.tours(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) CreateTour(c *gin.Context) {
	var in models.TourInput
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.tours(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTour(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in models.TourInput
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.tours(c).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTour(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.tours(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
