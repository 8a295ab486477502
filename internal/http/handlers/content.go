package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"travelagency/internal/cache"
	"travelagency/internal/domain/models"
)

// Public content is read-through cached; admin writes invalidate through the
// content service.

func (h *Handler) ListBlogPosts(c *gin.Context) {
	p := pagination(c)
	key := cache.PrefixBlog + "list:" + strconv.Itoa(p.Page) + ":" + strconv.Itoa(p.PageSize)
	h.serveCached(c, key, func(ctx context.Context) (any, error) {
		return h.content(c).ListPosts(ctx, true, p)
	})
}

func (h *Handler) GetBlogPost(c *gin.Context) {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))
	h.serveCached(c, cache.PrefixBlog+"slug:"+slug, func(ctx context.Context) (any, error) {
		return h.content(c).GetPublishedPost(ctx, slug)
	})
}

func (h *Handler) ListFAQ(c *gin.Context) {
	h.serveCached(c, cache.KeyFAQ, func(ctx context.Context) (any, error) {
		groups, err := h.content(c).FAQGroups(ctx)
		return gin.H{"data": groups}, err
	})
}

func (h *Handler) GetPage(c *gin.Context) {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))
	h.serveCached(c, cache.PrefixPages+slug, func(ctx context.Context) (any, error) {
		return h.content(c).GetPublishedPage(ctx, slug)
	})
}

func (h *Handler) ListTeam(c *gin.Context) {
	h.serveCached(c, cache.KeyTeam, func(ctx context.Context) (any, error) {
		team, err := h.content(c).ListTeam(ctx)
		return gin.H{"data": team}, err
	})
}

func (h *Handler) ListTestimonials(c *gin.Context) {
	tourID := queryInt64(c, "tour_id")
	h.serveCached(c, cache.PrefixTestimonials+strconv.FormatInt(tourID, 10), func(ctx context.Context) (any, error) {
		items, err := h.content(c).ListTestimonials(ctx, true, tourID)
		return gin.H{"data": items}, err
	})
}

func (h *Handler) PublicSettings(c *gin.Context) {
	h.serveCached(c, cache.KeySettings, func(ctx context.Context) (any, error) {
		settings, err := h.content(c).PublicSettings(ctx)
		return gin.H{"data": settings}, err
	})
}

// Blog admin.

func (h *Handler) AdminListPosts(c *gin.Context) {
	page, err := h.content(c).ListPosts(c.Request.Context(), false, pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) AdminGetPost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	post, err := h.content(c).GetPost(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) SavePost(c *gin.Context) {
	id, ok := optionalID(c)
	if !ok {
		return
	}
	var in models.BlogPostInput
	if !bindJSON(c, &in) {
		return
	}
	post, err := h.content(c).SavePost(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(savedStatus(id), post)
}

func (h *Handler) DeletePost(c *gin.Context) {
	h.deleteByID(c, h.content(c).DeletePost)
}

// FAQ admin.

func (h *Handler) AdminListFAQs(c *gin.Context) {
	items, err := h.content(c).ListFAQs(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *Handler) SaveFAQ(c *gin.Context) {
	id, ok := optionalID(c)
	if !ok {
		return
	}
	var in models.FAQInput
	if !bindJSON(c, &in) {
		return
	}
	faq, err := h.content(c).SaveFAQ(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(savedStatus(id), faq)
}

func (h *Handler) DeleteFAQ(c *gin.Context) {
	h.deleteByID(c, h.content(c).DeleteFAQ)
}

// Pages admin.

func (h *Handler) AdminListPages(c *gin.Context) {
	pages, err := h.content(c).ListPages(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": pages})
}

func (h *Handler) SavePage(c *gin.Context) {
	id, ok := optionalID(c)
	if !ok {
		return
	}
	var in models.ContentPageInput
	if !bindJSON(c, &in) {
		return
	}
	page, err := h.content(c).SavePage(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(savedStatus(id), page)
}

func (h *Handler) DeletePage(c *gin.Context) {
	h.deleteByID(c, h.content(c).DeletePage)
}

// Team admin.

func (h *Handler) AdminListTeam(c *gin.Context) {
	team, err := h.content(c).ListTeam(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": team})
}

func (h *Handler) SaveTeamMember(c *gin.Context) {
	id, ok := optionalID(c)
	if !ok {
		return
	}
	var in models.TeamMemberInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.content(c).SaveTeamMember(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(savedStatus(id), m)
}

func (h *Handler) DeleteTeamMember(c *gin.Context) {
	h.deleteByID(c, h.content(c).DeleteTeamMember)
}

// Testimonials admin.

func (h *Handler) AdminListTestimonials(c *gin.Context) {
	items, err := h.content(c).ListTestimonials(c.Request.Context(), false, queryInt64(c, "tour_id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *Handler) SaveTestimonial(c *gin.Context) {
	id, ok := optionalID(c)
	if !ok {
		return
	}
	var in models.TestimonialInput
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.content(c).SaveTestimonial(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(savedStatus(id), t)
}

func (h *Handler) DeleteTestimonial(c *gin.Context) {
	h.deleteByID(c, h.content(c).DeleteTestimonial)
}

// Settings admin.

func (h *Handler) AdminSettings(c *gin.Context) {
	settings, err := h.content(c).AllSettings(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settings})
}

func (h *Handler) SaveSettings(c *gin.Context) {
	var values map[string]string
	if !bindJSON(c, &values) {
		return
	}
	settings, err := h.content(c).SaveSettings(c.Request.Context(), values)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settings})
}

// optionalID reads :id on update routes; create routes have none and get 0.
func optionalID(c *gin.Context) (int64, bool) {
	if c.Param("id") == "" {
		return 0, true
	}
	return paramID(c, "id")
}

func savedStatus(id int64) int {
	if id == 0 {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (h *Handler) deleteByID(c *gin.Context, del func(ctx context.Context, id int64) error) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
