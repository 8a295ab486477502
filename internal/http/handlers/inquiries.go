package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"travelagency/internal/domain/models"
	"travelagency/internal/repositories"
)

func (h *Handler) CreateInquiry(c *gin.Context) {
	var in models.InquiryInput
	if !bindJSON(c, &in) {
		return
	}
	inq, err := h.inquiries(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": inq.ID, "status": inq.Status})
}

func (h *Handler) AdminListInquiries(c *gin.Context) {
	f := repositories.InquiryFilter{
		Status: strings.TrimSpace(c.Query("status")),
		Query:  strings.TrimSpace(c.Query("q")),
	}
	page, err := h.inquiries(c).List(c.Request.Context(), f, pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) AdminGetInquiry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	inq, err := h.inquiries(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, inq)
}

func (h *Handler) UpdateInquiryStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	inq, err := h.inquiries(c).UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, inq)
}

func (h *Handler) QuoteInquiry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var q models.QuoteInput
	if !bindJSON(c, &q) {
		return
	}
	res, err := h.inquiries(c).Quote(c.Request.Context(), id, q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
