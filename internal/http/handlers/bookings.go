package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"travelagency/internal/domain/models"
	"travelagency/internal/utils"
)

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateBooking is the public booking form. The response never carries the
// customer's contact details.
func (h *Handler) CreateBooking(c *gin.Context) {
	var in models.BookingInput
	if !bindJSON(c, &in) {
		return
	}
	b, err := h.bookings(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b.Summary())
}

func (h *Handler) GetBookingSummary(c *gin.Context) {
	s, err := h.bookings(c).Summary(c.Request.Context(), c.Param("reference"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) CheckoutBooking(c *gin.Context) {
	res, err := h.payments(c).CheckoutBooking(c.Request.Context(), c.Param("reference"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// BookingInvoice streams the PDF invoice inline once the booking is paid.
func (h *Handler) BookingInvoice(c *gin.Context) {
	pdf, filename, err := h.bookings(c).Invoice(c.Request.Context(), c.Param("reference"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) AdminListBookings(c *gin.Context) {
	f := models.BookingFilter{
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
		Query:         strings.TrimSpace(c.Query("q")),
	}
	var ok bool
	if f.From, ok = queryDate(c, "from"); !ok {
		return
	}
	if f.To, ok = queryDate(c, "to"); !ok {
		return
	}
	page, err := h.bookings(c).List(c.Request.Context(), f, pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) AdminGetBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	d, err := h.bookings(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.bookings(c).UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.bookings(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// queryDate reads an optional YYYY-MM-DD parameter, answering 400 when malformed.
func queryDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	d, err := utils.ParseDate(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "expected YYYY-MM-DD", gin.H{"field": key})
		return nil, false
	}
	return &d, true
}
