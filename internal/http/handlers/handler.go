package handlers

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"travelagency/internal/auth"
	"travelagency/internal/cache"
	"travelagency/internal/config"
	"travelagency/internal/http/middleware"
	"travelagency/internal/i18n"
	"travelagency/internal/mailer"
	"travelagency/internal/payments"
	"travelagency/internal/services"
	"travelagency/internal/storage"
)

// Handler carries the shared collaborators every endpoint builds its
// request-scoped services from.
type Handler struct {
	DB            *sql.DB
	Env           config.Env
	Cache         *cache.Cache
	Sessions      *auth.Sessions
	Gateway       payments.Gateway
	Webhooks      *payments.WebhookVerifier
	Storage       storage.Storage
	Mailer        mailer.Mailer
	I18n          *i18n.Bundle
	WebhookEvents *prometheus.CounterVec
}

func (h *Handler) translator() services.Translator {
	if h.I18n == nil {
		return nil
	}
	return h.I18n
}

func (h *Handler) invalidator() services.Invalidator {
	if h.Cache == nil {
		return nil
	}
	return h.Cache
}

func (h *Handler) tours(c *gin.Context) services.TourService {
	return services.TourService{
		DB:              h.DB,
		Cache:           h.invalidator(),
		DefaultCurrency: h.Env.Stripe.Currency,
		RequestID:       middleware.GetRequestID(c),
	}
}

func (h *Handler) bookings(c *gin.Context) services.BookingService {
	return services.BookingService{
		DB:        h.DB,
		Mailer:    h.Mailer,
		I18n:      h.translator(),
		Locale:    middleware.GetLocale(c),
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handler) payments(c *gin.Context) services.PaymentService {
	return services.PaymentService{
		DB:        h.DB,
		Gateway:   h.Gateway,
		Stripe:    h.Env.Stripe,
		Mailer:    h.Mailer,
		I18n:      h.translator(),
		Events:    h.WebhookEvents,
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handler) inquiries(c *gin.Context) services.InquiryService {
	return services.InquiryService{
		DB:          h.DB,
		Payments:    h.payments(c),
		Mailer:      h.Mailer,
		I18n:        h.translator(),
		NotifyEmail: h.Env.Mail.NotifyEmail,
		Currency:    h.Env.Stripe.Currency,
		Locale:      middleware.GetLocale(c),
		RequestID:   middleware.GetRequestID(c),
	}
}

func (h *Handler) content(c *gin.Context) services.ContentService {
	return services.ContentService{
		DB:        h.DB,
		Cache:     h.invalidator(),
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handler) authService(c *gin.Context) services.AuthService {
	return services.AuthService{DB: h.DB, Sessions: h.Sessions, RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) adminUsers(c *gin.Context) services.AdminUserService {
	return services.AdminUserService{DB: h.DB, RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) uploads(c *gin.Context) services.UploadService {
	return services.UploadService{
		Storage:   h.Storage,
		MaxBytes:  h.Env.Upload.MaxBytes,
		RequestID: middleware.GetRequestID(c),
	}
}
