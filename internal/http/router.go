package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	intconfig "travelagency/internal/config"
	"travelagency/internal/domain/models"
	h "travelagency/internal/http/handlers"
	"travelagency/internal/http/middleware"
	"travelagency/internal/ratelimit"
	"travelagency/internal/telemetry"
	"travelagency/internal/utils"
)

// NewRouter wires middleware and every route onto a fresh engine. reg backs
// /metrics and receives the HTTP and rate-limit collectors.
func NewRouter(env intconfig.Env, hd *h.Handler, reg *prometheus.Registry) (*gin.Engine, error) {
	httpMetrics, err := telemetry.NewHTTPMetrics(reg)
	if err != nil {
		return nil, err
	}
	rejections, err := telemetry.NewRateLimitCounter(reg)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(env.CORSOrigins),
		middleware.Prometheus(httpMetrics),
		middleware.Locale(hd.I18n),
	)

	if err := r.SetTrustedProxies(env.TrustedProxies); err != nil {
		utils.LogError("", "http", "trusted_proxies", err)
	}

	r.NoRoute(func(c *gin.Context) {
		middleware.AbortWithError(c, stdhttp.StatusNotFound, "not_found", "route not found",
			gin.H{"path": c.Request.URL.Path, "method": c.Request.Method})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	var limit policies
	if env.RateLimit.Enabled {
		limit = newPolicies(env.RateLimit, rejections)
	} else {
		limit = policies{rejections: rejections}
	}

	api := r.Group("/api")
	{
		api.GET("/health", hd.Health)
		api.GET("/db-check", hd.DBCheck)
		api.GET("/routes", hd.Routes)

		public := api.Group("", middleware.OptionalAdmin(hd.Sessions))
		mountPublic(public, hd, limit)

		api.POST("/webhooks/stripe", hd.StripeWebhook)

		authGroup := api.Group("/auth")
		authGroup.POST("/login", limit.middleware("login", limit.login), hd.Login)
		authGroup.POST("/logout", hd.Logout)
		authGroup.GET("/me", middleware.RequireAdmin(hd.Sessions, nil), hd.Me)

		admin := api.Group("/admin", middleware.RequireAdmin(hd.Sessions, hd.ActiveAdmin))
		mountAdmin(admin, hd)
	}

	h.SetRouter(r)
	return r, nil
}

// policies holds one limiter per configured policy; nil limiters disable it.
type policies struct {
	public, forms, login *ratelimit.Limiter
	rejections           *prometheus.CounterVec
}

func newPolicies(cfg intconfig.RateLimitConfig, rejections *prometheus.CounterVec) policies {
	return policies{
		public:     ratelimit.New(cfg.Public.Limit, cfg.Public.Window, cfg.Capacity),
		forms:      ratelimit.New(cfg.Forms.Limit, cfg.Forms.Window, cfg.Capacity),
		login:      ratelimit.New(cfg.Login.Limit, cfg.Login.Window, cfg.Capacity),
		rejections: rejections,
	}
}

func (p policies) middleware(name string, l *ratelimit.Limiter) gin.HandlerFunc {
	return middleware.RateLimit(name, l, middleware.ClientKey, p.rejections)
}

func mountPublic(g *gin.RouterGroup, hd *h.Handler, limit policies) {
	publicRate := limit.middleware("public", limit.public)
	formsRate := limit.middleware("forms", limit.forms)

	tours := g.Group("/tours", publicRate)
	tours.GET("", hd.ListTours)
	tours.GET("/:slug", hd.GetTour)

	bookings := g.Group("/bookings")
	bookings.POST("", formsRate, hd.CreateBooking)
	bookings.GET("/:reference", publicRate, hd.GetBookingSummary)
	bookings.POST("/:reference/checkout", formsRate, hd.CheckoutBooking)
	bookings.GET("/:reference/invoice", publicRate, hd.BookingInvoice)

	g.POST("/inquiries", formsRate, hd.CreateInquiry)

	g.GET("/blog", hd.ListBlogPosts)
	g.GET("/blog/:slug", hd.GetBlogPost)
	g.GET("/faq", hd.ListFAQ)
	g.GET("/pages/:slug", hd.GetPage)
	g.GET("/team", hd.ListTeam)
	g.GET("/testimonials", hd.ListTestimonials)
	g.GET("/settings", hd.PublicSettings)
}

func mountAdmin(g *gin.RouterGroup, hd *h.Handler) {
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleEditor)

	tours := g.Group("/tours", staff)
	tours.GET("", hd.AdminListTours)
	tours.GET("/:id", hd.AdminGetTour)
	tours.POST("", hd.CreateTour)
	tours.PUT("/:id", hd.UpdateTour)
	tours.DELETE("/:id", hd.DeleteTour)

	bookings := g.Group("/bookings", staff)
	bookings.GET("", hd.AdminListBookings)
	bookings.GET("/:id", hd.AdminGetBooking)
	bookings.PATCH("/:id/status", hd.UpdateBookingStatus)
	bookings.DELETE("/:id", adminOnly, hd.DeleteBooking)

	payments := g.Group("/payments", staff)
	payments.GET("", hd.AdminListPayments)
	payments.GET("/:id", hd.AdminGetPayment)
	payments.POST("/:id/refund", adminOnly, hd.RefundPayment)

	inquiries := g.Group("/inquiries", staff)
	inquiries.GET("", hd.AdminListInquiries)
	inquiries.GET("/:id", hd.AdminGetInquiry)
	inquiries.PATCH("/:id/status", hd.UpdateInquiryStatus)
	inquiries.POST("/:id/quote", hd.QuoteInquiry)

	mountCRUD(g.Group("/blog", staff), hd.AdminListPosts, hd.SavePost, hd.DeletePost)
	g.GET("/blog/:id", staff, hd.AdminGetPost)
	mountCRUD(g.Group("/faq", staff), hd.AdminListFAQs, hd.SaveFAQ, hd.DeleteFAQ)
	mountCRUD(g.Group("/pages", staff), hd.AdminListPages, hd.SavePage, hd.DeletePage)
	mountCRUD(g.Group("/team", staff), hd.AdminListTeam, hd.SaveTeamMember, hd.DeleteTeamMember)
	mountCRUD(g.Group("/testimonials", staff), hd.AdminListTestimonials, hd.SaveTestimonial, hd.DeleteTestimonial)

	settings := g.Group("/settings", adminOnly)
	settings.GET("", hd.AdminSettings)
	settings.PUT("", hd.SaveSettings)
	g.DELETE("/cache", adminOnly, hd.PurgeCache)

	uploads := g.Group("/uploads", staff)
	uploads.POST("", hd.UploadImage)
	uploads.DELETE("/*key", hd.DeleteUpload)

	users := g.Group("/users", adminOnly)
	users.GET("", hd.ListAdminUsers)
	users.POST("", hd.CreateAdminUser)
	users.PUT("/:id", hd.UpdateAdminUser)
	users.DELETE("/:id", hd.DeleteAdminUser)
}

// mountCRUD registers list, create, update and delete for one content type;
// save handles both create (no :id) and update.
func mountCRUD(g *gin.RouterGroup, list, save, del gin.HandlerFunc) {
	g.GET("", list)
	g.POST("", save)
	g.PUT("/:id", save)
	g.DELETE("/:id", del)
}
