package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagency/internal/auth"
	"travelagency/internal/cache"
	"travelagency/internal/config"
	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
	"travelagency/internal/http/middleware"
	"travelagency/internal/i18n"
	"travelagency/internal/payments"
	"travelagency/internal/storage"
)

const webhookSecret = "whsec_handler_test"

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	c, err := cache.New("test", 100, time.Minute, nil)
	require.NoError(t, err)
	bundle, err := i18n.New("en", "")
	require.NoError(t, err)

	return &Handler{
		DB:    db,
		Cache: c,
		Sessions: auth.NewSessions(config.SessionConfig{
			Secret: "0123456789abcdef0123456789abcdef", TTL: time.Hour, CookieName: "admin_session",
		}),
		Webhooks: payments.NewWebhookVerifier(webhookSecret),
		Storage:  storage.NewMemory("https://cdn.example.com"),
		I18n:     bundle,
		Env:      config.Env{Upload: config.UploadConfig{MaxBytes: 1024}},
	}, mock
}

func engine(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Locale(h.I18n))
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorBody {
	t.Helper()
	var body middleware.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func tourRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "slug", "title", "summary", "description", "destination", "category",
		"duration_days", "price_cents", "currency", "max_group_size", "cover_image_url", "featured", "published",
		"created_at", "updated_at"})
}

func TestListToursIsReadThroughCached(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tours").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("FROM tours WHERE published = 1 AND destination = \\?").
		WillReturnRows(tourRows().AddRow(1, "lofoten", "Lofoten", "", "", "Norway", "nature",
			5, 250000, "usd", 12, "", true, true, testNow, testNow))

	r := engine(h)
	r.GET("/api/tours", h.ListTours)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tours?destination=Norway&page=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	var page domain.Page[map[string]any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Pagination.Total)
	assert.Equal(t, "lofoten", page.Data[0]["slug"])

	// same query, different parameter order
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tours?page=1&destination=Norway", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListToursCacheKeyFollowsAppliedFilter(t *testing.T) {
	h, mock := newTestHandler(t)
	for _, dest := range []string{"Norway", "Iceland"} {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tours").WithArgs(dest).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
		mock.ExpectQuery("FROM tours WHERE published = 1 AND destination = \\?").WithArgs(dest, 12, 0).
			WillReturnRows(tourRows().AddRow(1, strings.ToLower(dest), dest, "", "", dest, "nature",
				5, 250000, "usd", 12, "", false, true, testNow, testNow))
	}

	r := engine(h)
	r.GET("/api/tours", h.ListTours)

	get := func(target string) (string, string) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, w.Code)
		var page domain.Page[map[string]any]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		require.Len(t, page.Data, 1)
		return w.Header().Get("X-Cache"), page.Data[0]["destination"].(string)
	}

	state, dest := get("/api/tours?destination=Norway&destination=Iceland")
	assert.Equal(t, "MISS", state)
	assert.Equal(t, "Norway", dest)

	state, dest = get("/api/tours?destination=Iceland&destination=Norway")
	assert.Equal(t, "MISS", state)
	assert.Equal(t, "Iceland", dest)

	// ignored params and clamped page sizes reuse the entry
	state, dest = get("/api/tours?destination=Iceland&x=1&page_size=0")
	assert.Equal(t, "HIT", state)
	assert.Equal(t, "Iceland", dest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTourNotFoundIsNotCached(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery("FROM tours WHERE slug =").WithArgs("atlantis").WillReturnRows(tourRows())
	mock.ExpectQuery("FROM tours WHERE slug =").WithArgs("atlantis").WillReturnRows(tourRows())

	r := engine(h)
	r.GET("/api/tours/:slug", h.GetTour)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tours/atlantis", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", decodeError(t, w).Code)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookRejectsBadSignatureWithoutWrites(t *testing.T) {
	h, mock := newTestHandler(t)
	r := engine(h)
	r.POST("/api/webhooks/stripe", h.StripeWebhook)

	payload := []byte(`{"id":"evt_h1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1","object":"checkout.session"}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", payments.SignPayload(payload, "whsec_wrong", time.Now()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "invalid_signature", body.Code)
	assert.Equal(t, "Invalid webhook signature.", body.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookDuplicateDelivery(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT IGNORE INTO stripe_events").WithArgs("evt_h2", payments.EventCheckoutExpired).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	r := engine(h)
	r.POST("/api/webhooks/stripe", h.StripeWebhook)

	payload := []byte(`{"id":"evt_h2","object":"event","type":"checkout.session.expired","data":{"object":{"id":"cs_2","object":"checkout.session","payment_status":"unpaid"}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", payments.SignPayload(payload, webhookSecret, time.Now()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true,"duplicate":true}`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookDatabaseFailureAnswers500(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT IGNORE INTO stripe_events").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	r := engine(h)
	r.POST("/api/webhooks/stripe", h.StripeWebhook)

	payload := []byte(`{"id":"evt_h3","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge","payment_intent":"pi_1"}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", payments.SignPayload(payload, webhookSecret, time.Now()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookRejectsOversizedBody(t *testing.T) {
	h, _ := newTestHandler(t)
	r := engine(h)
	r.POST("/api/webhooks/stripe", h.StripeWebhook)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe",
		bytes.NewReader(make([]byte, MaxWebhookBytes+1))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRespondDomainErrorLocalizesMessage(t *testing.T) {
	h, _ := newTestHandler(t)
	r := engine(h)
	r.GET("/x", func(c *gin.Context) {
		RespondDomainError(c, domain.ForbiddenError{Code: "payment_pending", Msg: "invoice available after payment"})
	})
	r.GET("/boom", func(c *gin.Context) {
		RespondDomainError(c, sql.ErrConnDone)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x?lang=fr", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "payment_pending", body.Code)
	assert.Equal(t, "invoice available after payment", body.Error)
	assert.NotEqual(t, body.Error, body.Message)
	assert.NotEmpty(t, body.RequestID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", decodeError(t, w).Error)
}

func TestBindJSONReportsFields(t *testing.T) {
	h, _ := newTestHandler(t)
	r := engine(h)
	r.POST("/api/bookings", h.CreateBooking)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/bookings",
		strings.NewReader(`{"tour_slug":"lofoten","travel_date":"2026-06-01","travelers":2,"customer":{"email":"nope","full_name":"Ana"}}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "validation_error", body.Code)
	assert.Equal(t, map[string]any{"fields": map[string]any{"customer.email": "email"}}, body.Details)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h, mock := newTestHandler(t)
	hash, err := auth.HashPassword("correct horse battery")
	require.NoError(t, err)
	mock.ExpectQuery("FROM admin_users WHERE email=").WithArgs("root@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "active",
			"last_login_at", "created_at", "updated_at"}).
			AddRow(1, "root@example.com", "Root", hash, "admin", true, nil, testNow, testNow))
	mock.ExpectExec("UPDATE admin_users SET last_login_at").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))

	r := engine(h)
	r.POST("/api/auth/login", h.Login)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"root@example.com","password":"correct horse battery"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "admin_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestUploadImageStoresSniffedPNG(t *testing.T) {
	h, _ := newTestHandler(t)
	r := engine(h)
	r.POST("/api/admin/uploads", h.UploadImage)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="pixel.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "image/png", got["content_type"])
	assert.True(t, strings.HasPrefix(got["key"].(string), "uploads/"))
	assert.Equal(t, "https://cdn.example.com/"+got["key"].(string), got["url"])
}

func TestUploadImageRequiresFile(t *testing.T) {
	h, _ := newTestHandler(t)
	r := engine(h)
	r.POST("/api/admin/uploads", h.UploadImage)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteUploadWithoutStorage(t *testing.T) {
	h, _ := newTestHandler(t)
	h.Storage = nil
	r := engine(h)
	r.DELETE("/api/admin/uploads/*key", h.DeleteUpload)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/admin/uploads/uploads/2026/03/a.png", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "service_unavailable", decodeError(t, w).Code)
}

func TestParamIDRejectsGarbage(t *testing.T) {
	h, _ := newTestHandler(t)
	r := engine(h)
	r.DELETE("/api/admin/tours/:id", h.DeleteTour)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/admin/tours/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJSONField(t *testing.T) {
	assert.Equal(t, "customer.full_name", jsonField("BookingInput.Customer.FullName"))
	assert.Equal(t, "tour_slug", jsonField("BookingInput.TourSlug"))
	assert.Equal(t, "amount_cents", jsonField("QuoteInput.AmountCents"))
}

func TestPurgeCacheDropsEntries(t *testing.T) {
	h, _ := newTestHandler(t)
	load := func(context.Context) ([]byte, error) { return []byte("{}"), nil }
	_, _, err := h.Cache.GetOrLoad(context.Background(), cache.KeyFAQ, load)
	require.NoError(t, err)

	r := engine(h)
	r.DELETE("/api/admin/cache", h.PurgeCache)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/admin/cache", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, hit, err := h.Cache.GetOrLoad(context.Background(), cache.KeyFAQ, load)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestAdminGroupRejectsDisabledAccount(t *testing.T) {
	h, mock := newTestHandler(t)
	token, _, err := h.Sessions.Issue(models.AdminUser{ID: 4, Email: "gone@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	mock.ExpectQuery("FROM admin_users WHERE id=").WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "active",
			"last_login_at", "created_at", "updated_at"}).
			AddRow(4, "gone@example.com", "Gone", "x", "admin", false, nil, testNow, testNow))

	r := engine(h)
	r.DELETE("/api/admin/cache", middleware.RequireAdmin(h.Sessions, h.ActiveAdmin), h.PurgeCache)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/cache", nil)
	req.AddCookie(&http.Cookie{Name: "admin_session", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", decodeError(t, w).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
