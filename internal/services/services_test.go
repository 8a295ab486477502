package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"travelagency/internal/payments"
	"travelagency/internal/utils"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func freezeNow(t *testing.T) {
	t.Helper()
	prev := utils.NowUTC
	utils.NowUTC = func() time.Time { return testNow }
	t.Cleanup(func() { utils.NowUTC = prev })
}

func tourRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "slug", "title", "summary", "description", "destination", "category",
		"duration_days", "price_cents", "currency", "max_group_size", "cover_image_url", "featured", "published",
		"created_at", "updated_at"})
}

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "reference", "tour_id", "title", "slug", "customer_id",
		"email", "full_name", "phone", "country", "travel_date", "travelers", "total_cents", "currency",
		"status", "payment_status", "notes", "locale", "created_at", "updated_at"})
}

func paymentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "booking_id", "inquiry_id", "provider", "provider_session_id",
		"provider_payment_intent", "amount_cents", "currency", "status", "created_at", "updated_at"})
}

func inquiryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "phone", "tour_id", "subject", "message", "status",
		"quoted_cents", "currency", "locale", "created_at", "updated_at"})
}

type fakeGateway struct {
	requests []payments.CheckoutRequest
	refunds  []string
	session  payments.CheckoutSession
	err      error
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (payments.CheckoutSession, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return payments.CheckoutSession{}, g.err
	}
	return g.session, nil
}

func (g *fakeGateway) Refund(ctx context.Context, paymentIntentID string) error {
	g.refunds = append(g.refunds, paymentIntentID)
	return g.err
}

type recordingInvalidator struct {
	prefixes []string
}

func (r *recordingInvalidator) InvalidatePrefix(prefix string) int {
	r.prefixes = append(r.prefixes, prefix)
	return 0
}

var errBoom = errors.New("boom")
