package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
	"travelagency/internal/payments"
)

func TestCreateInquiryStoresNewInquiry(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO inquiries").
		WithArgs("Ana Silva", "ana@example.com", "", sqlmock.AnyArg(), "Honeymoon", "Ideas for June?", "new", "fr").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectQuery("FROM inquiries WHERE id=").WithArgs(int64(4)).
		WillReturnRows(inquiryRows().AddRow(4, "Ana Silva", "ana@example.com", "", nil, "Honeymoon", "Ideas for June?",
			"new", nil, "", "fr", testNow, testNow))

	inq, err := InquiryService{DB: db, Locale: "fr"}.Create(context.Background(), models.InquiryInput{
		Name: " Ana   Silva ", Email: "ANA@example.com", Subject: "Honeymoon", Message: " Ideas for June? ",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), inq.ID)
	assert.Equal(t, models.InquiryNew, inq.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInquiryUnknownTour(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM tours WHERE slug =").WithArgs("atlantis").WillReturnRows(tourRows())

	_, err := InquiryService{DB: db}.Create(context.Background(), models.InquiryInput{
		Name: "Ana", Email: "ana@example.com", Subject: "Trip", Message: "Hi", TourSlug: "Atlantis",
	})
	require.Error(t, err)
	assert.Equal(t, "tour_unavailable", domain.CodeOf(err, ""))
}

func TestQuoteOpensCheckoutAndMarksQuoted(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM inquiries WHERE id=").WithArgs(int64(4)).
		WillReturnRows(inquiryRows().AddRow(4, "Ana", "ana@example.com", "", nil, "Honeymoon", "Ideas?",
			"new", nil, "", "en", testNow, testNow))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET status='quoted', quoted_cents=?, currency=? WHERE id=?")).
		WithArgs(int64(320000), "eur", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "stripe", "cs_q", int64(320000), "eur", "pending").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectCommit()

	gw := &fakeGateway{session: payments.CheckoutSession{ID: "cs_q", URL: "https://pay.test/cs_q"}}
	svc := InquiryService{DB: db, Currency: "EUR", Payments: PaymentService{DB: db, Gateway: gw}}

	res, err := svc.Quote(context.Background(), 4, models.QuoteInput{AmountCents: 320000})
	require.NoError(t, err)
	assert.Equal(t, "cs_q", res.SessionID)
	require.Len(t, gw.requests, 1)
	assert.Equal(t, "4", gw.requests[0].Metadata[payments.MetaInquiryID])
	assert.Equal(t, int64(1), gw.requests[0].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteRejectsPaidInquiry(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM inquiries WHERE id=").WithArgs(int64(4)).
		WillReturnRows(inquiryRows().AddRow(4, "Ana", "ana@example.com", "", nil, "Honeymoon", "Ideas?",
			"paid", 320000, "eur", "en", testNow, testNow))

	gw := &fakeGateway{}
	_, err := InquiryService{DB: db, Currency: "eur", Payments: PaymentService{DB: db, Gateway: gw}}.
		Quote(context.Background(), 4, models.QuoteInput{AmountCents: 100})
	assert.True(t, domain.IsConflict(err))
	assert.Empty(t, gw.requests)
}

func TestRepoErrorMapping(t *testing.T) {
	assert.Nil(t, repoError("x", nil))
	assert.True(t, domain.IsInternal(repoError("x", errBoom)))
	v := domain.ValidationError{Field: "f"}
	assert.Equal(t, v, repoError("x", v))
}
