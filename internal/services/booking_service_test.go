package services

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
	"travelagency/internal/i18n"
)

func bookingInput() models.BookingInput {
	return models.BookingInput{
		TourSlug:   "Lofoten",
		TravelDate: "2026-06-01",
		Travelers:  2,
		Customer:   models.CustomerInput{Email: " Ana@Example.com ", FullName: "Ana  Silva", Country: "PT"},
	}
}

func stubReferences(t *testing.T, refs ...string) {
	t.Helper()
	prev := newReference
	i := 0
	newReference = func() string {
		ref := refs[i%len(refs)]
		i++
		return ref
	}
	t.Cleanup(func() { newReference = prev })
}

func TestNewReferenceFormat(t *testing.T) {
	assert.Regexp(t, `^BK-[0-9A-F]{8}$`, newReference())
}

func TestCreateBookingRetriesDuplicateReference(t *testing.T) {
	freezeNow(t)
	stubReferences(t, "BK-AAAAAAAA", "BK-BBBBBBBB")
	db, mock := newMock(t)
	travel := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tours WHERE slug = ? AND published = 1 LIMIT 1")).WithArgs("lofoten").
		WillReturnRows(tourRows().AddRow(7, "lofoten", "Lofoten", "", "", "Norway", "nature", 5, 250000, "usd", 12, "", true, true, testNow, testNow))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO customers").WithArgs("ana@example.com", "Ana Silva", "", "PT").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs("BK-AAAAAAAA", int64(7), int64(9), "2026-06-01", 2, int64(500000), "usd", "pending", "unpaid", "", "en").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs("BK-BBBBBBBB", int64(7), int64(9), "2026-06-01", 2, int64(500000), "usd", "pending", "unpaid", "", "en").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.reference = ? LIMIT 1")).WithArgs("BK-BBBBBBBB").
		WillReturnRows(bookingRows().AddRow(3, "BK-BBBBBBBB", 7, "Lofoten", "lofoten", 9, "ana@example.com", "Ana Silva", "", "PT",
			travel, 2, 500000, "usd", "pending", "unpaid", "", "en", testNow, testNow))

	b, err := BookingService{DB: db, Locale: "en"}.Create(context.Background(), bookingInput())
	require.NoError(t, err)
	assert.Equal(t, "BK-BBBBBBBB", b.Reference)
	assert.Equal(t, int64(500000), b.TotalCents)
	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, models.PaymentUnpaid, b.PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRejectsTodayAndPast(t *testing.T) {
	freezeNow(t)
	for _, date := range []string{"2026-03-01", "2025-12-31"} {
		in := bookingInput()
		in.TravelDate = date
		_, err := BookingService{}.Create(context.Background(), in)
		require.Error(t, err, date)
		assert.Equal(t, "travel_date", domain.CodeOf(err, ""), date)
	}

	in := bookingInput()
	in.TravelDate = "01/06/2026"
	_, err := BookingService{}.Create(context.Background(), in)
	assert.True(t, domain.IsValidation(err))
}

func TestCreateBookingEnforcesGroupSize(t *testing.T) {
	freezeNow(t)
	db, mock := newMock(t)
	mock.ExpectQuery("FROM tours WHERE slug =").WithArgs("lofoten").
		WillReturnRows(tourRows().AddRow(7, "lofoten", "Lofoten", "", "", "Norway", "nature", 5, 250000, "usd", 4, "", false, true, testNow, testNow))

	in := bookingInput()
	in.Travelers = 5
	_, err := BookingService{DB: db}.Create(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, "group_size", domain.CodeOf(err, ""))
}

func TestCreateBookingUnpublishedTour(t *testing.T) {
	freezeNow(t)
	db, mock := newMock(t)
	mock.ExpectQuery("FROM tours WHERE slug =").WithArgs("lofoten").WillReturnRows(tourRows())

	_, err := BookingService{DB: db}.Create(context.Background(), bookingInput())
	require.Error(t, err)
	assert.Equal(t, "tour_unavailable", domain.CodeOf(err, ""))
}

func TestUpdateStatusEnforcesTransitions(t *testing.T) {
	db, mock := newMock(t)
	row := func() *sqlmock.Rows {
		return bookingRows().AddRow(3, "BK-1", 7, "Lofoten", "lofoten", 9, "a@b.c", "A", "", "",
			testNow, 2, 500000, "usd", "completed", "paid", "", "en", testNow, testNow)
	}
	mock.ExpectQuery("WHERE b.id = ").WithArgs(int64(3)).WillReturnRows(row())

	_, err := BookingService{DB: db}.UpdateStatus(context.Background(), 3, "pending")
	require.Error(t, err)
	assert.Equal(t, "invalid_transition", domain.CodeOf(err, ""))

	_, err = BookingService{DB: db}.UpdateStatus(context.Background(), 3, "teleported")
	assert.True(t, domain.IsValidation(err))
}

func TestUpdateStatusConfirmsPendingBooking(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("WHERE b.id = ").WithArgs(int64(3)).
		WillReturnRows(bookingRows().AddRow(3, "BK-1", 7, "Lofoten", "lofoten", 9, "a@b.c", "A", "", "",
			testNow, 2, 500000, "usd", "pending", "unpaid", "", "en", testNow, testNow))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status=? WHERE id=?")).WithArgs("confirmed", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	b, err := BookingService{DB: db}.UpdateStatus(context.Background(), 3, "Confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePaidBookingIsRefused(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("WHERE b.id = ").WithArgs(int64(3)).
		WillReturnRows(bookingRows().AddRow(3, "BK-1", 7, "Lofoten", "lofoten", 9, "a@b.c", "A", "", "",
			testNow, 2, 500000, "usd", "confirmed", "paid", "", "en", testNow, testNow))

	err := BookingService{DB: db}.Delete(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, "booking_paid", domain.CodeOf(err, ""))
}

func TestInvoiceRequiresPaidBooking(t *testing.T) {
	freezeNow(t)
	db, mock := newMock(t)
	mock.ExpectQuery("WHERE b.reference =").WithArgs("BK-1").
		WillReturnRows(bookingRows().AddRow(3, "BK-1", 7, "Lofoten", "lofoten", 9, "a@b.c", "A", "", "",
			testNow, 2, 500000, "usd", "pending", "pending", "", "en", testNow, testNow))
	mock.ExpectQuery("WHERE b.reference =").WithArgs("BK-1").
		WillReturnRows(bookingRows().AddRow(3, "BK-1", 7, "Lofoten", "lofoten", 9, "a@b.c", "A", "", "",
			testNow, 2, 500000, "usd", "confirmed", "paid", "", "fr", testNow, testNow))

	bundle, err := i18n.New("en", "")
	require.NoError(t, err)
	svc := BookingService{DB: db, I18n: bundle}

	_, _, err = svc.Invoice(context.Background(), "BK-1")
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err))
	assert.Equal(t, "payment_pending", domain.CodeOf(err, ""))

	pdf, name, err := svc.Invoice(context.Background(), "BK-1")
	require.NoError(t, err)
	assert.Equal(t, "invoice-BK-1.pdf", name)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestBookingListRejectsInvertedRange(t *testing.T) {
	from := testNow
	to := testNow.AddDate(0, 0, -1)
	_, err := BookingService{}.List(context.Background(), models.BookingFilter{From: &from, To: &to}, domain.NewPagination(1, 10))
	assert.True(t, domain.IsValidation(err))
}
