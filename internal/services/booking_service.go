package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	intdb "travelagency/internal/db"
	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
	"travelagency/internal/mailer"
	"travelagency/internal/repositories"
	"travelagency/internal/utils"
)

const referenceAttempts = 3

// newReference returns "BK-" plus 8 uppercase hex characters.
var newReference = func() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(id[:8])
}

type BookingService struct {
	DB        *sql.DB
	Mailer    mailer.Mailer
	I18n      Translator
	Locale    string
	RequestID string
}

func (s BookingService) bookings() repositories.BookingRepository {
	return repositories.BookingRepository{DB: dbOr(s.DB)}
}

// Create validates the request against the tour, upserts the customer and stores a
// pending, unpaid booking.
func (s BookingService) Create(ctx context.Context, in models.BookingInput) (models.Booking, error) {
	slug := strings.ToLower(strings.TrimSpace(in.TourSlug))
	email := utils.NormalizeEmail(in.Customer.Email)
	name := utils.NormalizeSpace(in.Customer.FullName)
	if slug == "" {
		return models.Booking{}, domain.ValidationError{Field: "tour_slug", Msg: "required"}
	}
	if email == "" || !strings.Contains(email, "@") {
		return models.Booking{}, domain.ValidationError{Field: "customer.email", Msg: "invalid email"}
	}
	if name == "" {
		return models.Booking{}, domain.ValidationError{Field: "customer.full_name", Msg: "required"}
	}

	travelDate, err := utils.ParseDate(in.TravelDate)
	if err != nil {
		return models.Booking{}, domain.ValidationError{Field: "travel_date", Msg: "expected YYYY-MM-DD", Code: "travel_date", Err: err}
	}
	if !travelDate.After(utils.StartOfDay(utils.NowUTC())) {
		return models.Booking{}, domain.ValidationError{Field: "travel_date", Msg: "must be after today", Code: "travel_date"}
	}

	db := dbOr(s.DB)
	tour, err := repositories.TourRepository{DB: db}.GetBySlug(ctx, slug, true)
	if err == sql.ErrNoRows {
		return models.Booking{}, domain.ValidationError{Field: "tour_slug", Msg: "tour not available", Code: "tour_unavailable"}
	}
	if err != nil {
		return models.Booking{}, repoError("tour", err)
	}
	if in.Travelers < 1 || in.Travelers > tour.MaxGroupSize {
		return models.Booking{}, domain.ValidationError{
			Field: "travelers",
			Msg:   fmt.Sprintf("must be between 1 and %d", tour.MaxGroupSize),
			Code:  "group_size",
		}
	}

	b := models.Booking{
		TourID:        tour.ID,
		TravelDate:    travelDate,
		Travelers:     in.Travelers,
		TotalCents:    tour.PriceCents * int64(in.Travelers),
		Currency:      tour.Currency,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentUnpaid,
		Notes:         strings.TrimSpace(in.Notes),
		Locale:        s.locale(),
	}

	err = intdb.WithTx(ctx, db, func(tx *sql.Tx) error {
		customerID, err := repositories.CustomerRepository{}.WithTx(tx).Upsert(ctx, models.Customer{
			Email:    email,
			FullName: name,
			Phone:    strings.TrimSpace(in.Customer.Phone),
			Country:  utils.NormalizeSpace(in.Customer.Country),
		})
		if err != nil {
			return err
		}
		b.CustomerID = customerID

		repo := s.bookings().WithTx(tx)
		for attempt := 1; ; attempt++ {
			b.Reference = newReference()
			id, err := repo.Create(ctx, b)
			if err == nil {
				b.ID = id
				return nil
			}
			if !intdb.IsDuplicateKey(err) || attempt >= referenceAttempts {
				return err
			}
		}
	})
	if err != nil {
		return models.Booking{}, repoError("booking", err)
	}

	created, err := s.bookings().GetByReference(ctx, b.Reference)
	if err != nil {
		return models.Booking{}, repoError("booking", err)
	}
	utils.LogEvent(s.RequestID, "booking", "create", "booking "+created.Reference+" created")
	s.sendReceived(created)
	return created, nil
}

func (s BookingService) sendReceived(b models.Booking) {
	if b.Customer == nil {
		return
	}
	locale := b.Locale
	mailer.SendAsync(s.Mailer, s.RequestID, mailer.Message{
		To:      b.Customer.Email,
		Subject: translate(s.I18n, locale, "email.booking_received.subject", b.Reference),
		Body: translate(s.I18n, locale, "email.booking_received.body",
			b.Customer.FullName, b.TourTitle, utils.FormatDate(b.TravelDate), b.Travelers, b.Reference,
			utils.FormatMoney(b.TotalCents, b.Currency)),
	})
}

func (s BookingService) GetByReference(ctx context.Context, ref string) (models.Booking, error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	if ref == "" {
		return models.Booking{}, domain.ValidationError{Field: "reference", Msg: "required"}
	}
	b, err := s.bookings().GetByReference(ctx, ref)
	return b, repoError("booking", err)
}

func (s BookingService) Summary(ctx context.Context, ref string) (models.BookingSummary, error) {
	b, err := s.GetByReference(ctx, ref)
	if err != nil {
		return models.BookingSummary{}, err
	}
	return b.Summary(), nil
}

// Invoice renders the PDF invoice of a paid booking.
func (s BookingService) Invoice(ctx context.Context, ref string) ([]byte, string, error) {
	b, err := s.GetByReference(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	if b.PaymentStatus != models.PaymentPaid {
		return nil, "", domain.ForbiddenError{Code: "payment_pending", Msg: "invoice available after payment"}
	}
	locale := s.Locale
	if locale == "" {
		locale = b.Locale
	}
	return DocsService{I18n: s.I18n, Locale: locale}.BookingInvoice(b)
}

func (s BookingService) List(ctx context.Context, f models.BookingFilter, p domain.Pagination) (domain.Page[models.Booking], error) {
	if f.Status != "" && !validBookingStatus(f.Status) {
		return domain.Page[models.Booking]{}, domain.ValidationError{Field: "status", Msg: "unknown status"}
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return domain.Page[models.Booking]{}, domain.ValidationError{Field: "to", Msg: "must not be before from"}
	}
	items, total, err := s.bookings().List(ctx, f, p)
	if err != nil {
		return domain.Page[models.Booking]{}, repoError("booking", err)
	}
	return domain.Page[models.Booking]{Data: items, Pagination: p.WithTotal(total)}, nil
}

func (s BookingService) Get(ctx context.Context, id int64) (models.BookingDetail, error) {
	if id <= 0 {
		return models.BookingDetail{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	b, err := s.bookings().GetByID(ctx, id)
	if err != nil {
		return models.BookingDetail{}, repoError("booking", err)
	}
	payments, err := repositories.PaymentRepository{DB: dbOr(s.DB)}.ListByBooking(ctx, id)
	if err != nil {
		return models.BookingDetail{}, repoError("payment", err)
	}
	return models.BookingDetail{Booking: b, Payments: payments}, nil
}

// UpdateStatus applies an admin status change allowed by the booking lifecycle.
func (s BookingService) UpdateStatus(ctx context.Context, id int64, status string) (models.Booking, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !validBookingStatus(status) {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "unknown status"}
	}
	repo := s.bookings()
	b, err := repo.GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, repoError("booking", err)
	}
	if !models.CanTransitionBooking(b.Status, status) {
		return models.Booking{}, domain.ValidationError{
			Field: "status",
			Msg:   fmt.Sprintf("cannot move from %s to %s", b.Status, status),
			Code:  "invalid_transition",
		}
	}
	if err := repo.UpdateStatus(ctx, id, status); err != nil {
		return models.Booking{}, repoError("booking", err)
	}
	utils.LogEvent(s.RequestID, "booking", "status", fmt.Sprintf("booking %s %s -> %s", b.Reference, b.Status, status))
	b.Status = status
	return b, nil
}

func (s BookingService) Delete(ctx context.Context, id int64) error {
	repo := s.bookings()
	b, err := repo.GetByID(ctx, id)
	if err != nil {
		return repoError("booking", err)
	}
	if b.PaymentStatus == models.PaymentPaid {
		return domain.ConflictError{Resource: "booking", Msg: "paid bookings cannot be deleted", Code: "booking_paid"}
	}
	if err := repo.Delete(ctx, id); err != nil {
		return repoError("booking", err)
	}
	utils.LogEvent(s.RequestID, "booking", "delete", "booking "+b.Reference+" deleted")
	return nil
}

func (s BookingService) locale() string {
	if s.Locale != "" {
		return s.Locale
	}
	if s.I18n != nil {
		return s.I18n.Default()
	}
	return "en"
}

func validBookingStatus(s string) bool {
	switch s {
	case models.BookingPending, models.BookingConfirmed, models.BookingCompleted, models.BookingCancelled:
		return true
	}
	return false
}
