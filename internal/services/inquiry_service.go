package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
	"travelagency/internal/mailer"
	"travelagency/internal/repositories"
	"travelagency/internal/utils"
)

type InquiryService struct {
	DB          *sql.DB
	Payments    PaymentService
	Mailer      mailer.Mailer
	I18n        Translator
	NotifyEmail string
	Currency    string
	Locale      string
	RequestID   string
}

func (s InquiryService) inquiries() repositories.InquiryRepository {
	return repositories.InquiryRepository{DB: dbOr(s.DB)}
}

// Create stores a contact request, notifies the agency and auto-replies to the visitor.
func (s InquiryService) Create(ctx context.Context, in models.InquiryInput) (models.Inquiry, error) {
	inq := models.Inquiry{
		Name:    utils.NormalizeSpace(in.Name),
		Email:   utils.NormalizeEmail(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Subject: utils.NormalizeSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
		Status:  models.InquiryNew,
		Locale:  s.locale(),
	}
	switch {
	case inq.Name == "":
		return models.Inquiry{}, domain.ValidationError{Field: "name", Msg: "required"}
	case inq.Email == "" || !strings.Contains(inq.Email, "@"):
		return models.Inquiry{}, domain.ValidationError{Field: "email", Msg: "invalid email"}
	case inq.Subject == "":
		return models.Inquiry{}, domain.ValidationError{Field: "subject", Msg: "required"}
	case inq.Message == "":
		return models.Inquiry{}, domain.ValidationError{Field: "message", Msg: "required"}
	}

	if slug := strings.ToLower(strings.TrimSpace(in.TourSlug)); slug != "" {
		tour, err := repositories.TourRepository{DB: dbOr(s.DB)}.GetBySlug(ctx, slug, true)
		switch {
		case err == nil:
			inq.TourID = &tour.ID
		case errors.Is(err, sql.ErrNoRows):
			return models.Inquiry{}, domain.ValidationError{Field: "tour_slug", Msg: "unknown tour", Code: "tour_unavailable"}
		default:
			return models.Inquiry{}, repoError("tour", err)
		}
	}

	id, err := s.inquiries().Create(ctx, inq)
	if err != nil {
		return models.Inquiry{}, repoError("inquiry", err)
	}
	created, err := s.Get(ctx, id)
	if err != nil {
		return models.Inquiry{}, err
	}
	utils.LogEvent(s.RequestID, "inquiry", "create", "inquiry received")

	if s.NotifyEmail != "" {
		mailer.SendAsync(s.Mailer, s.RequestID, mailer.Message{
			To:      s.NotifyEmail,
			ReplyTo: created.Email,
			Subject: translate(s.I18n, "en", "email.inquiry_notify.subject", created.Name),
			Body: translate(s.I18n, "en", "email.inquiry_notify.body",
				created.Name, created.Email, safe(created.Phone, "-"), created.Subject, created.Message),
		})
	}
	mailer.SendAsync(s.Mailer, s.RequestID, mailer.Message{
		To:      created.Email,
		Subject: translate(s.I18n, created.Locale, "email.inquiry_autoreply.subject", created.Subject),
		Body:    translate(s.I18n, created.Locale, "email.inquiry_autoreply.body", created.Name),
	})
	return created, nil
}

func (s InquiryService) Get(ctx context.Context, id int64) (models.Inquiry, error) {
	if id <= 0 {
		return models.Inquiry{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	inq, err := s.inquiries().GetByID(ctx, id)
	return inq, repoError("inquiry", err)
}

func (s InquiryService) List(ctx context.Context, f repositories.InquiryFilter, p domain.Pagination) (domain.Page[models.Inquiry], error) {
	if f.Status != "" && !models.ValidInquiryStatus(f.Status) {
		return domain.Page[models.Inquiry]{}, domain.ValidationError{Field: "status", Msg: "unknown status"}
	}
	items, total, err := s.inquiries().List(ctx, f, p)
	if err != nil {
		return domain.Page[models.Inquiry]{}, repoError("inquiry", err)
	}
	return domain.Page[models.Inquiry]{Data: items, Pagination: p.WithTotal(total)}, nil
}

func (s InquiryService) UpdateStatus(ctx context.Context, id int64, status string) (models.Inquiry, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.ValidInquiryStatus(status) {
		return models.Inquiry{}, domain.ValidationError{Field: "status", Msg: "unknown status"}
	}
	if err := s.inquiries().UpdateStatus(ctx, id, status); err != nil {
		return models.Inquiry{}, repoError("inquiry", err)
	}
	return s.Get(ctx, id)
}

// Quote prices an inquiry, opens a checkout session for it and emails the link.
func (s InquiryService) Quote(ctx context.Context, id int64, q models.QuoteInput) (models.CheckoutResult, error) {
	if q.AmountCents <= 0 {
		return models.CheckoutResult{}, domain.ValidationError{Field: "amount_cents", Msg: "must be positive"}
	}
	currency := strings.ToLower(strings.TrimSpace(q.Currency))
	if currency == "" {
		currency = strings.ToLower(s.Currency)
	}
	if len(currency) != 3 {
		return models.CheckoutResult{}, domain.ValidationError{Field: "currency", Msg: "expected ISO 4217 code"}
	}

	inq, err := s.Get(ctx, id)
	if err != nil {
		return models.CheckoutResult{}, err
	}
	if inq.Status == models.InquiryPaid || inq.Status == models.InquiryClosed {
		return models.CheckoutResult{}, domain.ConflictError{Resource: "inquiry", Msg: "inquiry is " + inq.Status}
	}

	ps := s.Payments
	ps.RequestID = s.RequestID
	res, err := ps.CheckoutInquiry(ctx, inq, q.AmountCents, currency)
	if err != nil {
		return models.CheckoutResult{}, err
	}

	utils.LogEvent(s.RequestID, "inquiry", "quote", "quote sent with session "+res.SessionID)
	mailer.SendAsync(s.Mailer, s.RequestID, mailer.Message{
		To:      inq.Email,
		Subject: translate(s.I18n, inq.Locale, "email.quote.subject", inq.Subject),
		Body: translate(s.I18n, inq.Locale, "email.quote.body",
			inq.Name, inq.Subject, utils.FormatMoney(q.AmountCents, currency), res.CheckoutURL),
	})
	return res, nil
}

func (s InquiryService) locale() string {
	if s.Locale != "" {
		return s.Locale
	}
	if s.I18n != nil {
		return s.I18n.Default()
	}
	return "en"
}
