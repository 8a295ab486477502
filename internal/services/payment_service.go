package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"travelagency/internal/config"
	intdb "travelagency/internal/db"
	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
	"travelagency/internal/mailer"
	"travelagency/internal/payments"
	"travelagency/internal/repositories"
	"travelagency/internal/utils"
)

// Webhook outcomes, also used as the result label of stripe_webhook_events_total.
const (
	OutcomeApplied        = "applied"
	OutcomeDuplicate      = "duplicate"
	OutcomeIgnored        = "ignored"
	OutcomeIgnoredUnpaid  = "ignored_unpaid"
	OutcomeUnknownPayment = "unknown_payment"
	OutcomeStale          = "stale"
	OutcomeError          = "error"
)

type WebhookResult struct {
	Duplicate bool
	Outcome   string
}

type PaymentService struct {
	DB        *sql.DB
	Gateway   payments.Gateway
	Stripe    config.StripeConfig
	Mailer    mailer.Mailer
	I18n      Translator
	Events    *prometheus.CounterVec
	RequestID string
}

func (s PaymentService) paymentRepo() repositories.PaymentRepository {
	return repositories.PaymentRepository{DB: dbOr(s.DB)}
}

func (s PaymentService) gateway() (payments.Gateway, error) {
	if s.Gateway == nil {
		return nil, domain.UnavailableError{Service: "payments", Err: payments.ErrNotConfigured}
	}
	return s.Gateway, nil
}

// CheckoutBooking opens a hosted checkout session for a pending booking.
func (s PaymentService) CheckoutBooking(ctx context.Context, ref string) (models.CheckoutResult, error) {
	gw, err := s.gateway()
	if err != nil {
		return models.CheckoutResult{}, err
	}
	db := dbOr(s.DB)
	b, err := BookingService{DB: db}.GetByReference(ctx, ref)
	if err != nil {
		return models.CheckoutResult{}, err
	}
	if !models.CanCheckout(b.Status, b.PaymentStatus) {
		return models.CheckoutResult{}, domain.ConflictError{
			Resource: "booking",
			Msg:      fmt.Sprintf("booking is %s/%s", b.Status, b.PaymentStatus),
			Code:     "checkout_not_allowed",
		}
	}
	attempts, err := s.paymentRepo().ListByBooking(ctx, b.ID)
	if err != nil {
		return models.CheckoutResult{}, repoError("payment", err)
	}

	travelers := int64(b.Travelers)
	if travelers < 1 {
		travelers = 1
	}
	email := ""
	if b.Customer != nil {
		email = b.Customer.Email
	}
	sess, err := gw.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		ClientReference: b.Reference,
		ProductName:     b.TourTitle + " (" + utils.FormatDate(b.TravelDate) + ")",
		UnitAmountCents: b.TotalCents / travelers,
		Quantity:        travelers,
		Currency:        b.Currency,
		CustomerEmail:   email,
		Metadata: map[string]string{
			payments.MetaBookingID: strconv.FormatInt(b.ID, 10),
			payments.MetaReference: b.Reference,
		},
		SuccessURL:     s.Stripe.SuccessURL,
		CancelURL:      s.Stripe.CancelURL,
		IdempotencyKey: fmt.Sprintf("checkout-%s-%d", b.Reference, len(attempts)),
	})
	if err != nil {
		utils.LogError(s.RequestID, "payment", "checkout", err)
		return models.CheckoutResult{}, domain.InternalError{Msg: "could not start checkout", Err: err}
	}

	bookingID := b.ID
	err = intdb.WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := s.paymentRepo().WithTx(tx).Create(ctx, models.Payment{
			BookingID:         &bookingID,
			Provider:          models.ProviderStripe,
			ProviderSessionID: sess.ID,
			AmountCents:       (b.TotalCents / travelers) * travelers,
			Currency:          b.Currency,
			Status:            models.PaymentStatusPending,
		}); err != nil {
			return err
		}
		_, err := repositories.BookingRepository{}.WithTx(tx).SetPaymentStatusUnlessSettled(ctx, b.ID, models.PaymentPending)
		return err
	})
	if err != nil {
		return models.CheckoutResult{}, repoError("payment", err)
	}

	utils.LogEvent(s.RequestID, "payment", "checkout", fmt.Sprintf("booking=%s session=%s", b.Reference, sess.ID))
	return models.CheckoutResult{CheckoutURL: sess.URL, SessionID: sess.ID}, nil
}

// CheckoutInquiry opens a checkout session for a quote and records it on the inquiry.
func (s PaymentService) CheckoutInquiry(ctx context.Context, in models.Inquiry, amountCents int64, currency string) (models.CheckoutResult, error) {
	gw, err := s.gateway()
	if err != nil {
		return models.CheckoutResult{}, err
	}
	sess, err := gw.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		ClientReference: fmt.Sprintf("INQ-%d", in.ID),
		ProductName:     in.Subject,
		UnitAmountCents: amountCents,
		Quantity:        1,
		Currency:        currency,
		CustomerEmail:   in.Email,
		Metadata: map[string]string{
			payments.MetaInquiryID: strconv.FormatInt(in.ID, 10),
		},
		SuccessURL: s.Stripe.SuccessURL,
		CancelURL:  s.Stripe.CancelURL,
	})
	if err != nil {
		utils.LogError(s.RequestID, "payment", "quote_checkout", err)
		return models.CheckoutResult{}, domain.InternalError{Msg: "could not start checkout", Err: err}
	}

	inquiryID := in.ID
	err = intdb.WithTx(ctx, dbOr(s.DB), func(tx *sql.Tx) error {
		if err := (repositories.InquiryRepository{}).WithTx(tx).SetQuote(ctx, in.ID, amountCents, currency); err != nil {
			return err
		}
		_, err := s.paymentRepo().WithTx(tx).Create(ctx, models.Payment{
			InquiryID:         &inquiryID,
			Provider:          models.ProviderStripe,
			ProviderSessionID: sess.ID,
			AmountCents:       amountCents,
			Currency:          currency,
			Status:            models.PaymentStatusPending,
		})
		return err
	})
	if err != nil {
		return models.CheckoutResult{}, repoError("inquiry", err)
	}
	return models.CheckoutResult{CheckoutURL: sess.URL, SessionID: sess.ID}, nil
}

// HandleWebhook applies a verified provider event exactly once. Every write, including
// the processed-event record, happens in one transaction.
func (s PaymentService) HandleWebhook(ctx context.Context, ev payments.Event) (WebhookResult, error) {
	if strings.TrimSpace(ev.ID) == "" {
		return WebhookResult{}, domain.ValidationError{Field: "id", Msg: "event id missing"}
	}

	var res WebhookResult
	var paidBookingID int64
	err := intdb.WithTx(ctx, dbOr(s.DB), func(tx *sql.Tx) error {
		fresh, err := repositories.StripeEventRepository{}.WithTx(tx).Record(ctx, ev.ID, ev.Type)
		if err != nil {
			return err
		}
		if !fresh {
			res = WebhookResult{Duplicate: true, Outcome: OutcomeDuplicate}
			return nil
		}
		res.Outcome, paidBookingID, err = s.apply(ctx, tx, ev)
		return err
	})
	if err != nil {
		s.count(ev.Type, OutcomeError)
		utils.LogError(s.RequestID, "payment", "webhook", fmt.Errorf("event %s (%s): %w", ev.ID, ev.Type, err))
		return WebhookResult{}, domain.InternalError{Msg: "webhook processing failed", Err: err}
	}

	s.count(ev.Type, res.Outcome)
	utils.LogEvent(s.RequestID, "payment", "webhook", fmt.Sprintf("event=%s type=%s outcome=%s", ev.ID, ev.Type, res.Outcome))
	if paidBookingID > 0 {
		s.sendReceipt(ctx, paidBookingID)
	}
	return res, nil
}

func (s PaymentService) apply(ctx context.Context, tx *sql.Tx, ev payments.Event) (string, int64, error) {
	switch ev.Type {
	case payments.EventCheckoutCompleted, payments.EventCheckoutAsyncSucceeded:
		if ev.Type == payments.EventCheckoutCompleted && !ev.SessionPaid {
			// Delayed methods settle later through async_payment_succeeded.
			return OutcomeIgnoredUnpaid, 0, nil
		}
		return s.applySucceeded(ctx, tx, ev)
	case payments.EventCheckoutExpired:
		outcome, err := s.applyUnsettled(ctx, tx, ev, models.PaymentStatusExpired, models.PaymentUnpaid)
		return outcome, 0, err
	case payments.EventCheckoutAsyncFailed, payments.EventPaymentIntentFailed:
		outcome, err := s.applyUnsettled(ctx, tx, ev, models.PaymentStatusFailed, models.PaymentFailed)
		return outcome, 0, err
	case payments.EventChargeRefunded:
		outcome, err := s.applyRefunded(ctx, tx, ev)
		return outcome, 0, err
	default:
		return OutcomeIgnored, 0, nil
	}
}

func (s PaymentService) applySucceeded(ctx context.Context, tx *sql.Tx, ev payments.Event) (string, int64, error) {
	p, err := s.findPayment(ctx, tx, ev)
	if errors.Is(err, sql.ErrNoRows) {
		return OutcomeUnknownPayment, 0, nil
	}
	if err != nil {
		return "", 0, err
	}
	if p.Status == models.PaymentStatusSucceeded || p.Status == models.PaymentStatusRefunded {
		return OutcomeStale, 0, nil
	}
	if err := s.paymentRepo().WithTx(tx).UpdateStatus(ctx, p.ID, models.PaymentStatusSucceeded, ev.PaymentIntentID); err != nil {
		return "", 0, err
	}

	var bookingID int64
	if p.BookingID != nil {
		if err := (repositories.BookingRepository{}).WithTx(tx).MarkPaid(ctx, *p.BookingID); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", 0, err
		}
		bookingID = *p.BookingID
	}
	if p.InquiryID != nil {
		if _, err := (repositories.InquiryRepository{}).WithTx(tx).MarkPaid(ctx, *p.InquiryID); err != nil {
			return "", 0, err
		}
	}
	return OutcomeApplied, bookingID, nil
}

// applyUnsettled handles expiry and failure. Only a pending payment moves, and a
// booking that is already paid or refunded keeps its payment status.
func (s PaymentService) applyUnsettled(ctx context.Context, tx *sql.Tx, ev payments.Event, paymentStatus, bookingPaymentStatus string) (string, error) {
	p, err := s.findPayment(ctx, tx, ev)
	if errors.Is(err, sql.ErrNoRows) {
		return OutcomeUnknownPayment, nil
	}
	if err != nil {
		return "", err
	}
	if p.Status != models.PaymentStatusPending {
		return OutcomeStale, nil
	}
	if err := s.paymentRepo().WithTx(tx).UpdateStatus(ctx, p.ID, paymentStatus, ev.PaymentIntentID); err != nil {
		return "", err
	}
	if p.BookingID != nil {
		if _, err := (repositories.BookingRepository{}).WithTx(tx).SetPaymentStatusUnlessSettled(ctx, *p.BookingID, bookingPaymentStatus); err != nil {
			return "", err
		}
	}
	return OutcomeApplied, nil
}

func (s PaymentService) applyRefunded(ctx context.Context, tx *sql.Tx, ev payments.Event) (string, error) {
	p, err := s.findPayment(ctx, tx, ev)
	if errors.Is(err, sql.ErrNoRows) {
		return OutcomeUnknownPayment, nil
	}
	if err != nil {
		return "", err
	}
	if p.Status == models.PaymentStatusRefunded {
		return OutcomeStale, nil
	}
	if err := s.paymentRepo().WithTx(tx).UpdateStatus(ctx, p.ID, models.PaymentStatusRefunded, ""); err != nil {
		return "", err
	}
	if p.BookingID != nil {
		if err := (repositories.BookingRepository{}).WithTx(tx).UpdatePaymentStatus(ctx, *p.BookingID, models.PaymentRefunded); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
	}
	return OutcomeApplied, nil
}

// findPayment resolves the payment row of an event: session id first, then payment
// intent, then the newest pending attempt of the booking or inquiry in the metadata.
func (s PaymentService) findPayment(ctx context.Context, tx *sql.Tx, ev payments.Event) (models.Payment, error) {
	repo := s.paymentRepo().WithTx(tx)
	if ev.SessionID != "" {
		p, err := repo.FindBySession(ctx, ev.SessionID)
		if !errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
	}
	if ev.PaymentIntentID != "" {
		p, err := repo.FindByPaymentIntent(ctx, ev.PaymentIntentID)
		if !errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
	}
	bookingID := metaID(ev.Metadata, payments.MetaBookingID)
	inquiryID := metaID(ev.Metadata, payments.MetaInquiryID)
	if bookingID > 0 || inquiryID > 0 {
		return repo.LatestPendingFor(ctx, bookingID, inquiryID)
	}
	return models.Payment{}, sql.ErrNoRows
}

func metaID(meta map[string]string, key string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(meta[key]), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func (s PaymentService) sendReceipt(ctx context.Context, bookingID int64) {
	if s.Mailer == nil {
		return
	}
	b, err := repositories.BookingRepository{DB: dbOr(s.DB)}.GetByID(ctx, bookingID)
	if err != nil {
		utils.LogError(s.RequestID, "payment", "receipt", err)
		return
	}
	if b.Customer == nil {
		return
	}
	mailer.SendAsync(s.Mailer, s.RequestID, mailer.Message{
		To:      b.Customer.Email,
		Subject: translate(s.I18n, b.Locale, "email.payment_receipt.subject", b.Reference),
		Body: translate(s.I18n, b.Locale, "email.payment_receipt.body",
			b.Customer.FullName, utils.FormatMoney(b.TotalCents, b.Currency), b.Reference, utils.FormatDate(b.TravelDate)),
	})
}

func (s PaymentService) count(eventType, outcome string) {
	if s.Events == nil {
		return
	}
	s.Events.WithLabelValues(eventType, outcome).Inc()
}

func (s PaymentService) List(ctx context.Context, f models.PaymentFilter, p domain.Pagination) (domain.Page[models.Payment], error) {
	items, total, err := s.paymentRepo().List(ctx, f, p)
	if err != nil {
		return domain.Page[models.Payment]{}, repoError("payment", err)
	}
	return domain.Page[models.Payment]{Data: items, Pagination: p.WithTotal(total)}, nil
}

func (s PaymentService) Get(ctx context.Context, id int64) (models.Payment, error) {
	if id <= 0 {
		return models.Payment{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	p, err := s.paymentRepo().GetByID(ctx, id)
	return p, repoError("payment", err)
}

// Refund asks the provider to refund a succeeded payment. Local status changes
// arrive later through the charge.refunded event.
func (s PaymentService) Refund(ctx context.Context, id int64) (models.Payment, error) {
	gw, err := s.gateway()
	if err != nil {
		return models.Payment{}, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return models.Payment{}, err
	}
	if p.Status != models.PaymentStatusSucceeded || p.ProviderPaymentIntent == "" {
		return models.Payment{}, domain.ConflictError{Resource: "payment", Msg: "only succeeded payments can be refunded"}
	}
	if err := gw.Refund(ctx, p.ProviderPaymentIntent); err != nil {
		utils.LogError(s.RequestID, "payment", "refund", err)
		return models.Payment{}, domain.InternalError{Msg: "refund failed", Err: err}
	}
	utils.LogEvent(s.RequestID, "payment", "refund", fmt.Sprintf("payment=%d intent=%s", p.ID, p.ProviderPaymentIntent))
	return p, nil
}
