// Package payments talks to Stripe: checkout sessions, refunds and webhook events.
package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/refund"
)

// Metadata keys attached to every checkout session and its payment intent.
const (
	MetaBookingID = "booking_id"
	MetaInquiryID = "inquiry_id"
	MetaReference = "reference"
)

var ErrNotConfigured = errors.New("payment provider not configured")

type CheckoutRequest struct {
	ClientReference string
	ProductName     string
	UnitAmountCents int64
	Quantity        int64
	Currency        string
	CustomerEmail   string
	Metadata        map[string]string
	SuccessURL      string
	CancelURL       string
	IdempotencyKey  string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Gateway is the provider surface the services depend on.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	Refund(ctx context.Context, paymentIntentID string) error
}

type StripeGateway struct {
	sessions session.Client
	refunds  refund.Client
}

func NewStripeGateway(secretKey string) *StripeGateway {
	backend := stripe.GetBackend(stripe.APIBackend)
	return &StripeGateway{
		sessions: session.Client{B: backend, Key: secretKey},
		refunds:  refund.Client{B: backend, Key: secretKey},
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	if g == nil || g.sessions.Key == "" {
		return CheckoutSession{}, ErrNotConfigured
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.ClientReference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(req.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(req.Currency)),
				UnitAmount: stripe.Int64(req.UnitAmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.ProductName),
				},
			},
		}},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: req.Metadata,
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	params.Context = ctx

	s, err := g.sessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("stripe checkout session: %w", err)
	}
	return CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, paymentIntentID string) error {
	if g == nil || g.refunds.Key == "" {
		return ErrNotConfigured
	}
	params := &stripe.RefundParams{PaymentIntent: stripe.String(paymentIntentID)}
	params.Context = ctx
	if _, err := g.refunds.New(params); err != nil {
		return fmt.Errorf("stripe refund: %w", err)
	}
	return nil
}
