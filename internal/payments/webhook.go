package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

const (
	EventCheckoutCompleted      = "checkout.session.completed"
	EventCheckoutAsyncSucceeded = "checkout.session.async_payment_succeeded"
	EventCheckoutAsyncFailed    = "checkout.session.async_payment_failed"
	EventCheckoutExpired        = "checkout.session.expired"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
	EventChargeRefunded         = "charge.refunded"
)

const DefaultTolerance = 5 * time.Minute

var ErrInvalidSignature = errors.New("invalid webhook signature")

// Event is the provider event reduced to what reconciliation needs.
type Event struct {
	ID              string
	Type            string
	SessionID       string
	PaymentIntentID string
	// SessionPaid is true when a checkout session reports payment_status=paid.
	SessionPaid bool
	Metadata    map[string]string
}

type WebhookVerifier struct {
	secret    string
	tolerance time.Duration
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret, tolerance: DefaultTolerance}
}

// Verify checks the Stripe-Signature header against payload and decodes the event.
func (v *WebhookVerifier) Verify(payload []byte, signature string) (Event, error) {
	if v == nil || v.secret == "" {
		return Event{}, ErrNotConfigured
	}
	raw, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return Normalize(raw)
}

// Normalize extracts session, intent and metadata from the event object.
func Normalize(raw stripe.Event) (Event, error) {
	ev := Event{ID: raw.ID, Type: string(raw.Type)}
	if raw.Data == nil || len(raw.Data.Raw) == 0 {
		return ev, nil
	}

	switch ev.Type {
	case EventCheckoutCompleted, EventCheckoutAsyncSucceeded, EventCheckoutAsyncFailed, EventCheckoutExpired:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(raw.Data.Raw, &s); err != nil {
			return ev, fmt.Errorf("decode checkout session: %w", err)
		}
		ev.SessionID = s.ID
		ev.SessionPaid = s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
		if s.PaymentIntent != nil {
			ev.PaymentIntentID = s.PaymentIntent.ID
		}
		ev.Metadata = s.Metadata
	case EventPaymentIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(raw.Data.Raw, &pi); err != nil {
			return ev, fmt.Errorf("decode payment intent: %w", err)
		}
		ev.PaymentIntentID = pi.ID
		ev.Metadata = pi.Metadata
	case EventChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(raw.Data.Raw, &ch); err != nil {
			return ev, fmt.Errorf("decode charge: %w", err)
		}
		if ch.PaymentIntent != nil {
			ev.PaymentIntentID = ch.PaymentIntent.ID
		}
		ev.Metadata = ch.Metadata
	}
	return ev, nil
}
