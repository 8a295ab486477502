package models

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
	PaymentStatusRefunded  = "refunded"
)

const ProviderStripe = "stripe"

type Payment struct {
	ID                    int64     `json:"id"`
	BookingID             *int64    `json:"booking_id,omitempty"`
	InquiryID             *int64    `json:"inquiry_id,omitempty"`
	Provider              string    `json:"provider"`
	ProviderSessionID     string    `json:"provider_session_id"`
	ProviderPaymentIntent string    `json:"provider_payment_intent,omitempty"`
	AmountCents           int64     `json:"amount_cents"`
	Currency              string    `json:"currency"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type PaymentFilter struct {
	Status    string
	BookingID int64
	InquiryID int64
}

// CheckoutResult is returned to the client that starts a payment.
type CheckoutResult struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}
