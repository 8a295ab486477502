package payments

import (
	"time"

	"github.com/stripe/stripe-go/v79/webhook"
)

// SignPayload builds a Stripe-Signature header for payload as Stripe would send it.
func SignPayload(payload []byte, secret string, at time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	}).Header
}
