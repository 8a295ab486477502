package models

import "time"

const (
	InquiryNew    = "new"
	InquiryQuoted = "quoted"
	InquiryPaid   = "paid"
	InquiryClosed = "closed"
)

var inquiryStatuses = map[string]bool{
	InquiryNew:    true,
	InquiryQuoted: true,
	InquiryPaid:   true,
	InquiryClosed: true,
}

func ValidInquiryStatus(s string) bool {
	return inquiryStatuses[s]
}

type Inquiry struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	TourID      *int64    `json:"tour_id,omitempty"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	QuotedCents *int64    `json:"quoted_cents,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	Locale      string    `json:"locale"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type InquiryInput struct {
	Name     string `json:"name" binding:"required,max=160"`
	Email    string `json:"email" binding:"required,email,max=190"`
	Phone    string `json:"phone" binding:"max=40"`
	TourSlug string `json:"tour_slug"`
	Subject  string `json:"subject" binding:"required,max=200"`
	Message  string `json:"message" binding:"required,max=5000"`
}

type QuoteInput struct {
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
}
