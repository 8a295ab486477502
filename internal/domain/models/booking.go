package models

import "time"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

const (
	PaymentUnpaid   = "unpaid"
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

var bookingTransitions = map[string][]string{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

// CanTransitionBooking reports whether an admin may move a booking from one status to another.
func CanTransitionBooking(from, to string) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanCheckout reports whether a booking may start a new payment attempt.
func CanCheckout(status, paymentStatus string) bool {
	if status != BookingPending {
		return false
	}
	switch paymentStatus {
	case PaymentUnpaid, PaymentFailed, PaymentPending:
		return true
	default:
		return false
	}
}

type Customer struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Booking struct {
	ID            int64     `json:"id"`
	Reference     string    `json:"reference"`
	TourID        int64     `json:"tour_id"`
	TourTitle     string    `json:"tour_title"`
	TourSlug      string    `json:"tour_slug"`
	CustomerID    int64     `json:"customer_id"`
	Customer      *Customer `json:"customer,omitempty"`
	TravelDate    time.Time `json:"travel_date"`
	Travelers     int       `json:"travelers"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Notes         string    `json:"notes,omitempty"`
	Locale        string    `json:"locale"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BookingSummary is the public view of a booking.
type BookingSummary struct {
	Reference     string    `json:"reference"`
	TourTitle     string    `json:"tour_title"`
	TourSlug      string    `json:"tour_slug"`
	TravelDate    string    `json:"travel_date"`
	Travelers     int       `json:"travelers"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

func (b Booking) Summary() BookingSummary {
	return BookingSummary{
		Reference:     b.Reference,
		TourTitle:     b.TourTitle,
		TourSlug:      b.TourSlug,
		TravelDate:    b.TravelDate.UTC().Format("2006-01-02"),
		Travelers:     b.Travelers,
		TotalCents:    b.TotalCents,
		Currency:      b.Currency,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		CreatedAt:     b.CreatedAt,
	}
}

type CustomerInput struct {
	Email    string `json:"email" binding:"required,email,max=190"`
	FullName string `json:"full_name" binding:"required,max=160"`
	Phone    string `json:"phone" binding:"max=40"`
	Country  string `json:"country" binding:"max=80"`
}

type BookingInput struct {
	TourSlug   string        `json:"tour_slug" binding:"required"`
	TravelDate string        `json:"travel_date" binding:"required"`
	Travelers  int           `json:"travelers" binding:"required,gte=1"`
	Customer   CustomerInput `json:"customer" binding:"required"`
	Notes      string        `json:"notes" binding:"max=2000"`
}

type BookingFilter struct {
	Status        string
	PaymentStatus string
	Query         string
	From          *time.Time
	To            *time.Time
}

// BookingDetail is the admin view: the booking plus every payment attempt.
type BookingDetail struct {
	Booking
	Payments []Payment `json:"payments"`
}
