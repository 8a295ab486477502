package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionBooking(t *testing.T) {
	assert.True(t, CanTransitionBooking(BookingPending, BookingConfirmed))
	assert.True(t, CanTransitionBooking(BookingPending, BookingCancelled))
	assert.True(t, CanTransitionBooking(BookingConfirmed, BookingCompleted))
	assert.False(t, CanTransitionBooking(BookingPending, BookingCompleted))
	assert.False(t, CanTransitionBooking(BookingCancelled, BookingConfirmed))
	assert.False(t, CanTransitionBooking(BookingCompleted, BookingCancelled))
}

func TestCanCheckout(t *testing.T) {
	assert.True(t, CanCheckout(BookingPending, PaymentUnpaid))
	assert.True(t, CanCheckout(BookingPending, PaymentFailed))
	assert.True(t, CanCheckout(BookingPending, PaymentPending))
	assert.False(t, CanCheckout(BookingPending, PaymentPaid))
	assert.False(t, CanCheckout(BookingCancelled, PaymentUnpaid))
}

func TestBookingSummaryOmitsCustomer(t *testing.T) {
	b := Booking{
		Reference:  "BK-0A1B2C3D",
		TourTitle:  "Lofoten Islands",
		TravelDate: time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
		Travelers:  2,
		Customer:   &Customer{Email: "ana@example.com", Phone: "+47 000"},
	}
	s := b.Summary()
	assert.Equal(t, "2026-07-04", s.TravelDate)
	assert.Equal(t, "BK-0A1B2C3D", s.Reference)
}

func TestSettingsVisibility(t *testing.T) {
	assert.True(t, IsPublicSetting("site.phone"))
	assert.False(t, IsPublicSetting("private.smtp_note"))
	assert.True(t, ValidInquiryStatus(InquiryQuoted))
	assert.False(t, ValidInquiryStatus("archived"))
}
