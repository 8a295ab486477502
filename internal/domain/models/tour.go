package models

import "time"

// Tour is a bookable, publicly listed trip.
type Tour struct {
	ID              int64     `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Summary         string    `json:"summary"`
	Description     string    `json:"description"`
	DescriptionHTML string    `json:"description_html,omitempty"`
	Destination     string    `json:"destination"`
	Category        string    `json:"category"`
	DurationDays    int       `json:"duration_days"`
	PriceCents      int64     `json:"price_cents"`
	Currency        string    `json:"currency"`
	MaxGroupSize    int       `json:"max_group_size"`
	CoverImageURL   string    `json:"cover_image_url"`
	Featured        bool      `json:"featured"`
	Published       bool      `json:"published"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TourFilter drives the public listing and admin search.
type TourFilter struct {
	Destination   string
	Category      string
	Featured      *bool
	MinPrice      int64
	MaxPrice      int64
	Query         string
	Sort          string
	PublishedOnly bool
}

// TourInput is the admin create/update payload.
type TourInput struct {
	Slug          string `json:"slug"`
	Title         string `json:"title" binding:"required,max=200"`
	Summary       string `json:"summary" binding:"max=500"`
	Description   string `json:"description"`
	Destination   string `json:"destination" binding:"required,max=120"`
	Category      string `json:"category" binding:"max=60"`
	DurationDays  int    `json:"duration_days" binding:"required,gte=1,lte=365"`
	PriceCents    int64  `json:"price_cents" binding:"required,gt=0"`
	Currency      string `json:"currency" binding:"omitempty,len=3"`
	MaxGroupSize  int    `json:"max_group_size" binding:"required,gte=1,lte=500"`
	CoverImageURL string `json:"cover_image_url" binding:"omitempty,url"`
	Featured      bool   `json:"featured"`
	Published     bool   `json:"published"`
}
