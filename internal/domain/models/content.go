package models

import "time"

type BlogPost struct {
	ID            int64      `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt"`
	BodyMarkdown  string     `json:"body_markdown,omitempty"`
	BodyHTML      string     `json:"body_html,omitempty"`
	CoverImageURL string     `json:"cover_image_url"`
	Author        string     `json:"author"`
	Published     bool       `json:"published"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type BlogPostInput struct {
	Slug          string `json:"slug"`
	Title         string `json:"title" binding:"required,max=200"`
	Excerpt       string `json:"excerpt" binding:"max=500"`
	BodyMarkdown  string `json:"body_markdown" binding:"required"`
	CoverImageURL string `json:"cover_image_url" binding:"omitempty,url"`
	Author        string `json:"author" binding:"max=120"`
	Published     bool   `json:"published"`
}

type FAQ struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category"`
	SortOrder int       `json:"sort_order"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FAQInput struct {
	Question  string `json:"question" binding:"required,max=500"`
	Answer    string `json:"answer" binding:"required"`
	Category  string `json:"category" binding:"max=80"`
	SortOrder int    `json:"sort_order"`
	Published bool   `json:"published"`
}

// FAQGroup is the public FAQ shape: entries grouped by category.
type FAQGroup struct {
	Category string `json:"category"`
	Items    []FAQ  `json:"items"`
}

type ContentPage struct {
	ID           int64     `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	BodyMarkdown string    `json:"body_markdown,omitempty"`
	BodyHTML     string    `json:"body_html,omitempty"`
	Published    bool      `json:"published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ContentPageInput struct {
	Slug         string `json:"slug"`
	Title        string `json:"title" binding:"required,max=200"`
	BodyMarkdown string `json:"body_markdown" binding:"required"`
	Published    bool   `json:"published"`
}

type TeamMember struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Bio       string    `json:"bio"`
	PhotoURL  string    `json:"photo_url"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TeamMemberInput struct {
	Name      string `json:"name" binding:"required,max=160"`
	Role      string `json:"role" binding:"max=120"`
	Bio       string `json:"bio"`
	PhotoURL  string `json:"photo_url" binding:"omitempty,url"`
	SortOrder int    `json:"sort_order"`
}

type Testimonial struct {
	ID         int64     `json:"id"`
	AuthorName string    `json:"author_name"`
	Location   string    `json:"location"`
	Quote      string    `json:"quote"`
	Rating     int       `json:"rating"`
	TourID     *int64    `json:"tour_id,omitempty"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type TestimonialInput struct {
	AuthorName string `json:"author_name" binding:"required,max=160"`
	Location   string `json:"location" binding:"max=120"`
	Quote      string `json:"quote" binding:"required,max=2000"`
	Rating     int    `json:"rating" binding:"required,gte=1,lte=5"`
	TourID     *int64 `json:"tour_id"`
	Published  bool   `json:"published"`
}
