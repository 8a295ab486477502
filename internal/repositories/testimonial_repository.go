package repositories

import (
	"context"
	"database/sql"

	intdb "travelagency/internal/db"
	"travelagency/internal/domain/models"
)

const testimonialColumns = `id, author_name, location, quote, rating, tour_id, published, created_at, updated_at`

type TestimonialRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func scanTestimonial(s rowScanner) (models.Testimonial, error) {
	var t models.Testimonial
	var tourID sql.NullInt64
	err := s.Scan(&t.ID, &t.AuthorName, &t.Location, &t.Quote, &t.Rating, &tourID, &t.Published, &t.CreatedAt, &t.UpdatedAt)
	t.TourID = intdb.Int64Ptr(tourID)
	return t, err
}

// List filters by tour when tourID > 0.
func (r TestimonialRepository) List(ctx context.Context, publishedOnly bool, tourID int64) ([]models.Testimonial, error) {
	var w where
	if publishedOnly {
		w.add("published = 1")
	}
	if tourID > 0 {
		w.add("tour_id = ?", tourID)
	}
	rows, err := conn(r.DB, r.Tx).QueryContext(ctx,
		`SELECT `+testimonialColumns+` FROM testimonials`+w.sql()+` ORDER BY created_at DESC, id DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Testimonial{}
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r TestimonialRepository) GetByID(ctx context.Context, id int64) (models.Testimonial, error) {
	return scanTestimonial(conn(r.DB, r.Tx).QueryRowContext(ctx, `SELECT `+testimonialColumns+` FROM testimonials WHERE id=? LIMIT 1`, id))
}

func (r TestimonialRepository) Create(ctx context.Context, t models.Testimonial) (int64, error) {
	return insertID(ctx, conn(r.DB, r.Tx),
		`INSERT INTO testimonials (author_name, location, quote, rating, tour_id, published) VALUES (?,?,?,?,?,?)`,
		t.AuthorName, t.Location, t.Quote, t.Rating, intdb.NullInt64(t.TourID), t.Published)
}

func (r TestimonialRepository) Update(ctx context.Context, t models.Testimonial) error {
	return execAffected(ctx, conn(r.DB, r.Tx),
		`UPDATE testimonials SET author_name=?, location=?, quote=?, rating=?, tour_id=?, published=? WHERE id=?`,
		t.AuthorName, t.Location, t.Quote, t.Rating, intdb.NullInt64(t.TourID), t.Published, t.ID)
}

func (r TestimonialRepository) Delete(ctx context.Context, id int64) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `DELETE FROM testimonials WHERE id=?`, id)
}
