package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
)

const tourColumns = `id, slug, title, summary, description, destination, category, duration_days,
	price_cents, currency, max_group_size, cover_image_url, featured, published, created_at, updated_at`

var tourSorts = map[string]string{
	"price":    "price_cents ASC, id ASC",
	"-price":   "price_cents DESC, id DESC",
	"newest":   "created_at DESC, id DESC",
	"duration": "duration_days ASC, id ASC",
}

const defaultTourSort = "featured DESC, created_at DESC, id DESC"

type TourRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func (r TourRepository) WithTx(tx *sql.Tx) TourRepository {
	r.Tx = tx
	return r
}

func scanTour(s rowScanner) (models.Tour, error) {
	var t models.Tour
	err := s.Scan(
		&t.ID, &t.Slug, &t.Title, &t.Summary, &t.Description, &t.Destination, &t.Category,
		&t.DurationDays, &t.PriceCents, &t.Currency, &t.MaxGroupSize, &t.CoverImageURL,
		&t.Featured, &t.Published, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

// ValidTourSort reports whether sort is one of the accepted listing orders.
func ValidTourSort(sort string) bool {
	if sort == "" {
		return true
	}
	_, ok := tourSorts[sort]
	return ok
}

func tourWhere(f models.TourFilter) where {
	var w where
	if f.PublishedOnly {
		w.add("published = 1")
	}
	if f.Destination != "" {
		w.add("destination = ?", f.Destination)
	}
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.Featured != nil {
		w.add("featured = ?", *f.Featured)
	}
	if f.MinPrice > 0 {
		w.add("price_cents >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		w.add("price_cents <= ?", f.MaxPrice)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := likeArg(q)
		w.add("(title LIKE ? OR summary LIKE ? OR destination LIKE ?)", like, like, like)
	}
	return w
}

// List returns one page of tours and the total matching count.
func (r TourRepository) List(ctx context.Context, f models.TourFilter, p domain.Pagination) ([]models.Tour, int, error) {
	q := conn(r.DB, r.Tx)
	w := tourWhere(f)

	total, err := count(ctx, q, `SELECT COUNT(*) FROM tours`+w.sql(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count tours: %w", err)
	}

	order, ok := tourSorts[f.Sort]
	if !ok {
		order = defaultTourSort
	}
	args := append(append([]any{}, w.args...), p.PageSize, p.Offset())
	rows, err := q.QueryContext(ctx,
		`SELECT `+tourColumns+` FROM tours`+w.sql()+` ORDER BY `+order+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tours: %w", err)
	}
	defer rows.Close()

	out := []models.Tour{}
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (r TourRepository) GetByID(ctx context.Context, id int64) (models.Tour, error) {
	row := conn(r.DB, r.Tx).QueryRowContext(ctx, `SELECT `+tourColumns+` FROM tours WHERE id = ? LIMIT 1`, id)
	return scanTour(row)
}

func (r TourRepository) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (models.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE slug = ?`
	if publishedOnly {
		query += ` AND published = 1`
	}
	row := conn(r.DB, r.Tx).QueryRowContext(ctx, query+` LIMIT 1`, slug)
	return scanTour(row)
}

func (r TourRepository) Create(ctx context.Context, t models.Tour) (int64, error) {
	return insertID(ctx, conn(r.DB, r.Tx), `
		INSERT INTO tours (slug, title, summary, description, destination, category, duration_days,
			price_cents, currency, max_group_size, cover_image_url, featured, published)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.Slug, t.Title, t.Summary, t.Description, t.Destination, t.Category, t.DurationDays,
		t.PriceCents, t.Currency, t.MaxGroupSize, t.CoverImageURL, t.Featured, t.Published,
	)
}

func (r TourRepository) Update(ctx context.Context, t models.Tour) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `
		UPDATE tours SET slug=?, title=?, summary=?, description=?, destination=?, category=?,
			duration_days=?, price_cents=?, currency=?, max_group_size=?, cover_image_url=?,
			featured=?, published=?
		WHERE id=?`,
		t.Slug, t.Title, t.Summary, t.Description, t.Destination, t.Category, t.DurationDays,
		t.PriceCents, t.Currency, t.MaxGroupSize, t.CoverImageURL, t.Featured, t.Published, t.ID,
	)
}

func (r TourRepository) Delete(ctx context.Context, id int64) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `DELETE FROM tours WHERE id=?`, id)
}
