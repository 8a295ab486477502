package repositories

import (
	"context"
	"database/sql"

	"travelagency/internal/domain/models"
)

const pageColumns = `id, slug, title, body_markdown, published, created_at, updated_at`

type PageRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func scanPage(s rowScanner) (models.ContentPage, error) {
	var p models.ContentPage
	err := s.Scan(&p.ID, &p.Slug, &p.Title, &p.BodyMarkdown, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r PageRepository) List(ctx context.Context) ([]models.ContentPage, error) {
	rows, err := conn(r.DB, r.Tx).QueryContext(ctx, `SELECT `+pageColumns+` FROM content_pages ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ContentPage{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r PageRepository) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (models.ContentPage, error) {
	query := `SELECT ` + pageColumns + ` FROM content_pages WHERE slug=?`
	if publishedOnly {
		query += ` AND published = 1`
	}
	return scanPage(conn(r.DB, r.Tx).QueryRowContext(ctx, query+` LIMIT 1`, slug))
}

func (r PageRepository) GetByID(ctx context.Context, id int64) (models.ContentPage, error) {
	return scanPage(conn(r.DB, r.Tx).QueryRowContext(ctx, `SELECT `+pageColumns+` FROM content_pages WHERE id=? LIMIT 1`, id))
}

func (r PageRepository) Create(ctx context.Context, p models.ContentPage) (int64, error) {
	return insertID(ctx, conn(r.DB, r.Tx),
		`INSERT INTO content_pages (slug, title, body_markdown, published) VALUES (?,?,?,?)`,
		p.Slug, p.Title, p.BodyMarkdown, p.Published)
}

func (r PageRepository) Update(ctx context.Context, p models.ContentPage) error {
	return execAffected(ctx, conn(r.DB, r.Tx),
		`UPDATE content_pages SET slug=?, title=?, body_markdown=?, published=? WHERE id=?`,
		p.Slug, p.Title, p.BodyMarkdown, p.Published, p.ID)
}

func (r PageRepository) Delete(ctx context.Context, id int64) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `DELETE FROM content_pages WHERE id=?`, id)
}
