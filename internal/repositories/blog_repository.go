package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
)

const blogColumns = `id, slug, title, excerpt, body_markdown, cover_image_url, author, published, published_at,
	created_at, updated_at`

type BlogRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func scanBlogPost(s rowScanner) (models.BlogPost, error) {
	var b models.BlogPost
	var pub sql.NullTime
	err := s.Scan(&b.ID, &b.Slug, &b.Title, &b.Excerpt, &b.BodyMarkdown, &b.CoverImageURL, &b.Author,
		&b.Published, &pub, &b.CreatedAt, &b.UpdatedAt)
	if pub.Valid {
		t := pub.Time
		b.PublishedAt = &t
	}
	return b, err
}

func (r BlogRepository) List(ctx context.Context, publishedOnly bool, p domain.Pagination) ([]models.BlogPost, int, error) {
	q := conn(r.DB, r.Tx)
	filter := ""
	if publishedOnly {
		filter = " WHERE published = 1"
	}

	total, err := count(ctx, q, `SELECT COUNT(*) FROM blog_posts`+filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count blog posts: %w", err)
	}

	rows, err := q.QueryContext(ctx, `SELECT `+blogColumns+` FROM blog_posts`+filter+
		` ORDER BY COALESCE(published_at, created_at) DESC, id DESC LIMIT ? OFFSET ?`, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list blog posts: %w", err)
	}
	defer rows.Close()

	out := []models.BlogPost{}
	for rows.Next() {
		b, err := scanBlogPost(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r BlogRepository) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (models.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts WHERE slug=?`
	if publishedOnly {
		query += ` AND published = 1`
	}
	return scanBlogPost(conn(r.DB, r.Tx).QueryRowContext(ctx, query+` LIMIT 1`, slug))
}

func (r BlogRepository) GetByID(ctx context.Context, id int64) (models.BlogPost, error) {
	return scanBlogPost(conn(r.DB, r.Tx).QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blog_posts WHERE id=? LIMIT 1`, id))
}

// Create stamps published_at the first time a post goes out.
func (r BlogRepository) Create(ctx context.Context, b models.BlogPost) (int64, error) {
	return insertID(ctx, conn(r.DB, r.Tx), `
		INSERT INTO blog_posts (slug, title, excerpt, body_markdown, cover_image_url, author, published, published_at)
		VALUES (?,?,?,?,?,?,?, IF(?, UTC_TIMESTAMP(), NULL))`,
		b.Slug, b.Title, b.Excerpt, b.BodyMarkdown, b.CoverImageURL, b.Author, b.Published, b.Published)
}

func (r BlogRepository) Update(ctx context.Context, b models.BlogPost) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `
		UPDATE blog_posts
		SET slug=?, title=?, excerpt=?, body_markdown=?, cover_image_url=?, author=?, published=?,
			published_at = IF(? AND published_at IS NULL, UTC_TIMESTAMP(), published_at)
		WHERE id=?`,
		b.Slug, b.Title, b.Excerpt, b.BodyMarkdown, b.CoverImageURL, b.Author, b.Published, b.Published, b.ID)
}

func (r BlogRepository) Delete(ctx context.Context, id int64) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `DELETE FROM blog_posts WHERE id=?`, id)
}
