package repositories

import (
	"context"
	"database/sql"

	"travelagency/internal/domain/models"
)

const faqColumns = `id, question, answer, category, sort_order, published, created_at, updated_at`

type FAQRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func scanFAQ(s rowScanner) (models.FAQ, error) {
	var f models.FAQ
	err := s.Scan(&f.ID, &f.Question, &f.Answer, &f.Category, &f.SortOrder, &f.Published, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (r FAQRepository) List(ctx context.Context, publishedOnly bool) ([]models.FAQ, error) {
	query := `SELECT ` + faqColumns + ` FROM faqs`
	if publishedOnly {
		query += ` WHERE published = 1`
	}
	rows, err := conn(r.DB, r.Tx).QueryContext(ctx, query+` ORDER BY category, sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.FAQ{}
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r FAQRepository) GetByID(ctx context.Context, id int64) (models.FAQ, error) {
	return scanFAQ(conn(r.DB, r.Tx).QueryRowContext(ctx, `SELECT `+faqColumns+` FROM faqs WHERE id=? LIMIT 1`, id))
}

func (r FAQRepository) Create(ctx context.Context, f models.FAQ) (int64, error) {
	return insertID(ctx, conn(r.DB, r.Tx),
		`INSERT INTO faqs (question, answer, category, sort_order, published) VALUES (?,?,?,?,?)`,
		f.Question, f.Answer, f.Category, f.SortOrder, f.Published)
}

func (r FAQRepository) Update(ctx context.Context, f models.FAQ) error {
	return execAffected(ctx, conn(r.DB, r.Tx),
		`UPDATE faqs SET question=?, answer=?, category=?, sort_order=?, published=? WHERE id=?`,
		f.Question, f.Answer, f.Category, f.SortOrder, f.Published, f.ID)
}

func (r FAQRepository) Delete(ctx context.Context, id int64) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `DELETE FROM faqs WHERE id=?`, id)
}
