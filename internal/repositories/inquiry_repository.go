package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intdb "travelagency/internal/db"
	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
)

const inquiryColumns = `id, name, email, phone, tour_id, subject, message, status, quoted_cents, currency,
	locale, created_at, updated_at`

type InquiryFilter struct {
	Status string
	Query  string
}

type InquiryRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func (r InquiryRepository) WithTx(tx *sql.Tx) InquiryRepository {
	r.Tx = tx
	return r
}

func scanInquiry(s rowScanner) (models.Inquiry, error) {
	var in models.Inquiry
	var tourID, quoted sql.NullInt64
	err := s.Scan(&in.ID, &in.Name, &in.Email, &in.Phone, &tourID, &in.Subject, &in.Message, &in.Status,
		&quoted, &in.Currency, &in.Locale, &in.CreatedAt, &in.UpdatedAt)
	in.TourID = intdb.Int64Ptr(tourID)
	in.QuotedCents = intdb.Int64Ptr(quoted)
	return in, err
}

func (r InquiryRepository) Create(ctx context.Context, in models.Inquiry) (int64, error) {
	return insertID(ctx, conn(r.DB, r.Tx), `
		INSERT INTO inquiries (name, email, phone, tour_id, subject, message, status, locale)
		VALUES (?,?,?,?,?,?,?,?)`,
		in.Name, in.Email, in.Phone, intdb.NullInt64(in.TourID), in.Subject, in.Message, in.Status, in.Locale,
	)
}

func (r InquiryRepository) GetByID(ctx context.Context, id int64) (models.Inquiry, error) {
	return scanInquiry(conn(r.DB, r.Tx).QueryRowContext(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id=? LIMIT 1`, id))
}

func (r InquiryRepository) List(ctx context.Context, f InquiryFilter, p domain.Pagination) ([]models.Inquiry, int, error) {
	q := conn(r.DB, r.Tx)

	var w where
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := likeArg(s)
		w.add("(name LIKE ? OR email LIKE ? OR subject LIKE ?)", like, like, like)
	}

	total, err := count(ctx, q, `SELECT COUNT(*) FROM inquiries`+w.sql(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count inquiries: %w", err)
	}

	args := append(append([]any{}, w.args...), p.PageSize, p.Offset())
	rows, err := q.QueryContext(ctx, `SELECT `+inquiryColumns+` FROM inquiries`+w.sql()+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	out := []models.Inquiry{}
	for rows.Next() {
		in, err := scanInquiry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, in)
	}
	return out, total, rows.Err()
}

func (r InquiryRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `UPDATE inquiries SET status=? WHERE id=?`, status, id)
}

func (r InquiryRepository) SetQuote(ctx context.Context, id, cents int64, currency string) error {
	return execAffected(ctx, conn(r.DB, r.Tx),
		`UPDATE inquiries SET status='quoted', quoted_cents=?, currency=? WHERE id=?`, cents, currency, id)
}

// MarkPaid only moves quoted inquiries; it reports whether a row changed.
func (r InquiryRepository) MarkPaid(ctx context.Context, id int64) (bool, error) {
	err := execAffected(ctx, conn(r.DB, r.Tx), `UPDATE inquiries SET status='paid' WHERE id=? AND status='quoted'`, id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}
