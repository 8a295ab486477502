package repositories

import (
	"context"
	"database/sql"
	"fmt"

	intdb "travelagency/internal/db"
	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
)

const paymentColumns = `id, booking_id, inquiry_id, provider, provider_session_id, provider_payment_intent,
	amount_cents, currency, status, created_at, updated_at`

type PaymentRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func (r PaymentRepository) WithTx(tx *sql.Tx) PaymentRepository {
	r.Tx = tx
	return r
}

func scanPayment(s rowScanner) (models.Payment, error) {
	var p models.Payment
	var bookingID, inquiryID sql.NullInt64
	err := s.Scan(&p.ID, &bookingID, &inquiryID, &p.Provider, &p.ProviderSessionID, &p.ProviderPaymentIntent,
		&p.AmountCents, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	p.BookingID = intdb.Int64Ptr(bookingID)
	p.InquiryID = intdb.Int64Ptr(inquiryID)
	return p, err
}

func (r PaymentRepository) Create(ctx context.Context, p models.Payment) (int64, error) {
	return insertID(ctx, conn(r.DB, r.Tx), `
		INSERT INTO payments (booking_id, inquiry_id, provider, provider_session_id, amount_cents, currency, status)
		VALUES (?,?,?,?,?,?,?)`,
		intdb.NullInt64(p.BookingID), intdb.NullInt64(p.InquiryID), p.Provider, p.ProviderSessionID,
		p.AmountCents, p.Currency, p.Status,
	)
}

func (r PaymentRepository) GetByID(ctx context.Context, id int64) (models.Payment, error) {
	return scanPayment(conn(r.DB, r.Tx).QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=? LIMIT 1`, id))
}

// FindBySession locks the row when called inside a transaction.
func (r PaymentRepository) FindBySession(ctx context.Context, sessionID string) (models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_session_id=? LIMIT 1`
	if r.Tx != nil {
		query += ` FOR UPDATE`
	}
	return scanPayment(conn(r.DB, r.Tx).QueryRowContext(ctx, query, sessionID))
}

func (r PaymentRepository) FindByPaymentIntent(ctx context.Context, intent string) (models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_payment_intent=? ORDER BY id DESC LIMIT 1`
	if r.Tx != nil {
		query += ` FOR UPDATE`
	}
	return scanPayment(conn(r.DB, r.Tx).QueryRowContext(ctx, query, intent))
}

// LatestPendingFor finds the newest pending payment of a booking (or, with bookingID 0, an inquiry).
func (r PaymentRepository) LatestPendingFor(ctx context.Context, bookingID, inquiryID int64) (models.Payment, error) {
	col, id := "booking_id", bookingID
	if bookingID <= 0 {
		col, id = "inquiry_id", inquiryID
	}
	if id <= 0 {
		return models.Payment{}, sql.ErrNoRows
	}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE ` + col + `=? AND status='pending' ORDER BY id DESC LIMIT 1`
	if r.Tx != nil {
		query += ` FOR UPDATE`
	}
	return scanPayment(conn(r.DB, r.Tx).QueryRowContext(ctx, query, id))
}

// UpdateStatus keeps the stored payment intent when intent is empty.
func (r PaymentRepository) UpdateStatus(ctx context.Context, id int64, status, intent string) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `
		UPDATE payments
		SET status = ?, provider_payment_intent = IF(? = '', provider_payment_intent, ?)
		WHERE id = ?`, status, intent, intent, id)
}

func (r PaymentRepository) List(ctx context.Context, f models.PaymentFilter, p domain.Pagination) ([]models.Payment, int, error) {
	q := conn(r.DB, r.Tx)

	var w where
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.BookingID > 0 {
		w.add("booking_id = ?", f.BookingID)
	}
	if f.InquiryID > 0 {
		w.add("inquiry_id = ?", f.InquiryID)
	}

	total, err := count(ctx, q, `SELECT COUNT(*) FROM payments`+w.sql(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	args := append(append([]any{}, w.args...), p.PageSize, p.Offset())
	rows, err := q.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments`+w.sql()+` ORDER BY id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	out := []models.Payment{}
	for rows.Next() {
		pm, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, pm)
	}
	return out, total, rows.Err()
}

func (r PaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]models.Payment, error) {
	rows, err := conn(r.DB, r.Tx).QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE booking_id=? ORDER BY id DESC`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Payment{}
	for rows.Next() {
		pm, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pm)
	}
	return out, rows.Err()
}
