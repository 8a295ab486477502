package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
)

const bookingSelect = `
	SELECT b.id, b.reference, b.tour_id, t.title, t.slug, b.customer_id,
		c.email, c.full_name, c.phone, c.country,
		b.travel_date, b.travelers, b.total_cents, b.currency, b.status, b.payment_status,
		COALESCE(b.notes, ''), b.locale, b.created_at, b.updated_at
	FROM bookings b
	JOIN tours t ON t.id = b.tour_id
	JOIN customers c ON c.id = b.customer_id`

type BookingRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func (r BookingRepository) WithTx(tx *sql.Tx) BookingRepository {
	r.Tx = tx
	return r
}

func scanBooking(s rowScanner) (models.Booking, error) {
	var b models.Booking
	c := &models.Customer{}
	err := s.Scan(
		&b.ID, &b.Reference, &b.TourID, &b.TourTitle, &b.TourSlug, &b.CustomerID,
		&c.Email, &c.FullName, &c.Phone, &c.Country,
		&b.TravelDate, &b.Travelers, &b.TotalCents, &b.Currency, &b.Status, &b.PaymentStatus,
		&b.Notes, &b.Locale, &b.CreatedAt, &b.UpdatedAt,
	)
	c.ID = b.CustomerID
	b.Customer = c
	return b, err
}

func (r BookingRepository) Create(ctx context.Context, b models.Booking) (int64, error) {
	return insertID(ctx, conn(r.DB, r.Tx), `
		INSERT INTO bookings (reference, tour_id, customer_id, travel_date, travelers, total_cents,
			currency, status, payment_status, notes, locale)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		b.Reference, b.TourID, b.CustomerID, b.TravelDate.Format("2006-01-02"), b.Travelers, b.TotalCents,
		b.Currency, b.Status, b.PaymentStatus, b.Notes, b.Locale,
	)
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	return scanBooking(conn(r.DB, r.Tx).QueryRowContext(ctx, bookingSelect+` WHERE b.id = ? LIMIT 1`, id))
}

func (r BookingRepository) GetByReference(ctx context.Context, ref string) (models.Booking, error) {
	return scanBooking(conn(r.DB, r.Tx).QueryRowContext(ctx, bookingSelect+` WHERE b.reference = ? LIMIT 1`, ref))
}

func (r BookingRepository) List(ctx context.Context, f models.BookingFilter, p domain.Pagination) ([]models.Booking, int, error) {
	q := conn(r.DB, r.Tx)

	var w where
	if f.Status != "" {
		w.add("b.status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		w.add("b.payment_status = ?", f.PaymentStatus)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := likeArg(s)
		w.add("(b.reference LIKE ? OR c.email LIKE ? OR c.full_name LIKE ?)", like, like, like)
	}
	if f.From != nil {
		w.add("b.travel_date >= ?", f.From.Format("2006-01-02"))
	}
	if f.To != nil {
		w.add("b.travel_date <= ?", f.To.Format("2006-01-02"))
	}

	total, err := count(ctx, q, `SELECT COUNT(*) FROM bookings b JOIN customers c ON c.id = b.customer_id`+w.sql(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	args := append(append([]any{}, w.args...), p.PageSize, p.Offset())
	rows, err := q.QueryContext(ctx, bookingSelect+w.sql()+` ORDER BY b.created_at DESC, b.id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r BookingRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `UPDATE bookings SET status=? WHERE id=?`, status, id)
}

func (r BookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, paymentStatus string) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `UPDATE bookings SET payment_status=? WHERE id=?`, paymentStatus, id)
}

// MarkPaid sets payment_status=paid and confirms a still-pending booking.
func (r BookingRepository) MarkPaid(ctx context.Context, id int64) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `
		UPDATE bookings
		SET payment_status = 'paid',
			status = CASE WHEN status = 'pending' THEN 'confirmed' ELSE status END
		WHERE id = ?`, id)
}

// SetPaymentStatusUnlessSettled never touches a paid or refunded booking. It reports whether a row changed.
func (r BookingRepository) SetPaymentStatusUnlessSettled(ctx context.Context, id int64, paymentStatus string) (bool, error) {
	err := execAffected(ctx, conn(r.DB, r.Tx),
		`UPDATE bookings SET payment_status=? WHERE id=? AND payment_status NOT IN ('paid', 'refunded')`, paymentStatus, id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (r BookingRepository) Delete(ctx context.Context, id int64) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `DELETE FROM bookings WHERE id=?`, id)
}
