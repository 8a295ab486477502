package repositories

import (
	"context"
	"database/sql"
)

// StripeEventRepository is the processed-event log that makes webhook delivery idempotent.
type StripeEventRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func (r StripeEventRepository) WithTx(tx *sql.Tx) StripeEventRepository {
	r.Tx = tx
	return r
}

// Record returns false when the event id was already stored.
func (r StripeEventRepository) Record(ctx context.Context, id, eventType string) (bool, error) {
	res, err := conn(r.DB, r.Tx).ExecContext(ctx,
		`INSERT IGNORE INTO stripe_events (id, type) VALUES (?, ?)`, id, eventType)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
