package repositories

import (
	"context"
	"database/sql"

	"travelagency/internal/domain/models"
)

type CustomerRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func (r CustomerRepository) WithTx(tx *sql.Tx) CustomerRepository {
	r.Tx = tx
	return r
}

// Upsert inserts the customer or refreshes the existing row with the same email and
// returns its id either way.
func (r CustomerRepository) Upsert(ctx context.Context, c models.Customer) (int64, error) {
	return insertID(ctx, conn(r.DB, r.Tx), `
		INSERT INTO customers (email, full_name, phone, country)
		VALUES (?,?,?,?)
		ON DUPLICATE KEY UPDATE
			id = LAST_INSERT_ID(id),
			full_name = VALUES(full_name),
			phone = IF(VALUES(phone) = '', phone, VALUES(phone)),
			country = IF(VALUES(country) = '', country, VALUES(country))`,
		c.Email, c.FullName, c.Phone, c.Country,
	)
}

func (r CustomerRepository) GetByID(ctx context.Context, id int64) (models.Customer, error) {
	var c models.Customer
	err := conn(r.DB, r.Tx).QueryRowContext(ctx, `
		SELECT id, email, full_name, phone, country, created_at, updated_at
		FROM customers WHERE id = ? LIMIT 1`, id,
	).Scan(&c.ID, &c.Email, &c.FullName, &c.Phone, &c.Country, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
