package repositories

import (
	"context"
	"database/sql"

	"travelagency/internal/domain/models"
)

const adminUserColumns = `id, email, name, password_hash, role, active, last_login_at, created_at, updated_at`

type AdminUserRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func scanAdminUser(s rowScanner) (models.AdminUser, error) {
	var u models.AdminUser
	var last sql.NullTime
	err := s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Active, &last, &u.CreatedAt, &u.UpdatedAt)
	if last.Valid {
		t := last.Time
		u.LastLoginAt = &t
	}
	return u, err
}

func (r AdminUserRepository) GetByEmail(ctx context.Context, email string) (models.AdminUser, error) {
	return scanAdminUser(conn(r.DB, r.Tx).QueryRowContext(ctx, `SELECT `+adminUserColumns+` FROM admin_users WHERE email=? LIMIT 1`, email))
}

func (r AdminUserRepository) GetByID(ctx context.Context, id int64) (models.AdminUser, error) {
	return scanAdminUser(conn(r.DB, r.Tx).QueryRowContext(ctx, `SELECT `+adminUserColumns+` FROM admin_users WHERE id=? LIMIT 1`, id))
}

func (r AdminUserRepository) List(ctx context.Context) ([]models.AdminUser, error) {
	rows, err := conn(r.DB, r.Tx).QueryContext(ctx, `SELECT `+adminUserColumns+` FROM admin_users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AdminUser{}
	for rows.Next() {
		u, err := scanAdminUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r AdminUserRepository) Create(ctx context.Context, u models.AdminUser) (int64, error) {
	return insertID(ctx, conn(r.DB, r.Tx),
		`INSERT INTO admin_users (email, name, password_hash, role, active) VALUES (?,?,?,?,?)`,
		u.Email, u.Name, u.PasswordHash, u.Role, u.Active)
}

// Update leaves password_hash untouched when PasswordHash is empty.
func (r AdminUserRepository) Update(ctx context.Context, u models.AdminUser) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `
		UPDATE admin_users
		SET email=?, name=?, role=?, active=?, password_hash = IF(? = '', password_hash, ?)
		WHERE id=?`,
		u.Email, u.Name, u.Role, u.Active, u.PasswordHash, u.PasswordHash, u.ID)
}

func (r AdminUserRepository) TouchLogin(ctx context.Context, id int64) error {
	_, err := conn(r.DB, r.Tx).ExecContext(ctx, `UPDATE admin_users SET last_login_at = UTC_TIMESTAMP() WHERE id=?`, id)
	return err
}

func (r AdminUserRepository) Delete(ctx context.Context, id int64) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `DELETE FROM admin_users WHERE id=?`, id)
}
