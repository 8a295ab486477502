package repositories

import (
	"context"
	"database/sql"

	"travelagency/internal/domain/models"
)

const teamColumns = `id, name, role, bio, photo_url, sort_order, created_at, updated_at`

type TeamRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func scanTeamMember(s rowScanner) (models.TeamMember, error) {
	var m models.TeamMember
	err := s.Scan(&m.ID, &m.Name, &m.Role, &m.Bio, &m.PhotoURL, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r TeamRepository) List(ctx context.Context) ([]models.TeamMember, error) {
	rows, err := conn(r.DB, r.Tx).QueryContext(ctx, `SELECT `+teamColumns+` FROM team_members ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TeamMember{}
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r TeamRepository) GetByID(ctx context.Context, id int64) (models.TeamMember, error) {
	return scanTeamMember(conn(r.DB, r.Tx).QueryRowContext(ctx, `SELECT `+teamColumns+` FROM team_members WHERE id=? LIMIT 1`, id))
}

func (r TeamRepository) Create(ctx context.Context, m models.TeamMember) (int64, error) {
	return insertID(ctx, conn(r.DB, r.Tx),
		`INSERT INTO team_members (name, role, bio, photo_url, sort_order) VALUES (?,?,?,?,?)`,
		m.Name, m.Role, m.Bio, m.PhotoURL, m.SortOrder)
}

func (r TeamRepository) Update(ctx context.Context, m models.TeamMember) error {
	return execAffected(ctx, conn(r.DB, r.Tx),
		`UPDATE team_members SET name=?, role=?, bio=?, photo_url=?, sort_order=? WHERE id=?`,
		m.Name, m.Role, m.Bio, m.PhotoURL, m.SortOrder, m.ID)
}

func (r TeamRepository) Delete(ctx context.Context, id int64) error {
	return execAffected(ctx, conn(r.DB, r.Tx), `DELETE FROM team_members WHERE id=?`, id)
}
