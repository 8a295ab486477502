package repositories

import (
	"context"
	"database/sql"
	"strings"

	intconfig "travelagency/internal/config"
	intdb "travelagency/internal/db"
)

// conn picks the transaction when one is bound, then the explicit pool, then the shared pool.
func conn(db *sql.DB, tx *sql.Tx) intdb.DBTX {
	if tx != nil {
		return tx
	}
	if db != nil {
		return db
	}
	return intconfig.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

// where accumulates AND-ed conditions and their args.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func likeArg(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(q)) + "%"
}

func count(ctx context.Context, q intdb.DBTX, query string, args ...any) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// execAffected runs an UPDATE/DELETE and maps "nothing changed" to sql.ErrNoRows.
func execAffected(ctx context.Context, q intdb.DBTX, query string, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func insertID(ctx context.Context, q intdb.DBTX, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
