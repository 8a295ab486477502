package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsTable = "schema_migrations"

// Migrator wraps golang-migrate over the embedded SQL files.
type Migrator struct {
	m *migrate.Migrate
}

// OpenMigrator opens a dedicated connection for dsn, which must allow
// multiStatements. Close releases it; the shared pool is never handed to
// golang-migrate because its driver closes the *sql.DB it wraps.
func OpenMigrator(dsn string) (*Migrator, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}
	mg, err := NewMigrator(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return mg, nil
}

// NewMigrator takes ownership of conn; Close closes it.
func NewMigrator(conn *sql.DB) (*Migrator, error) {
	sub, err := fs.Sub(Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("embedded migrations: %w", err)
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("iofs source: %w", err)
	}
	driver, err := mysql.WithInstance(conn, &mysql.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return nil, fmt.Errorf("mysql driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
	if err != nil {
		return nil, fmt.Errorf("migrate instance: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Up applies all pending migrations. No pending migrations is not an error.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Down rolls back the given number of migrations (at least one).
func (mg *Migrator) Down(steps int) error {
	if steps < 1 {
		steps = 1
	}
	return mg.m.Steps(-steps)
}

// Version returns the applied version; 0 when nothing has been applied.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close releases the source and the database connection.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// MigrationFiles lists the embedded up migrations in order.
func MigrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(Migrations, "migrations")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if len(name) > 7 && name[len(name)-7:] == ".up.sql" {
			files = append(files, name)
		}
	}
	return files, nil
}
