package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed migrations
var migrations embed.FS

// OpenSQL connects to a mysql or postgres database and verifies it with a ping.
func OpenSQL(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	return db, nil
}

// Migrate creates the account and message tables if they are missing.
// The migrate instance is not closed because that would close db.
func Migrate(db *sqlx.DB) error {
	src, err := iofs.New(migrations, "migrations/"+db.DriverName())
	if err != nil {
		return fmt.Errorf("no migrations for %s: %w", db.DriverName(), err)
	}

	var driver database.Driver
	switch db.DriverName() {
	case "mysql":
		driver, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	case "postgres":
		driver, err = migratepostgres.WithInstance(db.DB, &migratepostgres.Config{})
	default:
		return fmt.Errorf("unsupported migration driver %q", db.DriverName())
	}
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.DriverName(), driver)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// InsertReturningID runs an INSERT written with ? placeholders and returns the
// generated key. Postgres has no LastInsertId so the key is read back with RETURNING.
func InsertReturningID(ctx context.Context, db *sqlx.DB, query, idColumn string, args ...interface{}) (int64, error) {
	if db.DriverName() == "postgres" {
		var id int64
		err := db.QueryRowxContext(ctx, db.Rebind(query+" RETURNING "+idColumn), args...).Scan(&id)
		return id, err
	}

	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
