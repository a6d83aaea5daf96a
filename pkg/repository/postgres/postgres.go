package postgres

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// New opens a postgres connection and applies pending migrations.
func New(dsn string) (interfaces.CaseRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open postgres connection")
	}
	if err := db.Ping(); err != nil {
		return nil, goerr.Wrap(err, "failed to ping postgres")
	}

	if err := applyMigrations(db); err != nil {
		return nil, err
	}

	return &caseRepository{db: db}, nil
}

func applyMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return goerr.Wrap(err, "failed to load migration files")
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return goerr.Wrap(err, "failed to create migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return goerr.Wrap(err, "failed to create migrator")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return goerr.Wrap(err, "failed to apply migrations")
	}

	return nil
}
