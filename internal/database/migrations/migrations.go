package migrations

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/uptrace/bun"
)

// Options configures schema migration on startup.
type Options struct {
	// Dir holds the .sql migration files.
	Dir string
	// Auto runs pending migrations during service boot.
	Auto bool
}

func DefaultOptions() Options {
	return Options{
		Dir:  "./migrations",
		Auto: true,
	}
}

// Runner applies versioned SQL migrations against the bun connection's
// underlying database.
type Runner struct {
	bunDB    *bun.DB
	options  Options
	migrator *migrate.Migrate
}

func NewRunner(bunDB *bun.DB, opts Options) *Runner {
	return &Runner{bunDB: bunDB, options: opts}
}

func (r *Runner) init() error {
	if r.migrator != nil {
		return nil
	}

	driver, err := postgres.WithInstance(r.bunDB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("postgres migration driver: %w", err)
	}

	if _, err := os.Stat(r.options.Dir); os.IsNotExist(err) {
		return fmt.Errorf("migrations directory missing: %s", r.options.Dir)
	}

	migrator, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", r.options.Dir),
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	r.migrator = migrator
	return nil
}

// Up applies all pending migrations. A dirty version from a crashed run
// is forced clean first so the service can come back without operator
// surgery.
func (r *Runner) Up() error {
	if err := r.init(); err != nil {
		return err
	}

	version, dirty, err := r.migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		if err := r.migrator.Force(int(version)); err != nil {
			return fmt.Errorf("clear dirty migration %d: %w", version, err)
		}
	}

	if err := r.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Down rolls everything back. Used by the migrate CLI only.
func (r *Runner) Down() error {
	if err := r.init(); err != nil {
		return err
	}
	if err := r.migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("roll back migrations: %w", err)
	}
	return nil
}

// Version reports the current schema version, 0 when none applied.
func (r *Runner) Version() (uint, error) {
	if err := r.init(); err != nil {
		return 0, err
	}
	version, _, err := r.migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	return version, nil
}

func (r *Runner) Close() error {
	if r.migrator == nil {
		return nil
	}
	sourceErr, dbErr := r.migrator.Close()
	if sourceErr != nil {
		return fmt.Errorf("close migrator source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migrator database: %w", dbErr)
	}
	return nil
}
