package repository

import (
	"context"
	"io/fs"

	account "github.com/goliatone/go-customer-account"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"
)

// MigrationsFS returns the embedded migrations for the database dialect
func MigrationsFS(db *bun.DB) (fs.FS, error) {
	dir := "data/sql/migrations/sqlite"
	switch db.Dialect().Name() {
	case dialect.SQLite:
	case dialect.PG:
		dir = "data/sql/migrations/postgres"
	default:
		return nil, goerrors.New("no migrations for dialect "+db.Dialect().Name().String(), goerrors.CategoryBadInput)
	}

	sub, err := fs.Sub(account.GetMigrationsFS(), dir)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open migrations")
	}
	return sub, nil
}

// Migrate applies the pending versioned migrations and returns the
// applied group, which is zero when the schema was up to date
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	fsys, err := MigrationsFS(db)
	if err != nil {
		return nil, err
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(fsys); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to discover migrations")
	}

	migrator := migrate.NewMigrator(db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to init migrations tables")
	}

	if err := migrator.Lock(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "failed to lock migrations")
	}
	defer migrator.Unlock(ctx)

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to apply migrations")
	}

	return group, nil
}
