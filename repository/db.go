// Package repository opens the database backing the account repositories
// and creates its schema.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	account "github.com/goliatone/go-customer-account"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the database and pings it. SQLite connections are
// limited to one so in-memory databases survive across queries.
func Open(ctx context.Context, driver, dsn string) (*bun.DB, error) {
	var (
		sqldb *sql.DB
		db    *bun.DB
		err   error
	)

	switch strings.ToLower(driver) {
	case DriverSQLite, "sqlite3", "":
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		sqldb, err = sql.Open(sqliteshim.ShimName, dsn)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open sqlite database")
		}
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres, "pgx":
		sqldb, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open postgres database")
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, goerrors.New(fmt.Sprintf("unsupported database driver %q", driver), goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"driver": driver})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to connect to database")
	}

	return db, nil
}

// CreateSchema creates the customer tables and their indexes when missing
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*account.Customer)(nil),
		(*account.Address)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create table")
		}
	}

	indexes := []*bun.CreateIndexQuery{
		db.NewCreateIndex().
			Model((*account.Customer)(nil)).
			Unique().
			Index("customers_email_website_uidx").
			Column("email", "website_id").
			IfNotExists(),
		db.NewCreateIndex().
			Model((*account.Customer)(nil)).
			Index("customers_rp_token_idx").
			Column("rp_token").
			IfNotExists(),
		db.NewCreateIndex().
			Model((*account.Address)(nil)).
			Index("customer_addresses_customer_idx").
			Column("customer_id").
			IfNotExists(),
	}

	for _, idx := range indexes {
		if _, err := idx.Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create index")
		}
	}

	return nil
}

// Bootstrap opens the database, creates the schema and returns the
// repository manager
func Bootstrap(ctx context.Context, driver, dsn string) (*bun.DB, account.RepositoryManager, error) {
	db, err := Open(ctx, driver, dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := CreateSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	repo := account.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return db, repo, nil
}
