package repository

import (
	"context"
	"testing"

	account "github.com/goliatone/go-customer-account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAppliesEmbeddedMigrations(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, DriverSQLite, "file:migrate?mode=memory&cache=shared")
	require.NoError(t, err)
	defer db.Close()

	group, err := Migrate(ctx, db)
	require.NoError(t, err)
	assert.False(t, group.IsZero())
	assert.Len(t, group.Migrations, 2)

	again, err := Migrate(ctx, db)
	require.NoError(t, err)
	assert.True(t, again.IsZero(), "second run has nothing to apply")

	repo := account.NewRepositoryManager(db)
	created, err := repo.Customers().Register(ctx, &account.Customer{Email: "migrated@example.com", WebsiteID: 1})
	require.NoError(t, err)

	found, err := repo.Customers().FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "migrated@example.com", found.Email)
}
