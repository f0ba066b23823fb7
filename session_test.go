package account_test

import (
	"context"
	"testing"

	account "github.com/goliatone/go-customer-account"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := account.NewMemorySessionStore()
	customerID := uuid.New()

	s, err := store.Create(ctx, customerID)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)

	s.Set("cart", "42")
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	v, ok := got.Get("cart")
	require.True(t, ok)
	assert.Equal(t, "42", v)

	rotated, err := store.Regenerate(ctx, s.ID)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, rotated.ID)
	assert.Equal(t, customerID, rotated.CustomerID)

	_, err = store.Get(ctx, s.ID)
	assert.True(t, account.IsNoSuchEntity(err))

	_, err = store.Regenerate(ctx, s.ID)
	assert.True(t, account.IsNoSuchEntity(err))

	other, err := store.Create(ctx, customerID)
	require.NoError(t, err)
	foreign, err := store.Create(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, store.InvalidateCustomer(ctx, customerID, rotated.ID))
	_, err = store.Get(ctx, other.ID)
	assert.True(t, account.IsNoSuchEntity(err))
	_, err = store.Get(ctx, rotated.ID)
	assert.NoError(t, err)
	_, err = store.Get(ctx, foreign.ID)
	assert.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, rotated.ID))
	assert.Equal(t, 1, store.Len())

	err = store.Save(ctx, &account.Session{ID: "missing"})
	assert.True(t, account.IsNoSuchEntity(err))
}

func TestSessionContext(t *testing.T) {
	_, ok := account.SessionFromContext(context.Background())
	assert.False(t, ok)

	s := &account.Session{ID: "abc"}
	got, ok := account.SessionFromContext(account.WithSession(context.Background(), s))
	require.True(t, ok)
	assert.Equal(t, "abc", got.ID)
}
