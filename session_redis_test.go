package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	account "github.com/goliatone/go-customer-account"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rc, err := account.NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return mr, rc
}

func TestRedisSessionStore(t *testing.T) {
	ctx := context.Background()
	_, rc := newTestRedis(t)

	store := account.NewRedisSessionStore(rc, account.WithRedisKeyPrefix("test"))
	customerID := uuid.New()

	s, err := store.Create(ctx, customerID)
	require.NoError(t, err)
	s.Set("cart", "42")
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	cart, ok := loaded.Get("cart")
	assert.True(t, ok)
	assert.Equal(t, "42", cart)

	rotated, err := store.Regenerate(ctx, s.ID)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, rotated.ID)
	_, ok = rotated.Get("cart")
	assert.False(t, ok)

	_, err = store.Get(ctx, s.ID)
	assert.True(t, account.IsNoSuchEntity(err))

	other, err := store.Create(ctx, customerID)
	require.NoError(t, err)

	require.NoError(t, store.InvalidateCustomer(ctx, customerID, rotated.ID))
	_, err = store.Get(ctx, other.ID)
	assert.True(t, account.IsNoSuchEntity(err))
	_, err = store.Get(ctx, rotated.ID)
	assert.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, rotated.ID))
	require.NoError(t, store.Destroy(ctx, rotated.ID))

	members, err := rc.SMembers(ctx, "test:customer:"+customerID.String()).Result()
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestRedisSessionStoreSaveMissing(t *testing.T) {
	ctx := context.Background()
	_, rc := newTestRedis(t)

	store := account.NewRedisSessionStore(rc)
	err := store.Save(ctx, &account.Session{ID: "missing", CustomerID: uuid.New()})
	assert.True(t, account.IsNoSuchEntity(err))
}

func TestRedisSessionStoreExpiredSessions(t *testing.T) {
	ctx := context.Background()
	mr, rc := newTestRedis(t)

	store := account.NewRedisSessionStore(rc,
		account.WithRedisKeyPrefix("test"),
		account.WithRedisSessionTTL(time.Minute),
	)
	customerID := uuid.New()
	index := "test:customer:" + customerID.String()

	kept, err := store.Create(ctx, customerID)
	require.NoError(t, err)
	dropped, err := store.Create(ctx, customerID)
	require.NoError(t, err)

	ttl, err := rc.TTL(ctx, index).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	mr.FastForward(30 * time.Second)
	require.NoError(t, store.Save(ctx, kept))

	mr.FastForward(45 * time.Second)

	_, err = store.Get(ctx, dropped.ID)
	assert.True(t, account.IsNoSuchEntity(err))
	require.NoError(t, store.Destroy(ctx, dropped.ID))

	members, err := rc.SMembers(ctx, index).Result()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{kept.ID, dropped.ID}, members)

	require.NoError(t, store.InvalidateCustomer(ctx, customerID, kept.ID))

	members, err = rc.SMembers(ctx, index).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{kept.ID}, members)

	_, err = store.Get(ctx, kept.ID)
	assert.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	require.NoError(t, store.InvalidateCustomer(ctx, customerID, kept.ID))

	members, err = rc.SMembers(ctx, index).Result()
	require.NoError(t, err)
	assert.Empty(t, members)
}
