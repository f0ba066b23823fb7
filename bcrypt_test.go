package account_test

import (
	"testing"

	account "github.com/goliatone/go-customer-account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := account.NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.HashPassword("secret-Password1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-Password1", hash)

	assert.NoError(t, hasher.ComparePasswordAndHash("secret-Password1", hash))
	assert.ErrorIs(t, hasher.ComparePasswordAndHash("other", hash), account.ErrMismatchedHashAndPassword)
	assert.ErrorIs(t, hasher.ComparePasswordAndHash("other", ""), account.ErrMismatchedHashAndPassword)

	_, err = hasher.HashPassword("")
	assert.ErrorIs(t, err, account.ErrNoEmptyString)
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, account.NewBcryptHasher(bcrypt.MinCost).Cost)
	assert.NotEqual(t, 99, account.NewBcryptHasher(99).Cost)
}
