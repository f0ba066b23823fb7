package account_test

import (
	"testing"
	"time"

	account "github.com/goliatone/go-customer-account"
	"github.com/stretchr/testify/assert"
)

func TestCustomerEnsureState(t *testing.T) {
	c := &account.Customer{ConfirmationKey: "key"}
	c.EnsureState()
	assert.Equal(t, account.StatePendingConfirmation, c.State)
	assert.False(t, c.IsActive())

	c = &account.Customer{}
	assert.True(t, c.IsActive())
}

func TestCustomerResetToken(t *testing.T) {
	c := &account.Customer{}
	assert.False(t, c.HasResetToken())

	c.SetResetToken("abc", time.Now())
	assert.True(t, c.HasResetToken())

	c.ClearResetToken()
	assert.False(t, c.HasResetToken())
	assert.Nil(t, c.ResetTokenCreatedAt)
}

func TestAddressE164Telephone(t *testing.T) {
	a := &account.Address{Telephone: "(650) 253-0000", CountryID: "us"}
	assert.Equal(t, "+16502530000", a.E164Telephone())

	a = &account.Address{Telephone: "3468676", CountryID: "US"}
	assert.Equal(t, "3468676", a.E164Telephone(), "invalid numbers are kept as entered")

	assert.Equal(t, "", (&account.Address{}).E164Telephone())
	assert.Equal(t, "Green str, 67, Apt 3", (&account.Address{Street: []string{"Green str, 67", "Apt 3"}}).StreetLine())
}
