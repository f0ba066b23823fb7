package account_test

import (
	"testing"

	account "github.com/goliatone/go-customer-account"
	"github.com/stretchr/testify/assert"
)

func TestOptionsDefaults(t *testing.T) {
	opts := account.DefaultOptions()
	assert.Equal(t, "1h", opts.GetResetTokenExpiration())
	assert.Equal(t, int64(1), opts.GetDefaultWebsiteID())
	assert.Equal(t, account.ShareScopeWebsite, opts.GetAccountShareScope())
	assert.False(t, opts.GetConfirmationRequired())
	assert.Equal(t, 0, opts.GetMaxLoginAttempts())
	assert.Equal(t, 8, opts.GetMinPasswordLength())
	assert.Equal(t, 3, opts.GetRequiredCharacterClasses())

	var empty account.Options
	assert.Equal(t, "1h", empty.GetResetTokenExpiration())
	assert.Equal(t, "24h", empty.GetLoginCoolDownPeriod())
	assert.Equal(t, account.ShareScopeWebsite, empty.GetAccountShareScope())
	assert.NotZero(t, empty.GetPasswordHashCost())

	empty.AccountShareScope = account.ShareScopeGlobal
	assert.Equal(t, account.ShareScopeGlobal, empty.GetAccountShareScope())
}
