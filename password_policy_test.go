package account_test

import (
	"testing"

	account "github.com/goliatone/go-customer-account"
	"github.com/stretchr/testify/assert"
)

func TestPasswordPolicy(t *testing.T) {
	policy := account.PasswordPolicyFromConfig(account.DefaultOptions())

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"empty", "", false},
		{"too short", "Ab1!", false},
		{"two classes", "abcdefgh12", false},
		{"three classes", "Abcdefgh12", true},
		{"four classes", "Abcdefg1!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Validate(tt.password)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, account.IsWeakPassword(err))
		})
	}
}

func TestCharacterClasses(t *testing.T) {
	assert.Equal(t, 0, account.CharacterClasses(""))
	assert.Equal(t, 1, account.CharacterClasses("abc"))
	assert.Equal(t, 2, account.CharacterClasses("abcD"))
	assert.Equal(t, 3, account.CharacterClasses("abcD1"))
	assert.Equal(t, 4, account.CharacterClasses("abcD1 "))
}

func TestPasswordPolicyDisabled(t *testing.T) {
	policy := account.PasswordPolicy{}
	assert.NoError(t, policy.Validate("a"))
	assert.True(t, account.IsWeakPassword(policy.Validate("")))
}
