package account

import "golang.org/x/crypto/bcrypt"

// Options is the default Config implementation. Field tags match the
// keys used by the CLI configuration file.
type Options struct {
	ResetTokenExpiration     string     `mapstructure:"reset_token_expiration" json:"reset_token_expiration"`
	DefaultWebsiteID         int64      `mapstructure:"default_website_id" json:"default_website_id"`
	AccountShareScope        ShareScope `mapstructure:"account_share_scope" json:"account_share_scope"`
	ConfirmationRequired     bool       `mapstructure:"confirmation_required" json:"confirmation_required"`
	MaxLoginAttempts         int        `mapstructure:"max_login_attempts" json:"max_login_attempts"`
	LoginCoolDownPeriod      string     `mapstructure:"login_cool_down_period" json:"login_cool_down_period"`
	MinPasswordLength        int        `mapstructure:"min_password_length" json:"min_password_length"`
	RequiredCharacterClasses int        `mapstructure:"required_character_classes" json:"required_character_classes"`
	PasswordHashCost         int        `mapstructure:"password_hash_cost" json:"password_hash_cost"`
}

var _ Config = Options{}

// DefaultOptions returns the stock configuration
func DefaultOptions() Options {
	return Options{
		ResetTokenExpiration:     "1h",
		DefaultWebsiteID:         1,
		AccountShareScope:        ShareScopeWebsite,
		ConfirmationRequired:     false,
		MaxLoginAttempts:         0,
		LoginCoolDownPeriod:      "24h",
		MinPasswordLength:        8,
		RequiredCharacterClasses: 3,
		PasswordHashCost:         passwordHashCost(),
	}
}

func (o Options) GetResetTokenExpiration() string {
	if o.ResetTokenExpiration == "" {
		return "1h"
	}
	return o.ResetTokenExpiration
}

func (o Options) GetDefaultWebsiteID() int64 {
	return o.DefaultWebsiteID
}

func (o Options) GetAccountShareScope() ShareScope {
	if o.AccountShareScope == ShareScopeGlobal {
		return ShareScopeGlobal
	}
	return ShareScopeWebsite
}

func (o Options) GetConfirmationRequired() bool {
	return o.ConfirmationRequired
}

func (o Options) GetMaxLoginAttempts() int {
	return o.MaxLoginAttempts
}

func (o Options) GetLoginCoolDownPeriod() string {
	if o.LoginCoolDownPeriod == "" {
		return "24h"
	}
	return o.LoginCoolDownPeriod
}

func (o Options) GetMinPasswordLength() int {
	return o.MinPasswordLength
}

func (o Options) GetRequiredCharacterClasses() int {
	return o.RequiredCharacterClasses
}

func (o Options) GetPasswordHashCost() int {
	if o.PasswordHashCost < bcrypt.MinCost || o.PasswordHashCost > bcrypt.MaxCost {
		return passwordHashCost()
	}
	return o.PasswordHashCost
}
