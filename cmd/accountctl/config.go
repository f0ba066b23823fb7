package main

import (
	"fmt"
	"strings"
	"time"

	account "github.com/goliatone/go-customer-account"
	"github.com/goliatone/go-customer-account/repository"
	"github.com/spf13/viper"
)

type Config struct {
	Account  account.Options `mapstructure:"account"`
	Database DatabaseConfig  `mapstructure:"database"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Log      LogConfig       `mapstructure:"log"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	// URL enables the redis session store when set
	URL        string        `mapstructure:"url"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func Load() (*Config, error) {
	viper.SetConfigName("accountctl")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.accountctl")
	viper.AddConfigPath("/etc/accountctl/")

	// ACCOUNT_DATABASE_DSN, ACCOUNT_ACCOUNT_MAX_LOGIN_ATTEMPTS, ...
	viper.SetEnvPrefix("ACCOUNT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	defaults := account.DefaultOptions()
	viper.SetDefault("account.reset_token_expiration", defaults.ResetTokenExpiration)
	viper.SetDefault("account.default_website_id", defaults.DefaultWebsiteID)
	viper.SetDefault("account.account_share_scope", defaults.AccountShareScope)
	viper.SetDefault("account.confirmation_required", defaults.ConfirmationRequired)
	viper.SetDefault("account.max_login_attempts", defaults.MaxLoginAttempts)
	viper.SetDefault("account.login_cool_down_period", defaults.LoginCoolDownPeriod)
	viper.SetDefault("account.min_password_length", defaults.MinPasswordLength)
	viper.SetDefault("account.required_character_classes", defaults.RequiredCharacterClasses)
	viper.SetDefault("account.password_hash_cost", defaults.PasswordHashCost)

	viper.SetDefault("database.driver", repository.DriverSQLite)
	viper.SetDefault("database.dsn", "file:accounts.db?cache=shared")
	viper.SetDefault("redis.key_prefix", "account:session")
	viper.SetDefault("redis.session_ttl", 24*time.Hour)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.max_size_mb", 10)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age_days", 28)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
