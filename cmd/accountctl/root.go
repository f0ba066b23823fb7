package main

import (
	"context"
	"fmt"
	"io"
	"os"

	account "github.com/goliatone/go-customer-account"
	"github.com/goliatone/go-customer-account/activitymap"
	"github.com/goliatone/go-customer-account/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/uptrace/bun"
)

var (
	cfgFile      string
	printMetrics bool
	cfg          *Config
	app          *runtime
)

// runtime holds everything a subcommand needs
type runtime struct {
	db       *bun.DB
	repo     account.RepositoryManager
	manager  *account.AccountManager
	registry *prometheus.Registry
	redis    *redis.Client
	log      zerolog.Logger
	logFile  io.Closer
}

var rootCmd = &cobra.Command{
	Use:   "accountctl",
	Short: "Customer account management CLI",
	Long: `Manage customer accounts: registration, login, password changes,
password reset tokens, account activation and default addresses.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		app, err = newRuntime(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return nil
		}
		defer app.Close()

		if printMetrics {
			return writeMetrics(cmd.OutOrStdout(), app.registry)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if app != nil {
			app.Close()
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./accountctl.yaml)")
	rootCmd.PersistentFlags().String("db-driver", "", "database driver: sqlite or postgres")
	rootCmd.PersistentFlags().String("dsn", "", "database connection string")
	rootCmd.PersistentFlags().Int64("website", 0, "website id, defaults to account.default_website_id")
	rootCmd.PersistentFlags().String("redis-url", "", "redis url, enables the redis session store")
	rootCmd.PersistentFlags().String("log-level", "", "log level")
	rootCmd.PersistentFlags().BoolVar(&printMetrics, "print-metrics", false, "print account event counters on exit")

	viper.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	viper.BindPFlag("database.dsn", rootCmd.PersistentFlags().Lookup("dsn"))
	viper.BindPFlag("account.default_website_id", rootCmd.PersistentFlags().Lookup("website"))
	viper.BindPFlag("redis.url", rootCmd.PersistentFlags().Lookup("redis-url"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

func newRuntime(ctx context.Context, cfg *Config) (*runtime, error) {
	rt := &runtime{registry: prometheus.NewRegistry()}
	rt.log, rt.logFile = newZerolog(cfg.Log)

	db, repo, err := repository.Bootstrap(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	rt.db = db
	rt.repo = repo

	var sessions account.SessionStore = account.NewMemorySessionStore()
	if cfg.Redis.URL != "" {
		rc, err := account.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		rt.redis = rc
		sessions = account.NewRedisSessionStore(rc,
			account.WithRedisKeyPrefix(cfg.Redis.KeyPrefix),
			account.WithRedisSessionTTL(cfg.Redis.SessionTTL),
		)
	}

	logger := account.NewZerologLogger(rt.log, "account")
	audit := activitymap.Sink(func(_ context.Context, r activitymap.Record) error {
		rt.log.Debug().
			Str("verb", r.Verb).
			Str("actor_id", r.ActorID).
			Str("object_id", r.ObjectID).
			Interface("metadata", r.Metadata).
			Msg("account activity")
		return nil
	})

	rt.manager = account.NewAccountManager(repo, cfg.Account,
		account.WithLogger(logger),
		account.WithSessionStore(sessions),
		account.WithNotifier(account.ConsoleNotifier{Out: os.Stdout}),
		account.WithActivitySink(account.MultiActivitySink{
			account.NewMetricsSink(rt.registry),
			audit,
		}),
	)

	return rt, nil
}

func (r *runtime) Close() {
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			r.log.Error().Err(err).Msg("Failed to close redis connection")
		}
		r.redis = nil
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.log.Error().Err(err).Msg("Failed to close database connection")
		}
		r.db = nil
	}
	if r.logFile != nil {
		_ = r.logFile.Close()
		r.logFile = nil
	}
}

func website(cmd *cobra.Command) int64 {
	if id, _ := cmd.Flags().GetInt64("website"); id != 0 {
		return id
	}
	return cfg.Account.GetDefaultWebsiteID()
}
