package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

// Configuration is the root configuration loaded at process start.
type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Billing    BillingConfig    `mapstructure:"billing"`
	Email      EmailConfig      `mapstructure:"email"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

type DeploymentConfig struct {
	Mode string `mapstructure:"mode" default:"local"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" default:"0.0.0.0:8080"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"5432"`
	User     string `mapstructure:"user" default:"postgres"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname" default:"subledger"`
	SSLMode  string `mapstructure:"sslmode" default:"disable"`
	AutoMigrate bool `mapstructure:"auto_migrate" default:"true"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address" default:"localhost:6379"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" default:"0"`
}

type CacheConfig struct {
	Type string `mapstructure:"type" default:"inmemory"`
}

type AuthConfig struct {
	// Secret signs and verifies the bearer tokens that carry the caller
	// identity in the subject claim.
	Secret string `mapstructure:"secret"`
}

// BillingConfig holds the ledger-wide billing constants.
type BillingConfig struct {
	// OracleAuthority is the only identity (besides the platform admin)
	// allowed to push price updates.
	OracleAuthority string `mapstructure:"oracle_authority"`
	// AssetPair identifies the oracle record, e.g. "native/stable".
	AssetPair string `mapstructure:"asset_pair" default:"native/stable"`
	// PlatformFeeAmount is the flat per-payment platform fee in smallest
	// stable units, taken out of the settled amount.
	PlatformFeeAmount int64 `mapstructure:"platform_fee_amount" default:"10000"`
}

func (c BillingConfig) PlatformFee() decimal.Decimal {
	if c.PlatformFeeAmount < 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(c.PlatformFeeAmount)
}

type EmailConfig struct {
	Enabled   bool   `mapstructure:"enabled" default:"false"`
	APIKey    string `mapstructure:"api_key"`
	FromEmail string `mapstructure:"from_email" default:"receipts@subledger.dev"`
}

type LoggingConfig struct {
	Level          types.LogLevel `mapstructure:"level" default:"info"`
	FluentdEnabled bool           `mapstructure:"fluentd_enabled" default:"false"`
	FluentdHost    string         `mapstructure:"fluentd_host"`
	FluentdPort    int            `mapstructure:"fluentd_port"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled" default:"false"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment" default:"local"`
	SampleRate  float64 `mapstructure:"sample_rate" default:"1.0"`
}

// NewConfig loads configuration from config files and environment variables.
// Environment variables take precedence, with dots mapped to underscores,
// e.g. SUBLEDGER_POSTGRES_HOST overrides postgres.host.
func NewConfig() (*Configuration, error) {
	// Optional .env for local development; ignore if absent.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SUBLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierr.WithError(err).
				WithHint("Failed to read configuration file").
				Mark(ierr.ErrSystem)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to unmarshal configuration").
			Mark(ierr.ErrSystem)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", "local")
	v.SetDefault("server.address", "0.0.0.0:8080")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.dbname", "subledger")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.auto_migrate", true)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("cache.type", "inmemory")
	v.SetDefault("billing.asset_pair", "native/stable")
	v.SetDefault("billing.platform_fee_amount", 10000)
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.from_email", "receipts@subledger.dev")
	v.SetDefault("logging.level", "info")
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.environment", "local")
	v.SetDefault("sentry.sample_rate", 1.0)
}

func (c *Configuration) Validate() error {
	if c.Billing.PlatformFeeAmount < 0 {
		return ierr.NewError("billing.platform_fee_amount cannot be negative").
			WithHint("Platform fee must be 0 or greater").
			Mark(ierr.ErrValidation)
	}
	if c.Billing.AssetPair == "" {
		return ierr.NewError("billing.asset_pair is required").
			WithHint("Asset pair identifies the oracle record").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GetDefaultConfig returns a configuration suitable for tests: in-memory
// cache, no external services.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: "test"},
		Server:     ServerConfig{Address: "0.0.0.0:8080"},
		Cache:      CacheConfig{Type: "inmemory"},
		Billing: BillingConfig{
			OracleAuthority:   "oracle_authority_test",
			AssetPair:         "native/stable",
			PlatformFeeAmount: 10000,
		},
		Logging: LoggingConfig{Level: types.LogLevelDebug},
	}
}
