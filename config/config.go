package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Encryption EncryptionConfig `mapstructure:"encryption"`
	Webhook    WebhookConfig    `mapstructure:"webhook"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig configures the service tokens guarding the internal API.
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// EncryptionConfig holds the key material for integration secret encryption.
// The AES-256 key is derived from passphrase+salt via PBKDF2.
type EncryptionConfig struct {
	Passphrase string `mapstructure:"passphrase"`
	Salt       string `mapstructure:"salt"`
}

// WebhookConfig tunes outbound delivery and the retry sweep.
type WebhookConfig struct {
	Providers        []string        `mapstructure:"providers"`         // provider identifiers to dispatch to
	Timeout          time.Duration   `mapstructure:"timeout"`           // per-attempt HTTP timeout
	DispatchTimeout  time.Duration   `mapstructure:"dispatch_timeout"`  // budget for fire-and-forget dispatch
	RetryBackoff     []time.Duration `mapstructure:"retry_backoff"`     // delay table indexed by attempt number
	SweepBatchPerOrg int             `mapstructure:"sweep_batch_per_org"`
	SweepInterval    time.Duration   `mapstructure:"sweep_interval"` // 0 = external cron trigger only
	SweepLockTTL     time.Duration   `mapstructure:"sweep_lock_ttl"`
	Retention        time.Duration   `mapstructure:"retention"` // delivery log retention window
	PruneBatchSize   int             `mapstructure:"prune_batch_size"`
}

// MaxAttempts is the initial attempt plus one retry per backoff entry.
func (w WebhookConfig) MaxAttempts() int {
	return 1 + len(w.RetryBackoff)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: WDS_ (Webhook Dispatch Service).
// Nested keys use underscore: WDS_DATABASE_HOST, WDS_WEBHOOK_TIMEOUT, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "webhook_dispatch")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "webhook-dispatch-service")
	v.SetDefault("encryption.passphrase", "")
	v.SetDefault("encryption.salt", "")
	v.SetDefault("webhook.providers", []string{"zapier", "make"})
	v.SetDefault("webhook.timeout", "10s")
	v.SetDefault("webhook.dispatch_timeout", "60s")
	v.SetDefault("webhook.retry_backoff", []string{"5s", "30s", "120s"})
	v.SetDefault("webhook.sweep_batch_per_org", 50)
	v.SetDefault("webhook.sweep_interval", "0s")
	v.SetDefault("webhook.sweep_lock_ttl", "55s")
	v.SetDefault("webhook.retention", "720h") // 30 days
	v.SetDefault("webhook.prune_batch_size", 500)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: WDS_DATABASE_HOST -> database.host
	v.SetEnvPrefix("WDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if len(cfg.Webhook.RetryBackoff) == 0 {
		return nil, fmt.Errorf("webhook.retry_backoff must contain at least one delay")
	}

	return &cfg, nil
}
