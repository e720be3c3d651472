// Package config loads and validates app config from env and an optional
// .env file using Viper.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"user-identity-service/internal/security"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the HS256 signing secret for access tokens. Required.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTIssuer is the iss claim set on access tokens.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// AccessTokenTTL is the access token lifetime in Ns/Nm/Nh/Nd form (e.g. "15m").
	AccessTokenTTL string `mapstructure:"ACCESS_TOKEN_TTL"`
	// RefreshTokenTTL is the refresh token lifetime in Ns/Nm/Nh/Nd form (e.g. "7d").
	RefreshTokenTTL string `mapstructure:"REFRESH_TOKEN_TTL"`
	// FieldEncryptionKey is the hex-encoded 32-byte AES key for field
	// encryption at rest. Required.
	FieldEncryptionKey string `mapstructure:"FIELD_ENCRYPTION_KEY"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// SweepInterval is how often the sweeper deactivates expired sessions.
	SweepInterval string `mapstructure:"SWEEP_INTERVAL"`
	// KafkaBrokers is a comma-separated broker list for the audit stream;
	// empty disables Kafka and audit events go to the process log.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AuditKafkaTopic is the Kafka topic for audit events.
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`
	// OTLPEndpoint enables OpenTelemetry export when set (host:port or URL).
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	accessTTL  time.Duration
	refreshTTL time.Duration
	sweepEvery time.Duration
	fieldKey   []byte
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Env vars override .env. TTL strings are parsed
// eagerly so a malformed duration fails startup, not the first request.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "user-identity-service")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "7d")
	v.SetDefault("FIELD_ENCRYPTION_KEY", "")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SWEEP_INTERVAL", "10m")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "identity-audit")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}

	key, err := hex.DecodeString(cfg.FieldEncryptionKey)
	if err != nil || len(key) != 32 {
		return nil, errors.New("config: FIELD_ENCRYPTION_KEY must be 32 bytes hex")
	}
	cfg.fieldKey = key

	if cfg.accessTTL, err = security.ParseTTL(cfg.AccessTokenTTL); err != nil {
		return nil, fmt.Errorf("config: ACCESS_TOKEN_TTL %q: %w", cfg.AccessTokenTTL, err)
	}
	if cfg.refreshTTL, err = security.ParseTTL(cfg.RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("config: REFRESH_TOKEN_TTL %q: %w", cfg.RefreshTokenTTL, err)
	}
	if cfg.accessTTL > cfg.refreshTTL {
		return nil, errors.New("config: ACCESS_TOKEN_TTL must not exceed REFRESH_TOKEN_TTL")
	}
	if cfg.sweepEvery, err = security.ParseTTL(cfg.SweepInterval); err != nil {
		return nil, fmt.Errorf("config: SWEEP_INTERVAL %q: %w", cfg.SweepInterval, err)
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// AccessTTL returns the parsed access token lifetime.
func (c *Config) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the parsed refresh token lifetime.
func (c *Config) RefreshTTL() time.Duration { return c.refreshTTL }

// SweepEvery returns the parsed sweep interval.
func (c *Config) SweepEvery() time.Duration { return c.sweepEvery }

// FieldKey returns the decoded field encryption key.
func (c *Config) FieldKey() []byte { return c.fieldKey }

// KafkaBrokersList returns broker addresses from the comma-separated config.
// An empty list means the audit stream falls back to the process log.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
