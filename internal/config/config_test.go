package config

import (
	"errors"
	"testing"
	"time"

	"user-identity-service/internal/security"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("FIELD_ENCRYPTION_KEY", "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Errorf("AccessTTL = %v, want 15m", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 7*24*time.Hour {
		t.Errorf("RefreshTTL = %v, want 7d", cfg.RefreshTTL())
	}
	if len(cfg.FieldKey()) != 32 {
		t.Errorf("FieldKey length = %d, want 32", len(cfg.FieldKey()))
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("FIELD_ENCRYPTION_KEY", "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	if _, err := Load(); err == nil {
		t.Error("Load should fail without JWT_SECRET")
	}
}

func TestLoad_RejectsBadTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ACCESS_TOKEN_TTL", "1h30m")
	_, err := Load()
	if !errors.Is(err, security.ErrInvalidDurationFormat) {
		t.Errorf("Load with bad TTL: want ErrInvalidDurationFormat, got %v", err)
	}
}

func TestLoad_RejectsAccessLongerThanRefresh(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ACCESS_TOKEN_TTL", "30d")
	t.Setenv("REFRESH_TOKEN_TTL", "7d")
	if _, err := Load(); err == nil {
		t.Error("Load should reject ACCESS_TOKEN_TTL > REFRESH_TOKEN_TTL")
	}
}

func TestLoad_RejectsBadFieldKey(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("FIELD_ENCRYPTION_KEY", "abcd")
	if _, err := Load(); err == nil {
		t.Error("Load should reject a short field key")
	}
}

func TestKafkaBrokersList(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := cfg.KafkaBrokersList()
	if len(got) != 2 || got[0] != "k1:9092" || got[1] != "k2:9092" {
		t.Errorf("KafkaBrokersList = %v", got)
	}
}
