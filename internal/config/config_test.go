package config

import (
	"errors"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PACER_STORE", "PACER_DB", "PACER_REDIS_ADDR",
		"PACER_REDIS_PREFIX", "PACER_LOG_MODE", "PACER_SEED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store != StoreSQLite {
		t.Errorf("Store = %q, want %q", cfg.Store, StoreSQLite)
	}
	if cfg.DBPath != "" {
		t.Errorf("DBPath = %q, want empty", cfg.DBPath)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want localhost:6379", cfg.RedisAddr)
	}
	if cfg.LogMode != "production" {
		t.Errorf("LogMode = %q, want production", cfg.LogMode)
	}
	if cfg.SeedSet {
		t.Error("SeedSet = true for unset PACER_SEED")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PACER_STORE", "redis")
	t.Setenv("PACER_REDIS_ADDR", "cache.internal:6380")
	t.Setenv("PACER_REDIS_PREFIX", "quiz")
	t.Setenv("PACER_LOG_MODE", "development")
	t.Setenv("PACER_SEED", "12345")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store != StoreRedis {
		t.Errorf("Store = %q, want redis", cfg.Store)
	}
	if cfg.RedisAddr != "cache.internal:6380" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.RedisPrefix != "quiz" {
		t.Errorf("RedisPrefix = %q", cfg.RedisPrefix)
	}
	if cfg.LogMode != "development" {
		t.Errorf("LogMode = %q", cfg.LogMode)
	}
	if !cfg.SeedSet || cfg.Seed != 12345 {
		t.Errorf("Seed = %d (set=%v), want 12345 set", cfg.Seed, cfg.SeedSet)
	}
}

func TestLoadRejectsBadSeed(t *testing.T) {
	clearEnv(t)
	t.Setenv("PACER_SEED", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted a malformed PACER_SEED")
	}
}

func TestValidateRejectsUnknownStore(t *testing.T) {
	cfg := Default()
	cfg.Store = "postgres"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate accepted unknown store")
	}
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("error %v does not wrap ErrUnknownBackend", err)
	}
	if !strings.Contains(err.Error(), "postgres") {
		t.Errorf("error %q does not name the bad store", err)
	}
}

func TestValidateRejectsUnknownLogMode(t *testing.T) {
	cfg := Default()
	cfg.LogMode = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted unknown log mode")
	}
}
