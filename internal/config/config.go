package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrUnknownBackend marks a store kind no backend implements; callers
// branch on it to distinguish config mistakes from wiring failures.
var ErrUnknownBackend = errors.New("unknown store backend")

// StoreKind selects the persistence backend.
type StoreKind string

const (
	StoreSQLite StoreKind = "sqlite"
	StoreMemory StoreKind = "memory"
	StoreRedis  StoreKind = "redis"
)

const (
	defaultRedisAddr   = "localhost:6379"
	defaultRedisPrefix = "pacer"
)

// Config carries everything the CLI needs to wire a backend and logger.
// Values come from the environment, with a .env file loaded first if one
// is present in the working directory.
type Config struct {
	Store       StoreKind
	DBPath      string
	RedisAddr   string
	RedisPrefix string
	LogMode     string
	Seed        uint64
	SeedSet     bool
}

func Default() Config {
	return Config{
		Store:       StoreSQLite,
		RedisAddr:   defaultRedisAddr,
		RedisPrefix: defaultRedisPrefix,
		LogMode:     "production",
	}
}

// Load reads the environment into a Config. An empty DBPath means the
// store's platform default path.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if v := os.Getenv("PACER_STORE"); v != "" {
		cfg.Store = StoreKind(v)
	}
	if v := os.Getenv("PACER_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PACER_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("PACER_REDIS_PREFIX"); v != "" {
		cfg.RedisPrefix = v
	}
	if v := os.Getenv("PACER_LOG_MODE"); v != "" {
		cfg.LogMode = v
	}
	if v := os.Getenv("PACER_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse PACER_SEED %q: %w", v, err)
		}
		cfg.Seed = seed
		cfg.SeedSet = true
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("%w: %q (want sqlite, memory or redis)", ErrUnknownBackend, c.Store)
	}
	switch c.LogMode {
	case "production", "development":
	default:
		return fmt.Errorf("unknown log mode %q (want production or development)", c.LogMode)
	}
	return nil
}
