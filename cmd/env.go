package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/pacer/internal/bandit"
	"github.com/lumenlearn/pacer/internal/config"
	"github.com/lumenlearn/pacer/internal/engine"
	"github.com/lumenlearn/pacer/internal/logging"
	"github.com/lumenlearn/pacer/internal/randvar"
	"github.com/lumenlearn/pacer/internal/store"
)

// cliEnv bundles the wired dependencies a command needs.
type cliEnv struct {
	cfg     config.Config
	log     *logging.Logger
	backend store.Backend
	coord   *engine.Coordinator
}

// newEnv loads configuration, applies flag overrides, and wires the
// backend and coordinator. Callers must Close it.
func newEnv(cmd *cobra.Command) (*cliEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store = config.StoreKind(v)
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.LogMode = "development"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	backend, err := openBackend(cmd.Context(), cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	coord := engine.New(backend, bandit.NewPolicy(newSampler(cfg)), log)
	return &cliEnv{cfg: cfg, log: log, backend: backend, coord: coord}, nil
}

func (e *cliEnv) Close() {
	if err := e.backend.Close(); err != nil {
		e.log.Error("close backend", "error", err)
	}
	e.log.Sync()
}

func openBackend(ctx context.Context, cfg config.Config) (store.Backend, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return store.NewMemory(), nil
	case config.StoreRedis:
		return store.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	default:
		path := cfg.DBPath
		if path == "" {
			var err error
			if path, err = store.DefaultDBPath(); err != nil {
				return nil, err
			}
		} else if err := store.EnsureDir(path); err != nil {
			return nil, err
		}
		s, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return s, nil
	}
}

func newSampler(cfg config.Config) *randvar.Sampler {
	if cfg.SeedSet {
		return randvar.New(cfg.Seed)
	}
	return randvar.NewRandom()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func jsonWanted(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
