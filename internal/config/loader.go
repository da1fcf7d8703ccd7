package config

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BRIEFMATCH_"

// FileEnv names the variable holding an optional YAML config path.
const FileEnv = EnvPrefix + "CONFIG"

const weightTolerance = 1e-6

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BRIEFMATCH_CONFIG is set
//  3. env (prefix BRIEFMATCH_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// BRIEFMATCH_CACHE_CAPACITY -> cache_capacity; underscores are kept to
	// match the flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the engine relies on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PoolLimit <= 0:
		return fmt.Errorf("%w: pool_limit must be positive", ErrInvalidConfig)
	case c.CacheCapacity <= 0:
		return fmt.Errorf("%w: cache_capacity must be positive", ErrInvalidConfig)
	case c.EmbeddingDims <= 0:
		return fmt.Errorf("%w: embedding_dims must be positive", ErrInvalidConfig)
	case c.LocalWeight < 0 || c.EmbeddingWeight < 0:
		return fmt.Errorf("%w: blend weights must not be negative", ErrInvalidConfig)
	case math.Abs(c.LocalWeight+c.EmbeddingWeight-1) > weightTolerance:
		return fmt.Errorf("%w: local_weight + embedding_weight must equal 1", ErrInvalidConfig)
	case c.RemoteWeight < 0 || c.RemoteWeight > 1:
		return fmt.Errorf("%w: remote_weight must be within [0,1]", ErrInvalidConfig)
	case c.InstantTTLMS <= 0 || c.RefinedTTLMS < c.InstantTTLMS || c.FinalTTLMS < c.RefinedTTLMS:
		return fmt.Errorf("%w: ttls must be positive and non-decreasing by phase", ErrInvalidConfig)
	}

	switch strings.ToLower(c.PoolDriver) {
	case "memory":
	case "postgres":
		if c.PoolDSN == "" {
			return fmt.Errorf("%w: pool_dsn is required for the postgres driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown pool_driver %q", ErrInvalidConfig, c.PoolDriver)
	}

	switch strings.ToLower(c.RemoteProvider) {
	case "", "none", "openai", "gemini", "anthropic":
	default:
		return fmt.Errorf("%w: unknown remote_provider %q", ErrInvalidConfig, c.RemoteProvider)
	}

	switch strings.ToLower(c.EmbeddingProvider) {
	case "hash", "openai":
	default:
		return fmt.Errorf("%w: unknown embedding_provider %q", ErrInvalidConfig, c.EmbeddingProvider)
	}
	return nil
}
