// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Flat koanf keys so every field maps to one BRIEFMATCH_ env variable.
// - Provide New() initializer to build a Config with defaults.
// - Durations are expressed in milliseconds.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects console or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// PoolDriver selects the candidate pool: memory or postgres.
	PoolDriver string `koanf:"pool_driver"`
	// PoolDSN is the Postgres connection string for the postgres driver.
	PoolDSN string `koanf:"pool_dsn"`
	// PoolSeedFile is a YAML file of candidates loaded into the memory driver.
	PoolSeedFile string `koanf:"pool_seed_file"`
	// PoolLimit caps the number of candidates scored per run.
	PoolLimit int `koanf:"pool_limit"`

	// Alternates is the number of runners-up carried on each event.
	Alternates int `koanf:"alternates"`
	// RefinedTopN and FinalTopN bound the remote phases.
	RefinedTopN int `koanf:"refined_top_n"`
	FinalTopN   int `koanf:"final_top_n"`
	// FinalDelayMS delays the deep analysis after the refined phase is scheduled.
	FinalDelayMS int `koanf:"final_delay_ms"`
	// LocalWeight and EmbeddingWeight blend the instant score.
	LocalWeight     float64 `koanf:"local_weight"`
	EmbeddingWeight float64 `koanf:"embedding_weight"`
	// RemoteWeight is the remote share of the refined blend.
	RemoteWeight float64 `koanf:"remote_weight"`
	// CancelPrevious cancels a client's in-flight run when a new one starts.
	CancelPrevious bool `koanf:"cancel_previous"`
	// ScoringConcurrency bounds per-run candidate fan-out.
	ScoringConcurrency int `koanf:"scoring_concurrency"`

	// CacheCapacity bounds the in-process result cache.
	CacheCapacity int `koanf:"cache_capacity"`
	// CacheShards splits the in-process cache into independently locked shards.
	CacheShards int `koanf:"cache_shards"`
	// CachePath is the SQLite file backing the durable tier; empty keeps it in memory.
	CachePath string `koanf:"cache_path"`
	// Phase TTLs.
	InstantTTLMS int `koanf:"instant_ttl_ms"`
	RefinedTTLMS int `koanf:"refined_ttl_ms"`
	FinalTTLMS   int `koanf:"final_ttl_ms"`
	// JanitorIntervalMS controls expired-entry purging; 0 disables it.
	JanitorIntervalMS int `koanf:"janitor_interval_ms"`

	// EmbeddingProvider selects hash or openai.
	EmbeddingProvider  string `koanf:"embedding_provider"`
	EmbeddingDims      int    `koanf:"embedding_dims"`
	EmbeddingModel     string `koanf:"embedding_model"`
	EmbeddingTimeoutMS int    `koanf:"embedding_timeout_ms"`

	// RemoteProvider selects none, openai, gemini or anthropic.
	RemoteProvider   string  `koanf:"remote_provider"`
	RemoteAPIKey     string  `koanf:"remote_api_key"`
	RemoteModel      string  `koanf:"remote_model"`
	RemoteBaseURL    string  `koanf:"remote_base_url"`
	QuickTimeoutMS   int     `koanf:"quick_timeout_ms"`
	DeepTimeoutMS    int     `koanf:"deep_timeout_ms"`
	RemoteRatePerSec float64 `koanf:"remote_rate_per_sec"`
	RemoteBurst      int     `koanf:"remote_burst"`

	// WorkerCount sets the number of background phase workers.
	WorkerCount int `koanf:"worker_count"`
	// QueueSize bounds pending background phase jobs.
	QueueSize int `koanf:"queue_size"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "console",
		Addr:               ":9080",
		PoolDriver:         "memory",
		PoolLimit:          50,
		Alternates:         3,
		RefinedTopN:        10,
		FinalTopN:          5,
		FinalDelayMS:       250,
		LocalWeight:        0.7,
		EmbeddingWeight:    0.3,
		RemoteWeight:       0.7,
		CancelPrevious:     true,
		ScoringConcurrency: runtime.NumCPU() * 4,
		CacheCapacity:      500,
		CacheShards:        16,
		InstantTTLMS:       int((5 * time.Minute).Milliseconds()),
		RefinedTTLMS:       int(time.Hour.Milliseconds()),
		FinalTTLMS:         int((24 * time.Hour).Milliseconds()),
		JanitorIntervalMS:  int(time.Minute.Milliseconds()),
		EmbeddingProvider:  "hash",
		EmbeddingDims:      512,
		EmbeddingModel:     "text-embedding-3-small",
		EmbeddingTimeoutMS: 2000,
		RemoteProvider:     "none",
		QuickTimeoutMS:     800,
		DeepTimeoutMS:      2000,
		RemoteRatePerSec:   5,
		RemoteBurst:        10,
		WorkerCount:        runtime.NumCPU() * 2,
		QueueSize:          1024,
	}
}

// Ms converts a millisecond setting into a duration.
func Ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
