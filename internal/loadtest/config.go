// Package loadtest drives concurrent matches against a running API and
// checks every streamed run for ordering and confidence violations.
package loadtest

import (
	"errors"
	"time"
)

// Defaults.
const (
	DefaultBriefs  = 50
	DefaultWorkers = 8
	DefaultTimeout = 10 * time.Second
	DefaultClients = 10
)

// Sentinel errors.
var (
	ErrUnhealthy = errors.New("service unhealthy")
	ErrViolation = errors.New("stream invariant violated")
)

// Config holds configuration for a load test.
type Config struct {
	BaseURL string        // Base URL of the service
	Briefs  int           // Number of briefs to match
	Workers int           // Number of concurrent streams
	Clients int           // Distinct client IDs the briefs are spread over
	Timeout time.Duration // Per-stream timeout
	Seed    uint64        // Generator seed; equal seeds yield equal briefs
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Briefs <= 0 {
		out.Briefs = DefaultBriefs
	}
	if out.Workers <= 0 {
		out.Workers = DefaultWorkers
	}
	if out.Clients <= 0 {
		out.Clients = DefaultClients
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	return out
}

// Stats summarizes a load test.
type Stats struct {
	Runs       int                      `json:"runs"`
	Completed  int                      `json:"completed"`
	Failed     int                      `json:"failed"`
	NoMatch    int                      `json:"no_match"`
	Violations int                      `json:"violations"`
	Events     map[string]int           `json:"events"`
	Latency    map[string]time.Duration `json:"latency_avg"`
	Duration   time.Duration            `json:"duration"`
}
