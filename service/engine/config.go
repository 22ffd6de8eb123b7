package engine

import (
	"time"

	"github.com/viant/fanout/policy"
)

// Config represents engine configuration
type Config struct {
	// BatchSize is the window size dispatched per orchestrator invocation
	BatchSize int
	// DefaultConcurrency caps sub-jobs of requests without a concurrency limit
	DefaultConcurrency int
	// PollInterval is the Wait polling period
	PollInterval time.Duration
	// Rescue decides the aggregate outcome when sub-jobs fail
	Rescue policy.Rescue
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		BatchSize:          100,
		DefaultConcurrency: 10,
		PollInterval:       50 * time.Millisecond,
		Rescue:             policy.RescueSkip,
	}
}

func (c *Config) init() {
	defaults := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.DefaultConcurrency <= 0 {
		c.DefaultConcurrency = defaults.DefaultConcurrency
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if !c.Rescue.IsValid() {
		c.Rescue = defaults.Rescue
	}
}
