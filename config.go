package fanout

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/fanout/policy"
	"github.com/viant/fanout/service/engine"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the orchestrator configuration.
// It can be populated from JSON or YAML; the zero value of every field falls
// back to its default.
type Config struct {
	Engine  EngineConfig   `json:"engine" yaml:"engine"`
	Store   StoreConfig    `json:"store" yaml:"store"`
	Tracing TracingConfig  `json:"tracing" yaml:"tracing"`
	Log     LogConfig      `json:"log" yaml:"log"`
	Policy  *policy.Config `json:"policy,omitempty" yaml:"policy,omitempty"`
}

type EngineConfig struct {
	BatchSize          int    `json:"batchSize" yaml:"batchSize"`
	DefaultConcurrency int    `json:"defaultConcurrency" yaml:"defaultConcurrency"`
	PollIntervalMs     int    `json:"pollIntervalMs" yaml:"pollIntervalMs"`
	WaitTimeoutMs      int    `json:"waitTimeoutMs" yaml:"waitTimeoutMs"`
	Rescue             string `json:"rescue,omitempty" yaml:"rescue,omitempty"`
}

// StoreConfig selects the job store: memory, or fs persisting jobs as JSON
// files under BaseURL.
type StoreConfig struct {
	Vendor  string `json:"vendor" yaml:"vendor"`
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
}

type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
	ServiceVersion string `json:"serviceVersion,omitempty" yaml:"serviceVersion,omitempty"`
	OutputFile     string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

const (
	StoreMemory = "memory"
	StoreFs     = "fs"
)

// DefaultConfig returns a Config populated with the package defaults.
// Callers may modify the returned struct before passing it to NewFromConfig.
func DefaultConfig() *Config {
	defaults := engine.DefaultConfig()
	return &Config{
		Engine: EngineConfig{
			BatchSize:          defaults.BatchSize,
			DefaultConcurrency: defaults.DefaultConcurrency,
			PollIntervalMs:     int(defaults.PollInterval.Milliseconds()),
			WaitTimeoutMs:      int(time.Hour.Milliseconds()),
			Rescue:             string(defaults.Rescue),
		},
		Store:   StoreConfig{Vendor: StoreMemory},
		Tracing: TracingConfig{ServiceName: "fanout", ServiceVersion: "0.1.0"},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var result *multierror.Error
	if c.Engine.BatchSize < 0 {
		result = multierror.Append(result, errors.New("engine.batchSize must be >= 0"))
	}
	if c.Engine.DefaultConcurrency < 0 {
		result = multierror.Append(result, errors.New("engine.defaultConcurrency must be >= 0"))
	}
	if c.Engine.Rescue != "" && !policy.Rescue(c.Engine.Rescue).IsValid() {
		result = multierror.Append(result, errors.Errorf("engine.rescue: unsupported strategy %q", c.Engine.Rescue))
	}
	switch c.Store.Vendor {
	case "", StoreMemory:
	case StoreFs:
		if c.Store.BaseURL == "" {
			result = multierror.Append(result, errors.New("store.baseURL is required for fs store"))
		}
	default:
		result = multierror.Append(result, errors.Errorf("store.vendor: unsupported vendor %q", c.Store.Vendor))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		result = multierror.Append(result, errors.Errorf("log.format: unsupported format %q", c.Log.Format))
	}
	return result.ErrorOrNil()
}

// WaitTimeout returns the default Wait timeout
func (c *Config) WaitTimeout() time.Duration {
	if c.Engine.WaitTimeoutMs <= 0 {
		return time.Hour
	}
	return time.Duration(c.Engine.WaitTimeoutMs) * time.Millisecond
}

func (c *Config) engineConfig() engine.Config {
	return engine.Config{
		BatchSize:          c.Engine.BatchSize,
		DefaultConcurrency: c.Engine.DefaultConcurrency,
		PollInterval:       time.Duration(c.Engine.PollIntervalMs) * time.Millisecond,
		Rescue:             policy.Rescue(c.Engine.Rescue),
	}
}

// LoadConfig loads a YAML (or JSON) config from any afs supported URL on top
// of DefaultConfig.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config %v", URL)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, errors.Wrapf(err, "failed to decode config %v", URL)
	}
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
