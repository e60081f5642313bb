// Package config loads the hoot configuration file.
//
// Values may reference environment variables as $VAR or ${VAR}, they are expanded before the YAML
// is decoded. Missing values get defaults, Validate reports every remaining problem at once.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/casualjim/hoot/pkg/retry"
	"gopkg.in/yaml.v3"
)

// Supported completion backends.
const (
	BackendAnthropic = "anthropic"
	BackendOpenAI    = "openai"
)

// DefaultMaxDepth mirrors the orchestrator default.
const DefaultMaxDepth = 10

// Config is the top level configuration.
type Config struct {
	Backend      string     `yaml:"backend"`
	Model        string     `yaml:"model"`
	MaxTokens    int64      `yaml:"max_tokens"`
	MaxDepth     int        `yaml:"max_depth"`
	Instructions string     `yaml:"instructions"`
	APIKey       string     `yaml:"api_key"`
	BaseURL      string     `yaml:"base_url"`
	Retry        Retry      `yaml:"retry"`
	Providers    []Provider `yaml:"providers"`
	NATS         *NATS      `yaml:"nats"`
}

// Retry configures backoff for completion requests.
type Retry struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// Policy converts the section into a retry policy.
func (r Retry) Policy() retry.Policy {
	return retry.Policy{
		MaxAttempts:  r.MaxAttempts,
		InitialDelay: r.InitialDelay,
		MaxDelay:     r.MaxDelay,
	}
}

// Provider describes a capability provider process.
type Provider struct {
	ID      string            `yaml:"id"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Dir     string            `yaml:"dir"`
	Env     map[string]string `yaml:"env"`
}

// NATS enables the observation mirror.
type NATS struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse expands environment variables in data, decodes it and applies defaults.
// It does not validate, call Validate for that.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied and no providers.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills every unset value.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendAnthropic
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = retry.DefaultMaxAttempts
	}
	if c.Retry.InitialDelay == 0 {
		c.Retry.InitialDelay = retry.DefaultInitialDelay
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = retry.DefaultMaxDelay
	}
	if c.NATS != nil && c.NATS.Subject == "" {
		c.NATS.Subject = "hoot.events"
	}
}

// Validate reports every problem in the configuration.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendAnthropic, BackendOpenAI:
	default:
		errs = append(errs, fmt.Errorf("backend: unsupported value %q", c.Backend))
	}
	if c.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("max_tokens: must not be negative"))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth: must not be negative"))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max_attempts: must be at least 1"))
	}
	if c.Retry.InitialDelay < 0 || c.Retry.MaxDelay < 0 {
		errs = append(errs, fmt.Errorf("retry: delays must not be negative"))
	}
	if c.Retry.MaxDelay > 0 && c.Retry.MaxDelay < c.Retry.InitialDelay {
		errs = append(errs, fmt.Errorf("retry.max_delay: %s is shorter than initial_delay %s", c.Retry.MaxDelay, c.Retry.InitialDelay))
	}

	seen := make(map[string]int, len(c.Providers))
	for i, p := range c.Providers {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("providers[%d].id: required", i))
		} else if prev, ok := seen[p.ID]; ok {
			errs = append(errs, fmt.Errorf("providers[%d].id: %q already used by providers[%d]", i, p.ID, prev))
		} else {
			seen[p.ID] = i
		}
		if p.Command == "" {
			errs = append(errs, fmt.Errorf("providers[%d].command: required", i))
		}
	}
	return errors.Join(errs...)
}
