package config

import (
	"fmt"
	"time"
)

// Config represents a docgen.yaml configuration file.
// All values are optional and act as defaults for generate flags.
// CLI flags always override config values.
type Config struct {
	// Model is the chat model selector.
	Model string `yaml:"model"`
	// BaseURL is the generation endpoint base URL.
	BaseURL string `yaml:"base_url"`
	// Parallel caps concurrent generation calls.
	Parallel int `yaml:"parallel"`
	// Timeout is the per-request generation timeout.
	Timeout Duration `yaml:"timeout"`
	// DocsDir overrides the doc artifact directory (relative to the
	// project root unless absolute).
	DocsDir string `yaml:"docs_dir"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "30s", "2m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "30s" or "1m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks the loaded values for obvious misconfiguration.
func (c *Config) Validate() error {
	if c.Parallel < 0 {
		return fmt.Errorf("parallel must be >= 0, got %d", c.Parallel)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout.Duration)
	}
	return nil
}
