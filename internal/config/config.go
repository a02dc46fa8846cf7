// Package config handles runtime settings: remote base URLs, retry
// ceilings, verification concurrency, and the optional record cache.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables overriding individual settings. They take effect
// after any settings file, so test doubles can always redirect the remote
// services.
const (
	EnvArxivURL       = "BIBEXTRACT_ARXIV_URL"
	EnvDBLPURL        = "BIBEXTRACT_DBLP_URL"
	EnvMaxElapsedSecs = "BIBEXTRACT_MAX_ELAPSED_SECS"
	EnvWorkers        = "BIBEXTRACT_WORKERS"
	EnvCachePath      = "BIBEXTRACT_CACHE"
)

// Config is the resolved runtime configuration.
type Config struct {
	ArxivBaseURL string `yaml:"arxiv_base_url"`
	DBLPBaseURL  string `yaml:"dblp_base_url"`

	// RetryMaxElapsedSecs caps the total retry time of one remote call.
	RetryMaxElapsedSecs int `yaml:"retry_max_elapsed_secs"`

	// VerifyWorkers bounds concurrent entry verifications.
	VerifyWorkers int `yaml:"verify_workers"`

	// CachePath enables the SQLite record cache when non-empty.
	CachePath string `yaml:"cache_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ArxivBaseURL:        "https://arxiv.org",
		DBLPBaseURL:         "https://dblp.org",
		RetryMaxElapsedSecs: 30,
		VerifyWorkers:       8,
	}
}

// Load reads a YAML settings file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.RetryMaxElapsedSecs <= 0 {
		return nil, fmt.Errorf("%s: retry_max_elapsed_secs must be positive", path)
	}
	if cfg.VerifyWorkers <= 0 {
		return nil, fmt.Errorf("%s: verify_workers must be positive", path)
	}

	return cfg, nil
}

// ApplyEnv overrides settings from the environment. Unset or unparsable
// variables leave the current value in place.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvArxivURL); v != "" {
		c.ArxivBaseURL = v
	}
	if v := os.Getenv(EnvDBLPURL); v != "" {
		c.DBLPBaseURL = v
	}
	if v := os.Getenv(EnvMaxElapsedSecs); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RetryMaxElapsedSecs = n
		}
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.VerifyWorkers = n
		}
	}
	if v := os.Getenv(EnvCachePath); v != "" {
		c.CachePath = v
	}
}

// RetryMaxElapsed returns the retry ceiling as a duration.
func (c *Config) RetryMaxElapsed() time.Duration {
	return time.Duration(c.RetryMaxElapsedSecs) * time.Second
}
