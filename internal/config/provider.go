package config

import (
	"fmt"
	"os"
	"time"
)

// PexelsConfig defines configuration for the Pexels media provider.
type PexelsConfig struct {
	APIKey    string        `mapstructure:"api_key"`     // API key (can be set directly or via env var)
	APIKeyEnv string        `mapstructure:"api_key_env"` // Environment variable name for API key
	BaseURL   string        `mapstructure:"base_url"`    // API host, overridable for tests and proxies
	Timeout   time.Duration `mapstructure:"timeout"`     // HTTP client timeout
}

// ResolveEnvVars loads the API key from APIKeyEnv when it is not set directly.
func (c *PexelsConfig) ResolveEnvVars() {
	if c.APIKeyEnv != "" && c.APIKey == "" {
		if val := os.Getenv(c.APIKeyEnv); val != "" {
			c.APIKey = val
		}
	}
}

// Validate checks that the provider configuration is usable.
// Returns an error describing the first validation failure, or nil if valid.
func (c *PexelsConfig) Validate() error {
	if c.APIKey == "" {
		envName := c.APIKeyEnv
		if envName == "" {
			envName = "PEXELS_API_KEY"
		}
		return fmt.Errorf("pexels: api_key is required (set directly or via %s)", envName)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("pexels: base_url is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("pexels: timeout must not be negative")
	}
	return nil
}

// GalleryConfig controls pagination of the media gallery.
type GalleryConfig struct {
	PageSize     int           `mapstructure:"page_size"`     // Items requested per provider page
	MaxItems     int           `mapstructure:"max_items"`     // Cap per category before load-more is disabled
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"` // Upper bound for one page fetch
	ViewTTL      time.Duration `mapstructure:"view_ttl"`      // Idle time before a view is discarded
	SweepEvery   time.Duration `mapstructure:"sweep_every"`   // Interval of the idle view sweep
}

// Validate checks that the gallery sizes are positive.
func (c *GalleryConfig) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("gallery: page_size must be positive")
	}
	if c.MaxItems <= 0 {
		return fmt.Errorf("gallery: max_items must be positive")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("gallery: fetch_timeout must be positive")
	}
	if c.ViewTTL <= 0 || c.SweepEvery <= 0 {
		return fmt.Errorf("gallery: view_ttl and sweep_every must be positive")
	}
	return nil
}
