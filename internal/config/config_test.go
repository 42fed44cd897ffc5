package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PEXELS_API_KEY", "env-key")
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Pexels.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", cfg.Pexels.APIKey)
	}
	if cfg.Gallery.PageSize != 5 || cfg.Gallery.MaxItems != 20 {
		t.Errorf("unexpected gallery sizes: %+v", cfg.Gallery)
	}
	if cfg.Gallery.FetchTimeout != 15*time.Second || cfg.Gallery.ViewTTL != 30*time.Minute {
		t.Errorf("unexpected gallery durations: %+v", cfg.Gallery)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults with api key should validate: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv("PEXELS_API_KEY", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
pexels:
  api_key: file-key
  base_url: http://localhost:1234
gallery:
  page_size: 10
  max_items: 40
  fetch_timeout: 2s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Pexels.APIKey != "file-key" || cfg.Pexels.BaseURL != "http://localhost:1234" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Gallery.PageSize != 10 || cfg.Gallery.MaxItems != 40 || cfg.Gallery.FetchTimeout != 2*time.Second {
		t.Errorf("gallery values not applied: %+v", cfg.Gallery)
	}
}

func TestPexelsConfig_ResolveEnvVars(t *testing.T) {
	t.Setenv("CUSTOM_PEXELS_KEY", "from-custom-env")

	c := &PexelsConfig{APIKeyEnv: "CUSTOM_PEXELS_KEY"}
	c.ResolveEnvVars()
	if c.APIKey != "from-custom-env" {
		t.Errorf("APIKey = %q", c.APIKey)
	}

	direct := &PexelsConfig{APIKey: "direct", APIKeyEnv: "CUSTOM_PEXELS_KEY"}
	direct.ResolveEnvVars()
	if direct.APIKey != "direct" {
		t.Errorf("direct value must take precedence, got %q", direct.APIKey)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server: ServerConfig{Port: 8080},
		Pexels: PexelsConfig{APIKey: "k", BaseURL: "https://api.pexels.com"},
		Gallery: GalleryConfig{
			PageSize: 5, MaxItems: 20, FetchTimeout: time.Second,
			ViewTTL: time.Minute, SweepEvery: time.Second,
		},
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.Pexels.APIKey = "" }, wantErr: "api_key is required"},
		{name: "zero page size", mutate: func(c *Config) { c.Gallery.PageSize = 0 }, wantErr: "page_size"},
		{name: "zero cap", mutate: func(c *Config) { c.Gallery.MaxItems = 0 }, wantErr: "max_items"},
		{name: "no fetch timeout", mutate: func(c *Config) { c.Gallery.FetchTimeout = 0 }, wantErr: "fetch_timeout"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "port"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatalf("restoring working directory: %v", err)
		}
	})
}
