package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Pexels  PexelsConfig  `mapstructure:"pexels"`
	Gallery GalleryConfig `mapstructure:"gallery"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// Load reads configuration from an optional YAML file, .env and the environment.
// Parameters:
//   - configPath: explicit config file; empty searches ./configs and the working directory.
// Returns:
//   - *Config: resolved configuration.
//   - error: non-nil if the file cannot be read or decoded.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("pexels.api_key_env", "PEXELS_API_KEY")
	v.SetDefault("pexels.base_url", "https://api.pexels.com")
	v.SetDefault("pexels.timeout", "10s")
	v.SetDefault("gallery.page_size", 5)
	v.SetDefault("gallery.max_items", 20)
	v.SetDefault("gallery.fetch_timeout", "15s")
	v.SetDefault("gallery.view_ttl", "30m")
	v.SetDefault("gallery.sweep_every", "1m")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("pexels.api_key", "PEXELS_API_KEY")
	v.BindEnv("pexels.base_url", "PEXELS_BASE_URL")
	v.BindEnv("server.port", "PORT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Pexels.ResolveEnvVars()

	return &cfg, nil
}

// Validate checks the parts of the configuration needed to serve the gallery.
func (c *Config) Validate() error {
	if err := c.Pexels.Validate(); err != nil {
		return err
	}
	if err := c.Gallery.Validate(); err != nil {
		return err
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server: port must be positive")
	}
	return nil
}
