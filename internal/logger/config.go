package logger

import (
	"io"

	"github.com/spf13/viper"
)

// EnvConfig holds extended logger configuration loaded from environment variables.
type EnvConfig struct {
	Level       string    // Log level: debug, info, warn, error
	Format      string    // Output format: json, text
	Output      io.Writer // Output destination (highest priority)
	ServiceName string    // Service name for log tagging

	// Environment: local, dev, prod. Only non-local environments write a log file.
	Environment string

	LogFile     string
	LogFileOnly bool // Output only to file (not stdout)

	// Rotation, passed to lumberjack
	MaxSize    int  // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

var envDefaults = map[string]interface{}{
	"LOG_LEVEL":       "info",
	"LOG_FORMAT":      "json",
	"SERVICE_NAME":    "mediagrid",
	"APP_ENV":         "local",
	"LOG_FILE":        "/var/log/mediagrid/app.log",
	"LOG_FILE_ONLY":   false,
	"LOG_MAX_SIZE":    100,
	"LOG_MAX_BACKUPS": 7,
	"LOG_MAX_AGE":     30,
	"LOG_COMPRESS":    true,
}

// LoadFromEnv loads configuration from environment variables.
// Unparseable numeric or boolean values fall back to their zero value.
func LoadFromEnv() *EnvConfig {
	v := viper.New()
	for key, val := range envDefaults {
		v.SetDefault(key, val)
		_ = v.BindEnv(key)
	}

	return &EnvConfig{
		Level:       v.GetString("LOG_LEVEL"),
		Format:      v.GetString("LOG_FORMAT"),
		ServiceName: v.GetString("SERVICE_NAME"),
		Environment: v.GetString("APP_ENV"),
		LogFile:     v.GetString("LOG_FILE"),
		LogFileOnly: v.GetBool("LOG_FILE_ONLY"),
		MaxSize:     v.GetInt("LOG_MAX_SIZE"),
		MaxBackups:  v.GetInt("LOG_MAX_BACKUPS"),
		MaxAge:      v.GetInt("LOG_MAX_AGE"),
		Compress:    v.GetBool("LOG_COMPRESS"),
	}
}
