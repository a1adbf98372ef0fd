// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort                = 8080
	defaultServerHost                = "0.0.0.0"
	defaultReadTimeout               = 30 * time.Second
	defaultWriteTimeout              = 30 * time.Second
	defaultDatabasePath              = "./data/videotimeline.db"
	defaultDatabaseConnectionTimeout = 5 * time.Second
	defaultLogLevel                  = "info"
	defaultLogPretty                 = false
	defaultStripPath                 = "./data/strips"
	defaultRowHeight                 = 50.0
	defaultMinThumbnails             = 20
	defaultMaxThumbnails             = 100
	defaultNaiveInterval             = 1.0
	defaultSeekThrottle              = 300 * time.Millisecond
	defaultTickInterval              = 50 * time.Millisecond
	defaultFinishResetDelay          = 500 * time.Millisecond
	defaultSessionGracePeriod        = 5 * time.Minute
	defaultCleanupInterval           = time.Minute
	envPrefix                        = "VTL"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Media    MediaConfig
	Timeline TimelineConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path              string
	ConnectionTimeout time.Duration
	EnableWAL         bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// MediaConfig holds media source configuration
type MediaConfig struct {
	StripPath        string
	SupportedFormats []string
}

// TimelineConfig holds scrub timeline tuning parameters
type TimelineConfig struct {
	// RowHeight is the fixed height of the thumbnail strip in layout units
	RowHeight float64
	// MinThumbnails and MaxThumbnails bound the per-video thumbnail count
	MinThumbnails int
	MaxThumbnails int
	// NaiveInterval is the preferred seconds-per-thumbnail before banding
	NaiveInterval float64
	// SeekThrottle is the minimum target-time distance between issued seeks
	SeekThrottle time.Duration
	// TickInterval is the playback clock cadence
	TickInterval time.Duration
	// FinishResetDelay is how long after playback finishes the timeline rewinds
	FinishResetDelay time.Duration
	// SessionGracePeriod is how long an idle session survives before cleanup
	SessionGracePeriod time.Duration
	// CleanupInterval is how often idle sessions are checked
	CleanupInterval time.Duration
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// Load .env file if present (optional, won't error if missing)
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/videotimeline")

	// Environment variable settings
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	// Database defaults
	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.connectiontimeout", defaultDatabaseConnectionTimeout)
	v.SetDefault("database.enablewal", true)

	// Logging defaults
	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	// Media defaults
	v.SetDefault("media.strippath", defaultStripPath)
	v.SetDefault("media.supportedformats", []string{"mp4", "mkv", "avi", "mov"})

	// Timeline defaults
	v.SetDefault("timeline.rowheight", defaultRowHeight)
	v.SetDefault("timeline.minthumbnails", defaultMinThumbnails)
	v.SetDefault("timeline.maxthumbnails", defaultMaxThumbnails)
	v.SetDefault("timeline.naiveinterval", defaultNaiveInterval)
	v.SetDefault("timeline.seekthrottle", defaultSeekThrottle)
	v.SetDefault("timeline.tickinterval", defaultTickInterval)
	v.SetDefault("timeline.finishresetdelay", defaultFinishResetDelay)
	v.SetDefault("timeline.sessiongraceperiod", defaultSessionGracePeriod)
	v.SetDefault("timeline.cleanupinterval", defaultCleanupInterval)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	// Validate server port
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	// Validate timeout durations
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}
	if c.Database.ConnectionTimeout <= 0 {
		return fmt.Errorf("invalid database connection timeout: %v (must be > 0)", c.Database.ConnectionTimeout)
	}

	// Validate log level
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	// Validate timeline tuning
	if c.Timeline.RowHeight <= 0 {
		return fmt.Errorf("invalid row height: %v (must be > 0)", c.Timeline.RowHeight)
	}
	if c.Timeline.MinThumbnails < 1 {
		return fmt.Errorf("invalid min thumbnails: %d (must be >= 1)", c.Timeline.MinThumbnails)
	}
	if c.Timeline.MaxThumbnails < c.Timeline.MinThumbnails {
		return fmt.Errorf("invalid max thumbnails: %d (must be >= min thumbnails %d)",
			c.Timeline.MaxThumbnails, c.Timeline.MinThumbnails)
	}
	if c.Timeline.NaiveInterval <= 0 {
		return fmt.Errorf("invalid naive interval: %v (must be > 0)", c.Timeline.NaiveInterval)
	}
	if c.Timeline.SeekThrottle < 0 {
		return fmt.Errorf("invalid seek throttle: %v (must be >= 0)", c.Timeline.SeekThrottle)
	}
	if c.Timeline.TickInterval <= 0 {
		return fmt.Errorf("invalid tick interval: %v (must be > 0)", c.Timeline.TickInterval)
	}

	return nil
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
