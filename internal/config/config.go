// Package config provides configuration management using Viper
package config

import (
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// File paths
	StoragePath  string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseMaxOpenConns int `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int `mapstructure:"dbmaxidleconns"`

	// Analytics settings
	RecentEventsLimit int `mapstructure:"recenteventslimit"`

	// Optional GeoLite2 database for country enrichment at ingest time.
	GeoDBPath string `mapstructure:"geodbpath"`

	// Retention for raw events; 0 disables the cleanup job.
	EventsRetentionDays int `mapstructure:"eventsretentiondays"`

	// Seed demo data on startup (development only).
	SeedDemoData bool `mapstructure:"seeddemodata"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		v.SetDefault("appname", "sightline")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelInfo))
		v.SetDefault("storagepath", "storage")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("recenteventslimit", 50)
		v.SetDefault("geodbpath", "")
		v.SetDefault("eventsretentiondays", 0)
		v.SetDefault("seeddemodata", false)

		v.BindEnv("appname", "SIGHTLINE_APP_NAME")
		v.BindEnv("appport", "SIGHTLINE_APP_PORT")
		v.BindEnv("environment", "SIGHTLINE_ENV")
		v.BindEnv("loglevel", "SIGHTLINE_LOG_LEVEL")
		v.BindEnv("storagepath", "SIGHTLINE_STORAGE_PATH")
		v.BindEnv("logsdir", "SIGHTLINE_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "SIGHTLINE_LOGS_MAX_SIZE_MB")
		v.BindEnv("logsmaxbackups", "SIGHTLINE_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "SIGHTLINE_LOGS_MAX_AGE_DAYS")
		v.BindEnv("dbmaxopenconns", "SIGHTLINE_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "SIGHTLINE_DB_MAX_IDLE_CONNS")
		v.BindEnv("recenteventslimit", "SIGHTLINE_RECENT_EVENTS_LIMIT")
		v.BindEnv("geodbpath", "SIGHTLINE_GEODB_PATH")
		v.BindEnv("eventsretentiondays", "SIGHTLINE_EVENTS_RETENTION_DAYS")
		v.BindEnv("seeddemodata", "SIGHTLINE_SEED_DEMO_DATA")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			panic("config: failed to unmarshal: " + err.Error())
		}

		switch cfg.Environment {
		case Test:
			cfg.DatabaseName = filepath.Join(cfg.StoragePath, "sightline_test.db")
		case Production:
			cfg.DatabaseName = filepath.Join(cfg.StoragePath, "sightline.db")
		default:
			cfg.DatabaseName = filepath.Join(cfg.StoragePath, "sightline_dev.db")
		}
	})

	return cfg
}

// IsTest reports whether the app runs under the test environment.
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetMaxOpenConns returns the configured max open connections, with a
// single-writer default suited to SQLite.
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns <= 0 {
		return 1
	}
	return c.DatabaseMaxOpenConns
}

// GetMaxIdleConns returns the configured max idle connections.
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns <= 0 {
		return 1
	}
	return c.DatabaseMaxIdleConns
}
