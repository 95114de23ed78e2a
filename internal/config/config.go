// Package config loads edutrack settings from defaults, an optional YAML
// file, a .env file, and EDUTRACK_ prefixed environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. EDUTRACK_HTTP_PORT.
const EnvPrefix = "EDUTRACK"

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config is the full service configuration.
type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Log        LogConfig        `mapstructure:"log"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

// StorageConfig selects and configures the persistence collaborator.
type StorageConfig struct {
	Driver        string `mapstructure:"driver"`
	SQLiteDSN     string `mapstructure:"sqlite_dsn"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix"`
}

// MonitorConfig drives the refresh and absence sweep triggers.
type MonitorConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	RecipientID     string        `mapstructure:"recipient_id"`
	DedupMode       string        `mapstructure:"dedup_mode"`
	DebounceWindow  time.Duration `mapstructure:"debounce_window"`

	// Location is an IANA zone name. Weekday and minute of day are evaluated
	// in it. Empty means the process local zone.
	Location string `mapstructure:"location"`
}

// ExtractionConfig points at the timetable extraction service. An empty
// endpoint disables timetable import.
type ExtractionConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration. path names a config file; when empty an
// edutrack.yaml in the working directory is used if present.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("http.port", 8080)

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite_dsn", "edutrack.db")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", "edutrack:")

	v.SetDefault("monitor.refresh_interval", "5s")
	v.SetDefault("monitor.sweep_interval", "60s")
	v.SetDefault("monitor.recipient_id", "u1")
	v.SetDefault("monitor.dedup_mode", "message")
	v.SetDefault("monitor.debounce_window", "10m")
	v.SetDefault("monitor.location", "")

	v.SetDefault("extraction.endpoint", "")
	v.SetDefault("extraction.timeout", "30s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("edutrack")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every missing or invalid key at once.
func (c Config) Validate() error {
	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 4)

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		invalid = append(invalid, "http.port")
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.SQLiteDSN) == "" {
			missing = append(missing, "storage.sqlite_dsn")
		}
	case DriverRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			missing = append(missing, "storage.redis_addr")
		}
		if c.Storage.RedisDB < 0 {
			invalid = append(invalid, "storage.redis_db")
		}
	case DriverMemory:
	default:
		invalid = append(invalid, "storage.driver")
	}

	if c.Monitor.RefreshInterval <= 0 {
		invalid = append(invalid, "monitor.refresh_interval")
	}
	if c.Monitor.SweepInterval <= 0 {
		invalid = append(invalid, "monitor.sweep_interval")
	}
	if strings.TrimSpace(c.Monitor.RecipientID) == "" {
		missing = append(missing, "monitor.recipient_id")
	}
	if c.Monitor.DedupMode != "message" && c.Monitor.DedupMode != "key" {
		invalid = append(invalid, "monitor.dedup_mode")
	}
	if c.Monitor.DebounceWindow <= 0 {
		invalid = append(invalid, "monitor.debounce_window")
	}
	if _, err := c.Monitor.TimeLocation(); err != nil {
		invalid = append(invalid, "monitor.location")
	}

	if c.Extraction.Timeout <= 0 {
		invalid = append(invalid, "extraction.timeout")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// TimeLocation resolves Location, defaulting to time.Local.
func (m MonitorConfig) TimeLocation() (*time.Location, error) {
	if strings.TrimSpace(m.Location) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(m.Location)
}
