package internal

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Storage drivers understood by the factory
const (
	StorageDriverSQLite = "sqlite"
	StorageDriverCSV    = "csv"
	StorageDriverMemory = "memory"
)

// Config represents the ledger configuration
type Config struct {
	// Storage configuration for accounts, ledgers and the bank log
	Storage struct {
		Driver string `mapstructure:"driver"` // sqlite, csv or memory
		Path   string `mapstructure:"path"`   // SQLite file or CSV directory
	} `mapstructure:"storage"`

	// Bank identity reported by the bank details command
	Bank struct {
		Name   string `mapstructure:"name"`
		Number int64  `mapstructure:"number"`
	} `mapstructure:"bank"`

	// NATS configuration for ledger event publishing
	NATS struct {
		Enabled  bool   `mapstructure:"enabled"`
		URL      string `mapstructure:"url"`
		Subject  string `mapstructure:"subject"` // subject prefix, e.g. "firedragon"
		Stream   string `mapstructure:"stream"`  // JetStream stream; empty publishes on core NATS
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		Token    string `mapstructure:"token"`
	} `mapstructure:"nats"`

	// Log configuration
	Log struct {
		Level string `mapstructure:"level"`
		Dir   string `mapstructure:"dir"` // empty logs to stderr only
	} `mapstructure:"log"`

	// Debug mode
	Debug bool `mapstructure:"debug"`
}

// LoadConfig loads the configuration from various sources
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaultConfig(v)

	// Read configuration from file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// Look for config in the current directory and in the user config folder
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("json")
	}

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if the config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Override with environment variables prefixed with FIREDRAGON_
	v.SetEnvPrefix("FIREDRAGON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Parse the configuration
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the values viper could not type-check
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverSQLite, StorageDriverCSV:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s driver", c.Storage.Driver)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats is enabled")
	}

	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// Settings flattens the configuration into dotted keys, masking secrets
func (c *Config) Settings() map[string]interface{} {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}

	return map[string]interface{}{
		"storage.driver": c.Storage.Driver,
		"storage.path":   c.Storage.Path,
		"bank.name":      c.Bank.Name,
		"bank.number":    c.Bank.Number,
		"nats.enabled":   c.NATS.Enabled,
		"nats.url":       c.NATS.URL,
		"nats.subject":   c.NATS.Subject,
		"nats.stream":    c.NATS.Stream,
		"nats.username":  c.NATS.Username,
		"nats.password":  mask(c.NATS.Password),
		"nats.token":     mask(c.NATS.Token),
		"log.level":      c.Log.Level,
		"log.dir":        c.Log.Dir,
		"debug":          c.Debug,
	}
}

// setDefaultConfig sets default configuration values
func setDefaultConfig(v *viper.Viper) {
	// Storage defaults
	v.SetDefault("storage.driver", StorageDriverSQLite)
	v.SetDefault("storage.path", filepath.Join(".", "data", "ledger.db"))

	// Bank defaults
	v.SetDefault("bank.name", "Firedragon Bank")
	v.SetDefault("bank.number", 1)

	// NATS defaults
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("nats.subject", "firedragon")
	v.SetDefault("nats.stream", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "")

	// Debug mode default
	v.SetDefault("debug", false)
}
