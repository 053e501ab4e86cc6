package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the settings shared by the HTTP server and the CLI.
type Config struct {
	AppPort       string
	DataFile      string
	LogFile       string
	Capacity      int
	StorageDriver string
	DatabaseDSN   string
	RabbitMQURL   string
	RabbitMQQueue string
	AuthSecret    string
	TokenTTL      time.Duration
	LogLevel      string
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATA_FILE", "data.txt")
	v.SetDefault("LOG_FILE", "inventory.txt")
	v.SetDefault("INVENTORY_CAPACITY", 1000)
	v.SetDefault("STORAGE_DRIVER", DriverFile)
	v.SetDefault("DATABASE_DSN", "gudang.db")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "inventory_changes")
	v.SetDefault("AUTH_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads configuration from the environment and, when GUDANG_CONFIG names
// one, from a config file. Environment variables win over the file.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("GUDANG_CONFIG"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		AppPort:       v.GetString("APP_PORT"),
		DataFile:      v.GetString("DATA_FILE"),
		LogFile:       v.GetString("LOG_FILE"),
		Capacity:      v.GetInt("INVENTORY_CAPACITY"),
		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		RabbitMQQueue: v.GetString("RABBITMQ_QUEUE"),
		AuthSecret:    v.GetString("AUTH_SECRET"),
		TokenTTL:      v.GetDuration("TOKEN_TTL"),
		LogLevel:      v.GetString("LOG_LEVEL"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the store cannot run with.
func (c *Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("INVENTORY_CAPACITY must be positive, got %d", c.Capacity)
	}
	switch c.StorageDriver {
	case DriverFile:
		if c.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required for the file storage driver")
		}
	case DriverSQLite, DriverPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the %s storage driver", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.LogFile == "" {
		return fmt.Errorf("LOG_FILE is required")
	}
	return nil
}
