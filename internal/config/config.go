package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrDatabaseURLMissing = errors.New("DATABASE_URL is not set in environment or .env file")

// Config holds all configuration for the command line tools.
type Config struct {
	AppEnv      string
	LogLevel    string
	DatabaseURL string
	MetricsAddr string
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}

// RequireDatabase fails when no database is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return ErrDatabaseURLMissing
	}
	return nil
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory if one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	bindings := map[string]string{
		"app.env":      "APP_ENV",
		"log.level":    "LOG_LEVEL",
		"database.url": "DATABASE_URL",
		"metrics.addr": "METRICS_ADDR",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	v.SetDefault("app.env", "dev")
	v.SetDefault("log.level", "info")

	return &Config{
		AppEnv:      v.GetString("app.env"),
		LogLevel:    v.GetString("log.level"),
		DatabaseURL: v.GetString("database.url"),
		MetricsAddr: v.GetString("metrics.addr"),
	}, nil
}
