// Package config loads runtime configuration from config.yaml and
// ORDERKIT_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"orderkit/internal/repository"
)

type Config struct {
	DB    DBConfig    `mapstructure:"db"`
	Fetch FetchConfig `mapstructure:"fetch"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

type FetchConfig struct {
	// Strategy names the default materialization for order searches:
	// lazy, join-base or join-items.
	Strategy  string `mapstructure:"strategy"`
	BatchSize int    `mapstructure:"batch_size"`
	Limit     int    `mapstructure:"limit"`
}

// LoadConfig loads configuration from config.yaml and environment variables.
// A missing config file is not an error; defaults and the environment cover
// everything.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME/.orderkit/")
	v.AddConfigPath("/etc/orderkit/")

	v.SetEnvPrefix("ORDERKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.database", "orderkit")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.sslmode", "prefer")
	v.SetDefault("db.max_conns", 10)
	v.SetDefault("db.min_conns", 2)
	v.SetDefault("fetch.strategy", "join-base")
	v.SetDefault("fetch.batch_size", repository.DefaultBatchSize)
	v.SetDefault("fetch.limit", repository.DefaultLimit)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if _, err := repository.ParseFetchStrategy(config.Fetch.Strategy); err != nil {
		return nil, err
	}

	return &config, nil
}
