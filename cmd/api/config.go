// cmd/api/config.go
// This file loads serverConfig from command-line flags, LIBRARY_* environment
// variables and an optional config file, in that order of precedence.
package main

import (
	"fmt"
	"strings"
	"time"

	playground "github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables, e.g. LIBRARY_DB_DSN.
const envPrefix = "LIBRARY"

// serverConfig holds all the values that can be tweaked at startup.
type serverConfig struct {
	Port        int           `mapstructure:"port"      validate:"gt=0,lt=65536"`
	Environment string        `mapstructure:"env"       validate:"oneof=development staging production"`
	LogLevel    string        `mapstructure:"log-level" validate:"oneof=debug info warn error"`
	DB          dbConfig      `mapstructure:",squash"`
	Limiter     limiterConfig `mapstructure:",squash"`
}

type dbConfig struct {
	Driver       string        `mapstructure:"db-driver"         validate:"oneof=sqlite postgres pgx"`
	DSN          string        `mapstructure:"db-dsn"            validate:"required"`
	MaxOpenConns int           `mapstructure:"db-max-open-conns" validate:"gte=0"`
	MaxIdleConns int           `mapstructure:"db-max-idle-conns" validate:"gte=0"`
	MaxIdleTime  time.Duration `mapstructure:"db-max-idle-time"  validate:"gte=0"`
}

type limiterConfig struct {
	Enabled bool    `mapstructure:"limiter-enabled"`
	RPS     float64 `mapstructure:"limiter-rps"   validate:"gt=0"`
	Burst   int     `mapstructure:"limiter-burst" validate:"gt=0"`
}

// loadConfig parses args (without the program name) and returns a validated configuration.
func loadConfig(args []string) (serverConfig, error) {
	flags := pflag.NewFlagSet("api", pflag.ContinueOnError)

	flags.String("config", "", "Path to an optional config file (yaml, json or toml)")
	flags.Int("port", 4000, "Server port")
	flags.String("env", "development", "Environment (development|staging|production)")
	flags.String("log-level", "info", "Log level (debug|info|warn|error)")

	flags.String("db-driver", "sqlite", "Database driver (sqlite|postgres|pgx)")
	flags.String("db-dsn", "library.db", "SQLite file path or PostgreSQL DSN")
	flags.Int("db-max-open-conns", 25, "PostgreSQL max open connections")
	flags.Int("db-max-idle-conns", 25, "PostgreSQL max idle connections")
	flags.Duration("db-max-idle-time", 15*time.Minute, "Max connection idle time")

	flags.Bool("limiter-enabled", true, "Enable the per-IP rate limiter")
	flags.Float64("limiter-rps", 2, "Rate limiter maximum requests per second")
	flags.Int("limiter-burst", 4, "Rate limiter maximum burst")

	if err := flags.Parse(args); err != nil {
		return serverConfig{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return serverConfig{}, fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return serverConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg serverConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return serverConfig{}, fmt.Errorf("decode config: %w", err)
	}

	if err := playground.New().Struct(cfg); err != nil {
		return serverConfig{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
