// Package config loads service configuration from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendMemory     = "memory"
	BackendFile       = "file"
	BackendPostgres   = "postgres"
	BackendRedis      = "redis"
	BackendClickhouse = "clickhouse"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BETLEDGER_"

type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Recovery RecoveryConfig `yaml:"recovery"`
	Log      LogConfig      `yaml:"log"`
}

type StorageConfig struct {
	Backend       string `yaml:"backend"`
	FilePath      string `yaml:"file_path"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	RedisURL      string `yaml:"redis_url"`
	RedisPrefix   string `yaml:"redis_prefix"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
	Migrate       bool   `yaml:"migrate"` // apply embedded migrations on startup
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type RecoveryConfig struct {
	DefaultBetFraction float64 `yaml:"default_bet_fraction"` // share of the loss staked when no bet is given
	MaxSteps           int     `yaml:"max_steps"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:  BackendFile,
			FilePath: "data/ledger.json",
			Migrate:  true,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Recovery: RecoveryConfig{
			DefaultBetFraction: 0.10,
			MaxSteps:           10000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configPath over the defaults. An empty path returns the defaults.
func Load(configPath string) (*Config, error) {
	config := Default()
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides fields from BETLEDGER_* variables returned by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	str("STORAGE_BACKEND", &c.Storage.Backend)
	str("FILE_PATH", &c.Storage.FilePath)
	str("POSTGRES_DSN", &c.Storage.PostgresDSN)
	str("REDIS_URL", &c.Storage.RedisURL)
	str("REDIS_PREFIX", &c.Storage.RedisPrefix)
	str("CLICKHOUSE_DSN", &c.Storage.ClickhouseDSN)
	str("ADDR", &c.Server.Addr)
	str("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup(EnvPrefix + "ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "MIGRATE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMIGRATE: %w", EnvPrefix, err)
		}
		c.Storage.Migrate = b
	}
	if v, ok := lookup(EnvPrefix + "LOG_JSON"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sLOG_JSON: %w", EnvPrefix, err)
		}
		c.Log.JSON = b
	}
	if v, ok := lookup(EnvPrefix + "SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSHUTDOWN_TIMEOUT: %w", EnvPrefix, err)
		}
		c.Server.ShutdownTimeout = d
	}
	if v, ok := lookup(EnvPrefix + "RECOVERY_BET_FRACTION"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRECOVERY_BET_FRACTION: %w", EnvPrefix, err)
		}
		c.Recovery.DefaultBetFraction = f
	}
	if v, ok := lookup(EnvPrefix + "RECOVERY_MAX_STEPS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRECOVERY_MAX_STEPS: %w", EnvPrefix, err)
		}
		c.Recovery.MaxSteps = n
	}
	return nil
}

// Validate checks the backend selection and its required settings.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.FilePath == "" {
			return fmt.Errorf("storage.file_path is required for the %s backend", BackendFile)
		}
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the %s backend", BackendPostgres)
		}
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage.redis_url is required for the %s backend", BackendRedis)
		}
	case BackendClickhouse:
		if c.Storage.ClickhouseDSN == "" {
			return fmt.Errorf("storage.clickhouse_dsn is required for the %s backend", BackendClickhouse)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Recovery.DefaultBetFraction <= 0 || c.Recovery.DefaultBetFraction > 1 {
		return fmt.Errorf("recovery.default_bet_fraction must be in (0, 1], got %v", c.Recovery.DefaultBetFraction)
	}
	if c.Recovery.MaxSteps <= 0 {
		return fmt.Errorf("recovery.max_steps must be positive, got %d", c.Recovery.MaxSteps)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
