package config

import (
	"fmt"
	"os"
	"time"

	"MarketLens/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Ingest struct {
		Workers      int   `yaml:"workers"`
		MaxFiles     int   `yaml:"max_files"`
		MaxFileBytes int64 `yaml:"max_file_bytes"`
		RateLimit    struct {
			Capacity     float64 `yaml:"capacity"`
			RefillPerSec float64 `yaml:"refill_per_sec"`
		} `yaml:"rate_limit"`
	} `yaml:"ingest"`
	Cache struct {
		Backend string        `yaml:"backend"` // memory, redis, or layered
		ViewTTL time.Duration `yaml:"view_ttl"`
		Memory  struct {
			MaxSize int `yaml:"max_size"`
		} `yaml:"memory"`
		Redis struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.Server.Port = util.ParseIntDefault(os.Getenv("PORT"), c.Server.Port)
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	c.Cache.Redis.Port = util.ParseIntDefault(os.Getenv("REDIS_PORT"), c.Cache.Redis.Port)
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	c.Ingest.RateLimit.Capacity = util.ParseFloatDefault(os.Getenv("INGEST_RATE_CAPACITY"), c.Ingest.RateLimit.Capacity)
	c.Ingest.RateLimit.RefillPerSec = util.ParseFloatDefault(os.Getenv("INGEST_RATE_REFILL"), c.Ingest.RateLimit.RefillPerSec)

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Ingest.Workers == 0 {
		c.Ingest.Workers = 4
	}
	if c.Ingest.MaxFiles == 0 {
		c.Ingest.MaxFiles = 16
	}
	if c.Ingest.MaxFileBytes == 0 {
		c.Ingest.MaxFileBytes = 64 << 20
	}
	if c.Ingest.RateLimit.Capacity == 0 {
		c.Ingest.RateLimit.Capacity = 5
	}
	if c.Ingest.RateLimit.RefillPerSec == 0 {
		c.Ingest.RateLimit.RefillPerSec = 1
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.ViewTTL == 0 {
		c.Cache.ViewTTL = 5 * time.Minute
	}
	if c.Cache.Memory.MaxSize == 0 {
		c.Cache.Memory.MaxSize = 1000
	}
	if c.Cache.Redis.Host == "" {
		c.Cache.Redis.Host = "localhost"
	}
	if c.Cache.Redis.Port == 0 {
		c.Cache.Redis.Port = 6379
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "marketlens"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis', or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.Ingest.Workers < 1 {
		return fmt.Errorf("ingest.workers must be positive")
	}
	if c.Ingest.MaxFiles < 1 {
		return fmt.Errorf("ingest.max_files must be positive")
	}
	return nil
}
