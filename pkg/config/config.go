package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"UKPredict/pkg/util"

	"gopkg.in/yaml.v3"
)

// Service names understood by the binaries.
const (
	ServiceHousing     = "housing"
	ServiceElectricity = "electricity"
	ServiceRecorder    = "recorder"
)

type Config struct {
	Environment string `yaml:"environment"`
	Service     struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"service"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowThreshold   time.Duration `yaml:"slow_threshold"`
		CORS            bool          `yaml:"cors"`
		RateLimit       struct {
			Enabled      bool    `yaml:"enabled"`
			Capacity     float64 `yaml:"capacity"`
			RefillPerSec float64 `yaml:"refill_per_sec"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Log struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		Output    string `yaml:"output"`
		Collector struct {
			Enabled        bool          `yaml:"enabled"`
			Topic          string        `yaml:"topic"`
			Interval       time.Duration `yaml:"interval"`
			CountThreshold int           `yaml:"count_threshold"`
		} `yaml:"collector"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Model struct {
		// Backend is "native" (tree-ensemble JSON dump evaluated in process)
		// or "sidecar" (opaque pickle served by a python child process).
		Backend string   `yaml:"backend"`
		Paths   []string `yaml:"paths"`
		Sidecar struct {
			Python         string        `yaml:"python"`
			Host           string        `yaml:"host"`
			Port           int           `yaml:"port"`
			StartupTimeout time.Duration `yaml:"startup_timeout"`
			PollInterval   time.Duration `yaml:"poll_interval"`
			RequestTimeout time.Duration `yaml:"request_timeout"`
		} `yaml:"sidecar"`
	} `yaml:"model"`
	History struct {
		// Source is "file", "clickhouse" or "none".
		Source      string        `yaml:"source"`
		Paths       []string      `yaml:"paths"`
		Table       string        `yaml:"table"`
		LoadTimeout time.Duration `yaml:"load_timeout"`
	} `yaml:"history"`
	Cache struct {
		// Backend is "none", "memory", "redis" or "layered".
		Backend       string        `yaml:"backend"`
		TTL           time.Duration `yaml:"ttl"`
		MemoryMaxSize int           `yaml:"memory_max_size"`
		Redis         struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Events struct {
		Enabled bool          `yaml:"enabled"`
		Topic   string        `yaml:"topic"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"events"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Recorder struct {
		Table string `yaml:"table"`
	} `yaml:"recorder"`
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

	if v := os.Getenv("MODEL_PATH"); v != "" {
		c.Model.Paths = append([]string{v}, c.Model.Paths...)
	}
	if v := os.Getenv("HISTORY_PATH"); v != "" {
		c.History.Paths = append([]string{v}, c.History.Paths...)
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Service.Version == "" {
		c.Service.Version = "1.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Model.Backend == "" {
		c.Model.Backend = "native"
	}
	if c.History.Source == "" {
		c.History.Source = "none"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "none"
	}
	if c.Recorder.Table == "" {
		c.Recorder.Table = "predictions"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Service.Name {
	case ServiceHousing, ServiceElectricity, ServiceRecorder:
	default:
		return fmt.Errorf("service.name must be 'housing', 'electricity' or 'recorder', got '%s'", c.Service.Name)
	}

	if c.Service.Name != ServiceRecorder {
		if c.Model.Backend != "native" && c.Model.Backend != "sidecar" {
			return fmt.Errorf("model.backend must be 'native' or 'sidecar', got '%s'", c.Model.Backend)
		}
		if len(c.Model.Paths) == 0 {
			return fmt.Errorf("model.paths cannot be empty")
		}
	}

	switch c.History.Source {
	case "none", "file":
	case "clickhouse":
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("history.source 'clickhouse' requires clickhouse.enabled")
		}
		if c.History.Table == "" {
			return fmt.Errorf("history.table is required for history.source 'clickhouse'")
		}
	default:
		return fmt.Errorf("history.source must be 'none', 'file' or 'clickhouse', got '%s'", c.History.Source)
	}

	switch c.Cache.Backend {
	case "none", "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'none', 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}

	if c.Events.Enabled || c.Service.Name == ServiceRecorder {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when events are enabled")
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("events.topic is required")
		}
	}
	if c.Service.Name == ServiceRecorder && !c.ClickHouse.Enabled {
		return fmt.Errorf("recorder requires clickhouse.enabled")
	}
	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.Capacity <= 0 || c.Server.RateLimit.RefillPerSec <= 0) {
		return fmt.Errorf("server.rate_limit capacity and refill_per_sec must be positive")
	}
	return nil
}
