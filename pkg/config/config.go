package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"TrendLens/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		TrustedProxies  []string      `yaml:"trusted_proxies"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Dashboard struct {
		PredictionURL  string        `yaml:"prediction_url"` // empty: served in-process
		RequestTimeout time.Duration `yaml:"request_timeout"`
		ChartWidth     int           `yaml:"chart_width"`
		ChartHeight    int           `yaml:"chart_height"`
		SessionTTL     time.Duration `yaml:"session_ttl"`
	} `yaml:"dashboard"`
	Predictor struct {
		Start      string  `yaml:"start"`
		End        string  `yaml:"end"`
		TrainRatio float64 `yaml:"train_ratio"`
		MinPoints  int     `yaml:"min_points"`
		RateLimit  struct {
			Burst     float64 `yaml:"burst"`
			PerSecond float64 `yaml:"per_second"`
		} `yaml:"rate_limit"`
	} `yaml:"predictor"`
	Housekeeping struct {
		Cron        string        `yaml:"cron"` // six fields, seconds first
		LimiterIdle time.Duration `yaml:"limiter_idle"`
	} `yaml:"housekeeping"`
	Yahoo struct {
		BaseURL string        `yaml:"base_url"`
		Proxy   string        `yaml:"proxy"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"yahoo"`
	Cache struct {
		Type  string        `yaml:"type"` // memory | redis | none
		TTL   time.Duration `yaml:"ttl"`
		Size            int           `yaml:"size"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
		Redis           struct {
			Addr         string        `yaml:"addr"`
			Password     string        `yaml:"password"`
			DB           int           `yaml:"db"`
			Prefix       string        `yaml:"prefix"`
			PoolSize     int           `yaml:"pool_size"`
			MinIdleConns int           `yaml:"min_idle_conns"`
			PoolTimeout  time.Duration `yaml:"pool_timeout"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Recorder struct {
		Type   string `yaml:"type"` // none | sqlite | clickhouse | kafka
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		ClickHouse struct {
			Host        string        `yaml:"host"`
			Port        int           `yaml:"port"`
			Database    string        `yaml:"database"`
			User        string        `yaml:"user"`
			Password    string        `yaml:"password"`
			UseHTTP     bool          `yaml:"use_http"`
			DialTimeout time.Duration `yaml:"dial_timeout"`
			ReadTimeout time.Duration `yaml:"read_timeout"`
		} `yaml:"clickhouse"`
		Kafka struct {
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic"`
			RequiredAcks int           `yaml:"required_acks"`
			Compression  string        `yaml:"compression"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"kafka"`
		Queue struct {
			Enabled       bool          `yaml:"enabled"`
			RedisAddr     string        `yaml:"redis_addr"`
			Prefix        string        `yaml:"prefix"`
			Workers       int           `yaml:"workers"`
			RetryLimit    int           `yaml:"retry_limit"`
			RetryDelay    time.Duration `yaml:"retry_delay"`
			HandleTimeout time.Duration `yaml:"handle_timeout"`
		} `yaml:"queue"`
	} `yaml:"recorder"`
}

// Default returns a configuration that runs without external services.
func Default() *Config {
	c := &Config{Environment: "development"}
	c.Server.Host = "0.0.0.0"
	c.Server.Port = 8080
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 60 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.Output = "stdout"
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	c.Dashboard.ChartWidth = 1024
	c.Dashboard.ChartHeight = 512
	c.Dashboard.SessionTTL = 30 * time.Minute
	c.Predictor.Start = "2020-01-01"
	c.Predictor.End = "2024-12-31"
	c.Predictor.TrainRatio = 0.8
	c.Predictor.MinPoints = 20
	c.Predictor.RateLimit.Burst = 5
	c.Predictor.RateLimit.PerSecond = 1
	c.Housekeeping.Cron = "0 */5 * * * *"
	c.Housekeeping.LimiterIdle = 10 * time.Minute
	c.Yahoo.BaseURL = "https://query1.finance.yahoo.com"
	c.Yahoo.Timeout = 30 * time.Second
	c.Cache.Type = "memory"
	c.Cache.TTL = 6 * time.Hour
	c.Cache.Size = 256
	c.Cache.CleanupInterval = 5 * time.Minute
	c.Cache.Redis.Addr = "localhost:6379"
	c.Cache.Redis.Prefix = "trendlens"
	c.Cache.Redis.PoolSize = 10
	c.Cache.Redis.MinIdleConns = 2
	c.Cache.Redis.PoolTimeout = 30 * time.Second
	c.Recorder.Type = "none"
	c.Recorder.SQLite.Path = "trendlens.db"
	c.Recorder.ClickHouse.Port = 9000
	c.Recorder.ClickHouse.Database = "trendlens"
	c.Recorder.Kafka.Topic = "trendlens.predictions"
	c.Recorder.Kafka.RequiredAcks = -1
	c.Recorder.Kafka.Compression = "gzip"
	c.Recorder.Kafka.WriteTimeout = 10 * time.Second
	c.Recorder.Queue.RedisAddr = "localhost:6379"
	c.Recorder.Queue.Prefix = "trendlens:queue"
	c.Recorder.Queue.Workers = 2
	c.Recorder.Queue.RetryLimit = 3
	c.Recorder.Queue.RetryDelay = 10 * time.Second
	c.Recorder.Queue.HandleTimeout = 30 * time.Second
	return c
}

// Load reads a YAML configuration file on top of Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML (Default when path is empty or missing)
// and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	var c *Config
	if path == "" {
		c = Default()
	} else if _, err := os.Stat(path); os.IsNotExist(err) {
		c = Default()
	} else {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		c = loaded
	}

	if v := os.Getenv("PREDICTION_URL"); v != "" {
		c.Dashboard.PredictionURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CACHE_TYPE"); v != "" {
		c.Cache.Type = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("RECORDER_TYPE"); v != "" {
		c.Recorder.Type = v
	}
	if v := os.Getenv("RECORDER_QUEUE_REDIS_ADDR"); v != "" {
		c.Recorder.Queue.RedisAddr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Recorder.Kafka.Brokers = strings.Split(v, ",")
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	for _, cidr := range c.Server.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("server.trusted_proxies: invalid CIDR '%s'", cidr)
		}
	}
	if c.Predictor.TrainRatio <= 0 || c.Predictor.TrainRatio >= 1 {
		return fmt.Errorf("predictor.train_ratio must be in (0, 1), got %v", c.Predictor.TrainRatio)
	}
	if c.Predictor.MinPoints < 2 {
		return fmt.Errorf("predictor.min_points must be at least 2, got %d", c.Predictor.MinPoints)
	}
	start, ok := util.ParseDate(c.Predictor.Start)
	if !ok {
		return fmt.Errorf("predictor.start must be YYYY-MM-DD, got '%s'", c.Predictor.Start)
	}
	end, ok := util.ParseDate(c.Predictor.End)
	if !ok {
		return fmt.Errorf("predictor.end must be YYYY-MM-DD, got '%s'", c.Predictor.End)
	}
	if !start.Before(end) {
		return fmt.Errorf("predictor.start must be before predictor.end")
	}
	switch c.Cache.Type {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("cache.type must be 'memory', 'redis' or 'none', got '%s'", c.Cache.Type)
	}
	switch c.Recorder.Type {
	case "none", "sqlite", "clickhouse":
	case "kafka":
		if len(c.Recorder.Kafka.Brokers) == 0 {
			return fmt.Errorf("recorder.kafka.brokers cannot be empty")
		}
	default:
		return fmt.Errorf("recorder.type must be 'none', 'sqlite', 'clickhouse' or 'kafka', got '%s'", c.Recorder.Type)
	}
	if c.Recorder.Queue.Enabled {
		if c.Recorder.Queue.RedisAddr == "" {
			return fmt.Errorf("recorder.queue.redis_addr is required when the queue is enabled")
		}
		if c.Recorder.Queue.Workers < 1 {
			return fmt.Errorf("recorder.queue.workers must be at least 1, got %d", c.Recorder.Queue.Workers)
		}
	}
	return nil
}
