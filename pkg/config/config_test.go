package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
environment: production
server:
  port: 9090
dashboard:
  prediction_url: http://predictor:5000/predict
  request_timeout: 15s
cache:
  type: redis
  redis:
    addr: redis:6379
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9090 || c.Cache.Type != "redis" || c.Cache.Redis.Addr != "redis:6379" {
		t.Fatalf("unexpected values: %+v", c)
	}
	if c.Dashboard.RequestTimeout != 15*time.Second {
		t.Fatalf("request timeout = %v", c.Dashboard.RequestTimeout)
	}
	if c.Predictor.TrainRatio != 0.8 || c.Predictor.Start != "2020-01-01" {
		t.Fatalf("defaults lost: %+v", c.Predictor)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PREDICTION_URL", "http://env/predict")
	t.Setenv("RECORDER_TYPE", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Dashboard.PredictionURL != "http://env/predict" {
		t.Fatalf("url = %s", c.Dashboard.PredictionURL)
	}
	if len(c.Recorder.Kafka.Brokers) != 2 {
		t.Fatalf("brokers = %v", c.Recorder.Kafka.Brokers)
	}
}

func TestValidateRejectsUnknownRecorder(t *testing.T) {
	c := Default()
	c.Recorder.Type = "postgres"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error")
	}

	c = Default()
	c.Recorder.Type = "kafka"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for kafka without brokers")
	}
}

func TestValidateRejectsBadWindow(t *testing.T) {
	c := Default()
	c.Predictor.Start = "2020/01/01"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for malformed start")
	}

	c = Default()
	c.Predictor.Start, c.Predictor.End = "2024-12-31", "2020-01-01"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for reversed window")
	}
}

func TestValidateQueue(t *testing.T) {
	c := Default()
	c.Recorder.Queue.Enabled = true
	if err := c.Validate(); err != nil {
		t.Fatalf("default queue settings should validate: %v", err)
	}

	c.Recorder.Queue.Workers = 0
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for zero workers")
	}
}

func TestValidateTrustedProxies(t *testing.T) {
	c := Default()
	c.Server.TrustedProxies = []string{"10.0.0.0/8", "192.168.1.0/24"}
	if err := c.Validate(); err != nil {
		t.Fatalf("valid proxies rejected: %v", err)
	}

	c.Server.TrustedProxies = []string{"10.0.0.1"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for bare address")
	}
}

func TestDefaultServesDashboardInProcess(t *testing.T) {
	c := Default()
	if c.Dashboard.PredictionURL != "" {
		t.Fatalf("prediction url = %q", c.Dashboard.PredictionURL)
	}
	if c.Cache.CleanupInterval <= 0 || c.Cache.Redis.PoolSize <= 0 {
		t.Fatalf("cache defaults missing: %+v", c.Cache)
	}
}
