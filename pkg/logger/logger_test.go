package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestNewWriterEmitsTypedFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "debug")

	l.Info("prediction served", String("ticker", "AAPL"), Int("points", 3), Float64("rmse", 1.25), Bool("cached", true))

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["message"] != "prediction served" || rec["ticker"] != "AAPL" {
		t.Fatalf("unexpected record %v", rec)
	}
	if rec["points"].(float64) != 3 || rec["cached"] != true {
		t.Fatalf("unexpected typed fields %v", rec)
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "info")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug event written at info level: %s", buf.String())
	}
	l.Error("shown", Error(errors.New("boom")))
	if !bytes.Contains(buf.Bytes(), []byte("boom")) {
		t.Fatalf("error field missing: %s", buf.String())
	}
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "info").With(String("session", "s-1"))
	l.Warn("busy")
	if !bytes.Contains(buf.Bytes(), []byte(`"session":"s-1"`)) {
		t.Fatalf("child field missing: %s", buf.String())
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestStringsJoinsValues(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "info")
	l.Info("started", Strings("trusted_proxies", []string{"10.0.0.0/8", "172.16.0.0/12"}))

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["trusted_proxies"] != "10.0.0.0/8, 172.16.0.0/12" {
		t.Fatalf("unexpected field %v", rec["trusted_proxies"])
	}
}
