package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestParseCompression(t *testing.T) {
	cases := map[string]kafka.Compression{
		"snappy": kafka.Snappy,
		"lz4":    kafka.Lz4,
		"zstd":   kafka.Zstd,
		"":       kafka.Gzip,
		"bogus":  kafka.Gzip,
	}
	for in, want := range cases {
		if got := ParseCompression(in); got != want {
			t.Fatalf("ParseCompression(%q) = %v, want %v", in, got, want)
		}
	}
}
