package util

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2024-01-02")
	if !ok {
		t.Fatalf("expected ok")
	}
	if FormatDate(got) != "2024-01-02" {
		t.Fatalf("unexpected time %v", got)
	}
	if _, ok := ParseDate("01/02/2024"); ok {
		t.Fatalf("expected failure for wrong layout")
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := ParseDateDefault("", def); !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestDayOrdinalIsDailyStep(t *testing.T) {
	a := time.Date(2024, 1, 1, 21, 30, 0, 0, time.UTC)
	b := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	if DayOrdinal(b)-DayOrdinal(a) != 1 {
		t.Fatalf("expected one day apart: %v %v", DayOrdinal(a), DayOrdinal(b))
	}
}

func TestNormalizeTicker(t *testing.T) {
	if got := NormalizeTicker("  aapl \t"); got != "AAPL" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeTicker("   "); got != "" {
		t.Fatalf("got %q", got)
	}
}
