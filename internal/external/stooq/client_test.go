package stooq

import (
	"math"
	"testing"
)

func TestParseCSV(t *testing.T) {
	body := []byte(`Date,Open,High,Low,Close,Volume
2026-01-02,100.0,105.0,99.0,104.0,12345
2026-01-05,104.5,106.0,103.0,105.5,23456
`)
	bars, err := parseCSV(body)
	if err != nil {
		t.Fatalf("parseCSV failed: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if bars[0].Close != 104.0 || bars[0].Volume != 12345 {
		t.Errorf("bar[0] = %+v", bars[0])
	}
	if bars[1].Date.Format("2006-01-02") != "2026-01-05" {
		t.Errorf("bar[1] date = %v", bars[1].Date)
	}
}

func TestParseCSVNoVolumeColumn(t *testing.T) {
	body := []byte(`Date,Open,High,Low,Close
2026-01-02,100.0,105.0,99.0,104.0
`)
	bars, err := parseCSV(body)
	if err != nil {
		t.Fatalf("parseCSV failed: %v", err)
	}
	if !math.IsNaN(bars[0].Volume) {
		t.Errorf("missing volume should be NaN, got %v", bars[0].Volume)
	}
}

func TestParseCSVRejectsErrorBody(t *testing.T) {
	if _, err := parseCSV([]byte("No data\nsomething else\n")); err == nil {
		t.Error("expected error for non-CSV response")
	}
}
