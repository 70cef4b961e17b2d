package dataset

import (
	"math"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNewSeriesSortsAndRejectsDuplicates(t *testing.T) {
	keys := []Key{
		{Date: day(2), Code: "B"},
		{Date: day(1), Code: "A"},
		{Date: day(2), Code: "A"},
	}
	s, err := NewSeries("f", keys, []float64{3, 1, 2})
	if err != nil {
		t.Fatalf("NewSeries failed: %v", err)
	}

	want := []Key{
		{Date: day(1), Code: "A"},
		{Date: day(2), Code: "A"},
		{Date: day(2), Code: "B"},
	}
	for i, k := range s.Keys() {
		if !k.Equal(want[i]) {
			t.Errorf("key %d = %v, want %v", i, k, want[i])
		}
	}
	if got := s.Values(); got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("values not permuted with keys: %v", got)
	}

	dup := append(keys, Key{Date: day(1), Code: "A"})
	if _, err := NewSeries("f", dup, []float64{1, 2, 3, 4}); err == nil {
		t.Error("expected duplicate key error")
	}
}

func TestAlignDropsMissingAndNonOverlapping(t *testing.T) {
	a, _ := NewSeries("a", []Key{
		{Date: day(1), Code: "A"},
		{Date: day(1), Code: "B"},
		{Date: day(1), Code: "C"},
		{Date: day(2), Code: "A"},
	}, []float64{1, math.NaN(), 3, 4})

	b, _ := NewSeries("b", []Key{
		{Date: day(1), Code: "A"},
		{Date: day(1), Code: "B"},
		{Date: day(1), Code: "C"},
		{Date: day(3), Code: "A"},
	}, []float64{10, 20, math.NaN(), 40})

	af, bf := Align(a, b)
	if af.Len() != 1 || bf.Len() != 1 {
		t.Fatalf("aligned length = %d, want 1", af.Len())
	}
	if !af.Key(0).Equal(Key{Date: day(1), Code: "A"}) {
		t.Errorf("aligned key = %v", af.Key(0))
	}
	if af.Value(0) != 1 || bf.Value(0) != 10 {
		t.Errorf("aligned values = %v, %v", af.Value(0), bf.Value(0))
	}
}

func TestAlignEmptyIntersection(t *testing.T) {
	a, _ := NewSeries("a", []Key{{Date: day(1), Code: "A"}}, []float64{1})
	b, _ := NewSeries("b", []Key{{Date: day(2), Code: "A"}}, []float64{2})

	af, _ := Align(a, b)
	if af.Len() != 0 {
		t.Errorf("expected empty intersection, got %d rows", af.Len())
	}
}

func TestDateRuns(t *testing.T) {
	s, _ := NewSeries("f", []Key{
		{Date: day(1), Code: "A"},
		{Date: day(1), Code: "B"},
		{Date: day(2), Code: "A"},
		{Date: day(3), Code: "A"},
		{Date: day(3), Code: "B"},
		{Date: day(3), Code: "C"},
	}, []float64{1, 2, 3, 4, 5, 6})

	runs := s.DateRuns()
	want := [][2]int{{0, 2}, {2, 3}, {3, 6}}
	if len(runs) != len(want) {
		t.Fatalf("got %d runs, want %d", len(runs), len(want))
	}
	for i, r := range runs {
		if r != want[i] {
			t.Errorf("run %d = %v, want %v", i, r, want[i])
		}
	}
}
