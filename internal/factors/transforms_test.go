package factors

import (
	"math"
	"testing"
	"time"

	"github.com/wonny/factorlab/internal/dataset"
)

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestMomentum(t *testing.T) {
	fields := map[string][]float64{
		FieldClose: {100, 110, 121, 133.1},
	}
	got := momentum(fields, 2)

	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Errorf("warmup rows should be NaN: %v", got[:2])
	}
	if math.Abs(got[2]-0.21) > 1e-9 {
		t.Errorf("got[2] = %v, want 0.21", got[2])
	}
	if math.Abs(got[3]-0.21) > 1e-9 {
		t.Errorf("got[3] = %v, want 0.21", got[3])
	}
}

func TestReversalNegatesMomentum(t *testing.T) {
	fields := map[string][]float64{FieldClose: {100, 120, 90}}
	mom := momentum(fields, 1)
	rev := reversal(fields, 1)
	for i := range mom {
		if math.IsNaN(mom[i]) {
			if !math.IsNaN(rev[i]) {
				t.Errorf("rev[%d] = %v, want NaN", i, rev[i])
			}
			continue
		}
		if rev[i] != -mom[i] {
			t.Errorf("rev[%d] = %v, want %v", i, rev[i], -mom[i])
		}
	}
}

func TestVolatilityScoresLowVolHigh(t *testing.T) {
	flat := map[string][]float64{FieldClose: {100, 100, 100, 100, 100}}
	choppy := map[string][]float64{FieldClose: {100, 120, 90, 130, 80}}

	vFlat := volatility(flat, 3)
	vChoppy := volatility(choppy, 3)

	if math.IsNaN(vFlat[4]) || math.IsNaN(vChoppy[4]) {
		t.Fatalf("expected defined values, got %v / %v", vFlat[4], vChoppy[4])
	}
	if vFlat[4] <= vChoppy[4] {
		t.Errorf("flat series should score higher: flat=%v choppy=%v", vFlat[4], vChoppy[4])
	}
}

func TestVolumeRatio(t *testing.T) {
	fields := map[string][]float64{FieldVolume: {100, 100, 100, 300}}
	got := volumeRatio(fields, 3)

	if !math.IsNaN(got[2]) {
		t.Errorf("warmup row should be NaN, got %v", got[2])
	}
	if math.Abs(got[3]-3.0) > 1e-9 {
		t.Errorf("got[3] = %v, want 3.0", got[3])
	}
}

func TestUpdownPower(t *testing.T) {
	// All up days on heavy volume: maximal positive pressure
	fields := map[string][]float64{
		FieldClose:  {100, 110, 121, 133},
		FieldVolume: {0, 500, 500, 500},
	}
	got := updownPower(fields, 3)
	if math.Abs(got[3]-1.0) > 1e-9 {
		t.Errorf("got[3] = %v, want 1.0", got[3])
	}

	// Mixed pressure: one up day, one down day, equal volume
	fields = map[string][]float64{
		FieldClose:  {100, 110, 100},
		FieldVolume: {0, 500, 500},
	}
	got = updownPower(fields, 2)
	if math.Abs(got[2]) > 1e-9 {
		t.Errorf("got[2] = %v, want 0", got[2])
	}
}

func TestDefinitionCompute(t *testing.T) {
	keys := []dataset.Key{
		{Date: day(1), Code: "A"},
		{Date: day(1), Code: "B"},
		{Date: day(2), Code: "A"},
		{Date: day(2), Code: "B"},
	}
	panel, err := dataset.BuildFrame(keys, map[string][]float64{
		"close": {100, 200, 110, 180},
	}, []string{"close"})
	if err != nil {
		t.Fatal(err)
	}

	def := Definition{
		Name:           "momentum_1",
		Version:        "1.0.0",
		Window:         1,
		RequiredFields: []string{FieldClose},
		Transform:      momentum,
	}

	s, err := def.Compute(panel)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if s.Name() != "momentum_1" {
		t.Errorf("series name = %q", s.Name())
	}

	// Day 2 values: A 110/100-1, B 180/200-1; day 1 is warmup
	vals := s.Values()
	if !math.IsNaN(vals[0]) || !math.IsNaN(vals[1]) {
		t.Errorf("day 1 should be warmup NaN: %v", vals[:2])
	}
	if math.Abs(vals[2]-0.1) > 1e-9 {
		t.Errorf("A momentum = %v, want 0.1", vals[2])
	}
	if math.Abs(vals[3]+0.1) > 1e-9 {
		t.Errorf("B momentum = %v, want -0.1", vals[3])
	}
}

func TestDefinitionComputeMissingColumn(t *testing.T) {
	panel, err := dataset.BuildFrame(
		[]dataset.Key{{Date: day(1), Code: "A"}},
		map[string][]float64{"close": {100}},
		[]string{"close"})
	if err != nil {
		t.Fatal(err)
	}

	def := Definition{
		Name:           "volume_ratio_5",
		Version:        "1.0.0",
		Window:         5,
		RequiredFields: []string{FieldVolume},
		Transform:      volumeRatio,
	}
	if _, err := def.Compute(panel); err == nil {
		t.Error("expected error for missing volume column")
	}
}

func TestRegistryDuplicatesAndBuiltins(t *testing.T) {
	r := NewRegistry()
	def := Definition{
		Name:           "x_5",
		Version:        "1.0.0",
		Window:         5,
		RequiredFields: []string{FieldClose},
		Transform:      momentum,
	}
	if err := r.Register(def); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(def); err == nil {
		t.Error("expected duplicate registration error")
	}

	b := Builtins()
	names := b.List()
	if len(names) != len(builtinFamilies)*len(builtinWindows) {
		t.Errorf("builtins = %d, want %d", len(names), len(builtinFamilies)*len(builtinWindows))
	}
	if _, err := b.Get("momentum_20"); err != nil {
		t.Errorf("momentum_20 missing: %v", err)
	}
	for _, d := range b.All() {
		if err := d.Validate(); err != nil {
			t.Errorf("builtin %s invalid: %v", d.Name, err)
		}
	}
}
