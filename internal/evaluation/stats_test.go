package evaluation

import (
	"math"
	"testing"
)

func TestSummaryStats(t *testing.T) {
	tests := []struct {
		name    string
		in      []float64
		wantM   float64
		defined bool // IR and t defined
	}{
		{"too short", []float64{0.5}, math.NaN(), false},
		{"zero dispersion", []float64{0.3, 0.3, 0.3}, 0.3, false},
		{"normal", []float64{0.1, 0.2, 0.3}, 0.2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, std, ir, tstat := summaryStats(tt.in)
			if math.IsNaN(tt.wantM) {
				if !math.IsNaN(m) || !math.IsNaN(std) {
					t.Errorf("mean/std = %v/%v, want NaN", m, std)
				}
			} else if math.Abs(m-tt.wantM) > 1e-12 {
				t.Errorf("mean = %v, want %v", m, tt.wantM)
			}
			if tt.defined {
				if math.IsNaN(ir) || math.IsNaN(tstat) {
					t.Errorf("ir/t = %v/%v, want defined", ir, tstat)
				}
			} else if !math.IsNaN(ir) || !math.IsNaN(tstat) {
				t.Errorf("ir/t = %v/%v, want NaN", ir, tstat)
			}
		})
	}
}

func TestSummaryStatsTStat(t *testing.T) {
	xs := []float64{0.1, 0.2, 0.3}
	m, std, ir, tstat := summaryStats(xs)

	if math.Abs(m-0.2) > 1e-12 {
		t.Errorf("mean = %v", m)
	}
	if math.Abs(std-0.1) > 1e-12 {
		t.Errorf("std = %v, want 0.1", std)
	}
	if math.Abs(ir-2.0) > 1e-12 {
		t.Errorf("ir = %v, want 2.0", ir)
	}
	want := 0.2 / (0.1 / math.Sqrt(3))
	if math.Abs(tstat-want) > 1e-12 {
		t.Errorf("t = %v, want %v", tstat, want)
	}
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	if got := pearson(x, []float64{2, 4, 6, 8}); math.Abs(got-1) > 1e-12 {
		t.Errorf("perfect positive: %v", got)
	}
	if got := pearson(x, []float64{8, 6, 4, 2}); math.Abs(got+1) > 1e-12 {
		t.Errorf("perfect negative: %v", got)
	}
	if got := pearson(x, []float64{5, 5, 5, 5}); !math.IsNaN(got) {
		t.Errorf("degenerate y: %v, want NaN", got)
	}
}

func TestRankAverageTies(t *testing.T) {
	got := rankAverage([]float64{10, 20, 20, 30})
	want := []float64{1, 2.5, 2.5, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rank[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSpearmanMonotoneNonlinear(t *testing.T) {
	// Monotone but nonlinear: rank correlation is exactly 1
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 8, 27, 64, 125}
	if got := spearman(x, y); math.Abs(got-1) > 1e-12 {
		t.Errorf("spearman = %v, want 1", got)
	}
}

func TestCorrPairDegenerate(t *testing.T) {
	ic, rankIC := corrPair([]float64{1, 1, 1}, []float64{0.1, 0.2, 0.3})
	if !math.IsNaN(ic) || !math.IsNaN(rankIC) {
		t.Errorf("constant factor: ic=%v rankIC=%v, want NaN", ic, rankIC)
	}

	ic, rankIC = corrPair([]float64{1}, []float64{0.1})
	if !math.IsNaN(ic) || !math.IsNaN(rankIC) {
		t.Errorf("single observation: ic=%v rankIC=%v, want NaN", ic, rankIC)
	}
}

func TestEqualCountLabels(t *testing.T) {
	// 7 values, 3 bins: sizes 3, 2, 2 with the remainder in the earliest bin
	values := []float64{70, 10, 40, 20, 60, 30, 50}
	labels := equalCountLabels(values, 3)

	counts := make(map[int]int)
	for _, b := range labels {
		counts[b]++
	}
	if counts[0] != 3 || counts[1] != 2 || counts[2] != 2 {
		t.Errorf("bin sizes = %v, want [3 2 2]", counts)
	}
	// Smallest three values land in bin 0, largest two in bin 2
	if labels[1] != 0 || labels[3] != 0 || labels[5] != 0 {
		t.Errorf("low values not in bin 0: %v", labels)
	}
	if labels[0] != 2 || labels[4] != 2 {
		t.Errorf("high values not in bin 2: %v", labels)
	}
}

func TestEqualCountLabelsTiesDeterministic(t *testing.T) {
	values := []float64{5, 5, 5, 5}
	a := equalCountLabels(values, 2)
	b := equalCountLabels(values, 2)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("labels not deterministic: %v vs %v", a, b)
		}
	}
	// Stable sort keeps input order, so the first two go to bin 0
	if a[0] != 0 || a[1] != 0 || a[2] != 1 || a[3] != 1 {
		t.Errorf("tied labels = %v, want [0 0 1 1]", a)
	}
}

func TestBoundaryLabelsAllEqual(t *testing.T) {
	if labels := boundaryLabels([]float64{3, 3, 3, 3}, 2); labels != nil {
		t.Errorf("all-equal values should yield nil, got %v", labels)
	}
}

func TestGroupMeans(t *testing.T) {
	factor := []float64{1, 2, 3, 4}
	ret := []float64{0.01, 0.02, 0.03, 0.04}

	row, ok := groupMeans(factor, ret, 2, QuantileEqualCount)
	if !ok {
		t.Fatal("groupMeans failed on clean input")
	}
	if math.Abs(row[0]-0.015) > 1e-12 || math.Abs(row[1]-0.035) > 1e-12 {
		t.Errorf("row = %v, want [0.015 0.035]", row)
	}

	if _, ok := groupMeans([]float64{1}, []float64{0.1}, 2, QuantileEqualCount); ok {
		t.Error("fewer observations than bins should not group")
	}
}

func TestCumprod1p(t *testing.T) {
	got := cumprod1p([]float64{0.1, math.NaN(), -0.5})
	if math.Abs(got[0]-1.1) > 1e-12 {
		t.Errorf("got[0] = %v", got[0])
	}
	if math.Abs(got[1]-1.1) > 1e-12 {
		t.Errorf("NaN day should stay flat, got %v", got[1])
	}
	if math.Abs(got[2]-0.55) > 1e-12 {
		t.Errorf("got[2] = %v", got[2])
	}
}
