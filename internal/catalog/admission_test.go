package catalog

import (
	"testing"

	"github.com/wonny/factorlab/internal/evaluation"
)

func passingMetrics() map[string]float64 {
	return map[string]float64{
		evaluation.MetricRankICMean:  0.05,
		evaluation.MetricRankICIR:    0.5,
		evaluation.MetricTopTurnover: 0.3,
		evaluation.MetricMonotonic:   0.9,
	}
}

func TestAdmissionRuleIsPass(t *testing.T) {
	rule := DefaultAdmissionRule()

	tests := []struct {
		name    string
		mutate  func(map[string]float64)
		horizon int
		want    bool
	}{
		{"all clauses pass", nil, 1, true},
		{"negative rank ic passes on magnitude", func(m map[string]float64) {
			m[evaluation.MetricRankICMean] = -0.05
			m[evaluation.MetricRankICIR] = -0.5
			m[evaluation.MetricMonotonic] = -0.9
		}, 1, true},
		{"rank ic below threshold", func(m map[string]float64) {
			m[evaluation.MetricRankICMean] = 0.01
		}, 1, false},
		{"ir below threshold", func(m map[string]float64) {
			m[evaluation.MetricRankICIR] = 0.1
		}, 1, false},
		{"turnover too high", func(m map[string]float64) {
			m[evaluation.MetricTopTurnover] = 0.9
		}, 1, false},
		{"turnover amortized by horizon", func(m map[string]float64) {
			m[evaluation.MetricTopTurnover] = 0.9
		}, 5, true},
		{"weak monotonicity", func(m map[string]float64) {
			m[evaluation.MetricMonotonic] = 0.5
		}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := passingMetrics()
			if tt.mutate != nil {
				tt.mutate(m)
			}
			if got := rule.IsPass(m, tt.horizon); got != tt.want {
				t.Errorf("IsPass = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdmissionRuleMissingMetricsFailClosed(t *testing.T) {
	rule := DefaultAdmissionRule()

	if rule.IsPass(map[string]float64{}, 1) {
		t.Error("empty metrics must not pass")
	}

	// Each clause alone must fail on a missing metric
	for _, drop := range []string{
		evaluation.MetricRankICMean,
		evaluation.MetricRankICIR,
		evaluation.MetricTopTurnover,
		evaluation.MetricMonotonic,
	} {
		m := passingMetrics()
		delete(m, drop)
		if rule.IsPass(m, 1) {
			t.Errorf("missing %s must fail closed", drop)
		}
	}
}

func TestFirstPassingHorizon(t *testing.T) {
	rule := DefaultAdmissionRule()

	failing := map[string]float64{}
	results := map[int]*evaluation.EvalResult{
		20: {Horizon: 20, Metrics: passingMetrics()},
		5:  {Horizon: 5, Metrics: passingMetrics()},
		1:  {Horizon: 1, Metrics: failing},
	}

	h, ok := rule.FirstPassingHorizon(results)
	if !ok || h != 5 {
		t.Errorf("FirstPassingHorizon = %d/%v, want 5/true", h, ok)
	}

	none := map[int]*evaluation.EvalResult{
		1: {Horizon: 1, Metrics: failing},
	}
	if _, ok := rule.FirstPassingHorizon(none); ok {
		t.Error("expected no passing horizon")
	}
}

func TestAdmissionRuleValidate(t *testing.T) {
	rule := DefaultAdmissionRule()
	if err := rule.Validate(); err != nil {
		t.Errorf("default rule invalid: %v", err)
	}

	bad := rule
	bad.MaxTurnoverPerDay = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero turnover bound")
	}

	bad = rule
	bad.MinAbsMonotonic = 1.5
	if err := bad.Validate(); err == nil {
		t.Error("expected error for monotonicity above 1")
	}
}
