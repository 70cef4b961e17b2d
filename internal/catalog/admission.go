package catalog

import (
	"fmt"
	"sort"

	"github.com/wonny/factorlab/internal/evaluation"
)

// AdmissionRule is the threshold gate between evaluation and the catalog.
// Every clause must pass; a missing metric fails its clause (the default
// stands in for the worst case, not a neutral one).
type AdmissionRule struct {
	MinAbsRankIC      float64 `yaml:"min_abs_rank_ic" json:"min_abs_rank_ic"`
	MinAbsRankICIR    float64 `yaml:"min_abs_rank_ic_ir" json:"min_abs_rank_ic_ir"`
	MaxTurnoverPerDay float64 `yaml:"max_turnover_per_day" json:"max_turnover_per_day"`
	MinAbsMonotonic   float64 `yaml:"min_abs_monotonic" json:"min_abs_monotonic"`
}

// DefaultAdmissionRule returns the standard thresholds
func DefaultAdmissionRule() AdmissionRule {
	return AdmissionRule{
		MinAbsRankIC:      0.02,
		MinAbsRankICIR:    0.3,
		MaxTurnoverPerDay: 0.5,
		MinAbsMonotonic:   0.7,
	}
}

// Validate rejects thresholds outside their meaningful ranges
func (r AdmissionRule) Validate() error {
	if r.MinAbsRankIC < 0 || r.MinAbsRankIC > 1 {
		return fmt.Errorf("admission: min_abs_rank_ic must be in [0, 1], got %g", r.MinAbsRankIC)
	}
	if r.MinAbsRankICIR < 0 {
		return fmt.Errorf("admission: min_abs_rank_ic_ir must be >= 0, got %g", r.MinAbsRankICIR)
	}
	if r.MaxTurnoverPerDay <= 0 || r.MaxTurnoverPerDay > 1 {
		return fmt.Errorf("admission: max_turnover_per_day must be in (0, 1], got %g", r.MaxTurnoverPerDay)
	}
	if r.MinAbsMonotonic < 0 || r.MinAbsMonotonic > 1 {
		return fmt.Errorf("admission: min_abs_monotonic must be in [0, 1], got %g", r.MinAbsMonotonic)
	}
	return nil
}

// metricOr reads a metric with a fail-closed fallback for missing keys
func metricOr(metrics map[string]float64, name string, fallback float64) float64 {
	if v, ok := metrics[name]; ok {
		return v
	}
	return fallback
}

// IsPass applies every clause of the rule to one evaluation's metrics.
// Turnover is amortized per trading day before comparison so the same
// threshold works across horizons.
func (r AdmissionRule) IsPass(metrics map[string]float64, horizon int) bool {
	if horizon < 1 {
		return false
	}

	rankIC := metricOr(metrics, evaluation.MetricRankICMean, 0.0)
	rankICIR := metricOr(metrics, evaluation.MetricRankICIR, 0.0)
	turnover := metricOr(metrics, evaluation.MetricTopTurnover, 1.0)
	monotonic := metricOr(metrics, evaluation.MetricMonotonic, 0.0)

	return abs(rankIC) >= r.MinAbsRankIC &&
		abs(rankICIR) >= r.MinAbsRankICIR &&
		turnover/float64(horizon) <= r.MaxTurnoverPerDay &&
		abs(monotonic) >= r.MinAbsMonotonic
}

// FirstPassingHorizon scans the results in ascending horizon order and
// returns the first horizon the rule admits
func (r AdmissionRule) FirstPassingHorizon(results map[int]*evaluation.EvalResult) (int, bool) {
	horizons := make([]int, 0, len(results))
	for h := range results {
		horizons = append(horizons, h)
	}
	sort.Ints(horizons)

	for _, h := range horizons {
		if res := results[h]; res != nil && r.IsPass(res.Metrics, h) {
			return h, true
		}
	}
	return 0, false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
