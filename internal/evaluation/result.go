package evaluation

import "time"

// Metric names produced by the built-in evaluators.
const (
	MetricICMean      = "ic_mean"
	MetricICStd       = "ic_std"
	MetricICIR        = "ic_ir"
	MetricICT         = "ic_t"
	MetricRankICMean  = "rank_ic_mean"
	MetricRankICStd   = "rank_ic_std"
	MetricRankICIR    = "rank_ic_ir"
	MetricRankICT     = "rank_ic_t"
	MetricTopTurnover = "top_turnover_mean"
	MetricMonotonic   = "monotonic_mean"
	MetricGroupLSMean = "group_ls_mean"
	MetricGroupLST    = "group_ls_t"
)

// DateSeries is a per-date scalar series, one value per trading date.
// NaN marks dates where the value is undefined.
type DateSeries struct {
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

// Len returns the number of dates
func (s DateSeries) Len() int { return len(s.Dates) }

// GroupTable is a date-by-bin table of mean returns. Every row has exactly
// Bins entries labeled 0..Bins-1; NaN marks bins unpopulated on that date.
type GroupTable struct {
	Dates  []time.Time `json:"dates"`
	Bins   int         `json:"bins"`
	Values [][]float64 `json:"values"`
}

// Artifacts carries the diagnostic series behind the metrics. They feed
// plotting and reports; the admission decision never reads them.
type Artifacts struct {
	ICSeries        DateSeries  `json:"ic_series"`
	RankICSeries    DateSeries  `json:"rank_ic_series"`
	GroupReturns    *GroupTable `json:"group_returns,omitempty"`
	GroupCumulative *GroupTable `json:"group_cumulative,omitempty"`
	MeanGroupReturn []float64   `json:"mean_group_return,omitempty"`
	LongShort       DateSeries  `json:"long_short"`
	LongShortCum    DateSeries  `json:"long_short_cum"`
	Turnover        DateSeries  `json:"turnover"`
	Monotonic       DateSeries  `json:"monotonic"`
}

// EvalResult is the immutable outcome of evaluating one factor at one
// horizon. Metrics only contains defined (non-NaN) values; a fully
// degenerate evaluation yields an empty map plus an explanatory note, which
// the admission rule rejects by default.
type EvalResult struct {
	EvaluatorName string             `json:"evaluator_name"`
	FactorName    string             `json:"factor_name"`
	Horizon       int                `json:"horizon"`
	Metrics       map[string]float64 `json:"metrics"`
	Artifacts     Artifacts          `json:"-"`
	Notes         map[string]string  `json:"notes,omitempty"`
}

// emptyResult is the short-circuit outcome for empty aligned input
func emptyResult(evaluatorName, factorName string, horizon int, warning string) *EvalResult {
	return &EvalResult{
		EvaluatorName: evaluatorName,
		FactorName:    factorName,
		Horizon:       horizon,
		Metrics:       map[string]float64{},
		Notes:         map[string]string{"warning": warning},
	}
}
