package evaluation

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/wonny/factorlab/internal/dataset"
)

// CommonEvaluator is the reference per-date factor evaluator: rank and
// linear IC, quantile-group spreads, top-bucket turnover and monotonicity,
// computed date by date over a labeled (date, code) panel.
type CommonEvaluator struct{}

// Name returns the registry key
func (e *CommonEvaluator) Name() string { return "common" }

// Evaluate scores one factor against one forward-return series
func (e *CommonEvaluator) Evaluate(factor, ret *dataset.Series, p Params) (*EvalResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	factorName := factor.Name()

	af, ar := dataset.Align(factor, ret)
	if af.Len() == 0 {
		return emptyResult(e.Name(), factorName, p.Horizon, "empty intersection after alignment"), nil
	}

	fv := af.Values()
	rv := append([]float64(nil), ar.Values()...)
	// Horizon amortization: express h-day returns on a daily-equivalent
	// basis so IC and turnover compare across horizons
	if p.Horizon > 1 {
		for i := range rv {
			rv[i] /= float64(p.Horizon)
		}
	}

	// Sign-adjust once so the highest-factor bin is always the long leg
	adj := fv
	if !p.LongHigh {
		adj = make([]float64, len(fv))
		for i, v := range fv {
			adj[i] = -v
		}
	}

	runs := af.DateRuns()
	pd := perDateStats{
		dates:  make([]time.Time, 0, len(runs)),
		ic:     make([]float64, 0, len(runs)),
		rankIC: make([]float64, 0, len(runs)),
		groups: make([][]float64, 0, len(runs)),
	}
	for _, run := range runs {
		f := fv[run[0]:run[1]]
		a := adj[run[0]:run[1]]
		r := rv[run[0]:run[1]]

		ic, rankIC := corrPair(f, r)
		pd.dates = append(pd.dates, af.Key(run[0]).Date)
		pd.ic = append(pd.ic, ic)
		pd.rankIC = append(pd.rankIC, rankIC)

		row, ok := groupMeans(a, r, p.Q, p.Policy)
		if !ok {
			row = nil
		}
		pd.groups = append(pd.groups, row)
	}

	return buildResult(e.Name(), factorName, p, af.Keys(), runs, adj, pd), nil
}

// perDateStats holds the per-date outputs of the cross-sectional pass.
// One entry per date; NaN / nil marks a degenerate date.
type perDateStats struct {
	dates  []time.Time
	ic     []float64
	rankIC []float64
	groups [][]float64
}

// buildResult aggregates per-date statistics into metrics and artifacts.
// Shared by the common evaluator and the kernel-backed fast evaluator; the
// two only differ in how perDateStats is produced.
func buildResult(evaluatorName, factorName string, p Params, keys []dataset.Key, runs [][2]int, adj []float64, pd perDateStats) *EvalResult {
	metrics := make(map[string]float64)
	notes := make(map[string]string)

	// IC / rank IC summaries over the valid dates only
	icDates, icVals := dropNaNDates(pd.dates, pd.ic)
	rankDates, rankVals := dropNaNDates(pd.dates, pd.rankIC)
	if skipped := len(pd.dates) - len(rankDates); skipped > 0 {
		notes["degenerate_ic_dates"] = strconv.Itoa(skipped)
	}

	icMean, icStd, icIR, icT := summaryStats(icVals)
	putMetric(metrics, MetricICMean, icMean)
	putMetric(metrics, MetricICStd, icStd)
	putMetric(metrics, MetricICIR, icIR)
	putMetric(metrics, MetricICT, icT)

	rankMean, rankStd, rankIR, rankT := summaryStats(rankVals)
	putMetric(metrics, MetricRankICMean, rankMean)
	putMetric(metrics, MetricRankICStd, rankStd)
	putMetric(metrics, MetricRankICIR, rankIR)
	putMetric(metrics, MetricRankICT, rankT)

	// Grouped returns: keep only the dates that could be binned
	var groupDates []time.Time
	var groupRows [][]float64
	for i, row := range pd.groups {
		if row != nil {
			groupDates = append(groupDates, pd.dates[i])
			groupRows = append(groupRows, row)
		}
	}
	if skipped := len(pd.dates) - len(groupDates); skipped > 0 {
		notes["degenerate_group_dates"] = strconv.Itoa(skipped)
	}

	var (
		groupTable *GroupTable
		groupCum   *GroupTable
		meanGroup  []float64
		ls         DateSeries
		lsCum      DateSeries
		monoSeries DateSeries
	)
	if len(groupRows) > 0 {
		groupTable = &GroupTable{Dates: groupDates, Bins: p.Q, Values: groupRows}

		// Column means over dates, ignoring unpopulated bins
		meanGroup = make([]float64, p.Q)
		for b := 0; b < p.Q; b++ {
			col := make([]float64, len(groupRows))
			for i, row := range groupRows {
				col[i] = row[b]
			}
			meanGroup[b] = nanMean(col)
		}

		lsVals := make([]float64, len(groupRows))
		monoVals := make([]float64, len(groupRows))
		for i, row := range groupRows {
			lsVals[i] = longShort(row)
			monoVals[i] = binMonotonicity(row)
		}
		ls = DateSeries{Dates: groupDates, Values: lsVals}
		monoSeries = DateSeries{Dates: groupDates, Values: monoVals}
		lsCum = DateSeries{Dates: groupDates, Values: cumprod1p(lsVals)}

		cumRows := make([][]float64, len(groupRows))
		acc := make([]float64, p.Q)
		for b := range acc {
			acc[b] = 1.0
		}
		for i, row := range groupRows {
			cumRow := make([]float64, p.Q)
			for b := 0; b < p.Q; b++ {
				if !math.IsNaN(row[b]) {
					acc[b] *= 1.0 + row[b]
				}
				cumRow[b] = acc[b]
			}
			cumRows[i] = cumRow
		}
		groupCum = &GroupTable{Dates: groupDates, Bins: p.Q, Values: cumRows}

		putMetric(metrics, MetricMonotonic, nanMean(monoVals))

		lsMean, _, _, lsT := summaryStats(dropNaN(lsVals))
		putMetric(metrics, MetricGroupLSMean, lsMean)
		putMetric(metrics, MetricGroupLST, lsT)
	}

	// Top-bucket turnover over every aligned date
	turnover := turnoverSeries(keys, runs, adj, p.TopPct)
	putMetric(metrics, MetricTopTurnover, nanMean(turnover.Values))

	return &EvalResult{
		EvaluatorName: evaluatorName,
		FactorName:    factorName,
		Horizon:       p.Horizon,
		Metrics:       metrics,
		Artifacts: Artifacts{
			ICSeries:        DateSeries{Dates: icDates, Values: icVals},
			RankICSeries:    DateSeries{Dates: rankDates, Values: rankVals},
			GroupReturns:    groupTable,
			GroupCumulative: groupCum,
			MeanGroupReturn: meanGroup,
			LongShort:       ls,
			LongShortCum:    lsCum,
			Turnover:        turnover,
			Monotonic:       monoSeries,
		},
		Notes: notes,
	}
}

// longShort is the date's highest-populated-bin mean return minus the
// lowest-populated one; NaN with fewer than two populated bins
func longShort(row []float64) float64 {
	lo, hi := -1, -1
	for b, v := range row {
		if math.IsNaN(v) {
			continue
		}
		if lo < 0 {
			lo = b
		}
		hi = b
	}
	if lo < 0 || hi == lo {
		return math.NaN()
	}
	return row[hi] - row[lo]
}

// binMonotonicity rank-correlates bin index against bin mean return for one
// date, over the populated bins only
func binMonotonicity(row []float64) float64 {
	var idx, vals []float64
	for b, v := range row {
		if !math.IsNaN(v) {
			idx = append(idx, float64(b))
			vals = append(vals, v)
		}
	}
	if len(idx) < 2 {
		return math.NaN()
	}
	return spearman(idx, vals)
}

// turnoverSeries computes day-over-day churn of the top factor bucket.
// The first date has no prior set and stays NaN.
func turnoverSeries(keys []dataset.Key, runs [][2]int, adj []float64, topPct float64) DateSeries {
	dates := make([]time.Time, len(runs))
	vals := make([]float64, len(runs))

	var prev map[string]struct{}
	for i, run := range runs {
		dates[i] = keys[run[0]].Date
		cur := topCodes(keys[run[0]:run[1]], adj[run[0]:run[1]], topPct)

		if prev == nil {
			vals[i] = math.NaN()
		} else {
			overlap := 0
			for code := range cur {
				if _, ok := prev[code]; ok {
					overlap++
				}
			}
			vals[i] = 1.0 - float64(overlap)/float64(len(cur))
		}
		prev = cur
	}

	return DateSeries{Dates: dates, Values: vals}
}

// topCodes selects the top topPct fraction of the date's assets by
// sign-adjusted factor value, always at least one. Ties are broken by code
// so the selection is deterministic.
func topCodes(keys []dataset.Key, adj []float64, topPct float64) map[string]struct{} {
	n := len(adj)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if adj[order[a]] != adj[order[b]] {
			return adj[order[a]] > adj[order[b]]
		}
		return keys[order[a]].Code < keys[order[b]].Code
	})

	take := int(math.Ceil(float64(n) * topPct))
	if take < 1 {
		take = 1
	}
	if take > n {
		take = n
	}

	set := make(map[string]struct{}, take)
	for i := 0; i < take; i++ {
		set[keys[order[i]].Code] = struct{}{}
	}
	return set
}

// putMetric records a metric only when it is defined
func putMetric(metrics map[string]float64, name string, v float64) {
	if !math.IsNaN(v) {
		metrics[name] = v
	}
}

// dropNaN filters NaN entries from a slice
func dropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// dropNaNDates filters a per-date series down to its defined entries
func dropNaNDates(dates []time.Time, vals []float64) ([]time.Time, []float64) {
	outD := make([]time.Time, 0, len(dates))
	outV := make([]float64, 0, len(vals))
	for i, v := range vals {
		if !math.IsNaN(v) {
			outD = append(outD, dates[i])
			outV = append(outV, v)
		}
	}
	return outD, outV
}
