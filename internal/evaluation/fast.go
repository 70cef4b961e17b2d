package evaluation

import (
	"time"

	"github.com/wonny/factorlab/internal/dataset"
)

// FastEvaluator is the accelerated twin of CommonEvaluator: same inputs,
// same metrics, same artifacts, but the per-date pass runs on the parallel
// Kernel over a dense date-bucket layout. Results match the common path
// exactly because both call the same cross-sectional primitives.
type FastEvaluator struct{}

// Name returns the registry key
func (e *FastEvaluator) Name() string { return "fast" }

// Evaluate scores one factor against one forward-return series
func (e *FastEvaluator) Evaluate(factor, ret *dataset.Series, p Params) (*EvalResult, error) {
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
	if p.Horizon > 1 {
		for i := range rv {
			rv[i] /= float64(p.Horizon)
		}
	}

	adj := fv
	if !p.LongHigh {
		adj = make([]float64, len(fv))
		for i, v := range fv {
			adj[i] = -v
		}
	}

	offsets := af.DateRuns()
	k := &Kernel{Workers: p.Workers}

	ic, rankIC := k.CorrelationsByDate(fv, rv, offsets)
	groups := k.GroupReturnsByDate(adj, rv, offsets, p.Q, p.Policy)

	dates := make([]time.Time, len(offsets))
	for i, run := range offsets {
		dates[i] = af.Key(run[0]).Date
	}

	pd := perDateStats{dates: dates, ic: ic, rankIC: rankIC, groups: groups}
	return buildResult(e.Name(), factorName, p, af.Keys(), offsets, adj, pd), nil
}
