package evaluation

import (
	"fmt"

	"github.com/wonny/factorlab/internal/dataset"
)

// QuantilePolicy selects how a date's cross-section is split into q bins.
// The two policies agree except on heavily tied factor values; equal_count
// is the canonical default and the only one the accelerated kernel supports.
type QuantilePolicy string

const (
	// QuantileEqualCount sorts the date's values and deals them into bins of
	// (near-)equal size
	QuantileEqualCount QuantilePolicy = "equal_count"
	// QuantileBoundary cuts at inclusive quantile boundaries, collapsing
	// duplicate boundaries on ties
	QuantileBoundary QuantilePolicy = "boundary"
)

// Params are the evaluation parameters shared by all built-in evaluators
type Params struct {
	Q        int            // number of quantile bins
	TopPct   float64        // top-bucket fraction for turnover
	LongHigh bool           // true: highest factor value is the long leg
	Horizon  int            // forward-return horizon in trading days
	Policy   QuantilePolicy // quantile tie policy
	Workers  int            // parallelism for the accelerated path (0 = serial)
}

// DefaultParams returns the standard evaluation parameters
func DefaultParams() Params {
	return Params{
		Q:        10,
		TopPct:   0.2,
		LongHigh: true,
		Horizon:  1,
		Policy:   QuantileEqualCount,
		Workers:  0,
	}
}

// Validate rejects malformed parameters up front
func (p Params) Validate() error {
	if p.Q < 2 {
		return fmt.Errorf("%w: quantile count must be >= 2, got %d", ErrInvalidConfig, p.Q)
	}
	if p.TopPct <= 0 || p.TopPct > 1 {
		return fmt.Errorf("%w: top_pct must be in (0, 1], got %g", ErrInvalidConfig, p.TopPct)
	}
	if p.Horizon < 1 {
		return fmt.Errorf("%w: horizon must be >= 1, got %d", ErrInvalidConfig, p.Horizon)
	}
	if p.Policy != QuantileEqualCount && p.Policy != QuantileBoundary {
		return fmt.Errorf("%w: unknown quantile policy %q", ErrInvalidConfig, p.Policy)
	}
	if p.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, p.Workers)
	}
	return nil
}

// Evaluator scores an aligned (factor, forward return) pair at one horizon
type Evaluator interface {
	// Name is the registry key
	Name() string
	// Evaluate produces metrics and diagnostic artifacts. Degenerate data
	// never fails; only invalid parameters do.
	Evaluate(factor, ret *dataset.Series, p Params) (*EvalResult, error)
}
