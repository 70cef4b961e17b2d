package evaluation

import (
	"fmt"
	"math"

	"github.com/wonny/factorlab/internal/dataset"
)

// Return kinds supported by the forward-return builder.
const (
	ReturnSimple = "simple" // p(t+h)/p(t) - 1
	ReturnLog    = "log"    // ln(p(t+h)/p(t))
)

// ReturnColumn is the canonical column name for an h-day forward return
func ReturnColumn(horizon int) string {
	return fmt.Sprintf("ret_fwd_%dd", horizon)
}

// BuildForwardReturns derives per-asset forward returns at each horizon from
// a price panel. For every asset the date-ordered price sequence is shifted
// back by h rows; the last h dates of each asset have no future price and
// stay missing. The output frame shares the input's index, one column per
// horizon.
func BuildForwardReturns(frame *dataset.Frame, horizons []int, priceCol, kind string) (*dataset.Frame, error) {
	if !frame.HasColumn(priceCol) {
		return nil, fmt.Errorf("%w: price column %q not in panel (columns: %v)",
			ErrInvalidConfig, priceCol, frame.Columns())
	}
	if kind != ReturnSimple && kind != ReturnLog {
		return nil, fmt.Errorf("%w: return kind must be %q or %q, got %q",
			ErrInvalidConfig, ReturnSimple, ReturnLog, kind)
	}
	for _, h := range horizons {
		if h < 1 {
			return nil, fmt.Errorf("%w: horizon must be >= 1, got %d", ErrInvalidConfig, h)
		}
	}

	prices, err := frame.ColumnValues(priceCol)
	if err != nil {
		return nil, err
	}
	codeRows := frame.CodeRows()
	n := frame.Len()

	cols := make(map[string][]float64, len(horizons))
	order := make([]string, 0, len(horizons))

	for _, h := range horizons {
		out := make([]float64, n)
		for i := range out {
			out[i] = math.NaN()
		}

		for _, rows := range codeRows {
			for i := 0; i+h < len(rows); i++ {
				p0 := prices[rows[i]]
				p1 := prices[rows[i+h]]
				if math.IsNaN(p0) || math.IsNaN(p1) || p0 == 0 {
					continue
				}
				if kind == ReturnSimple {
					out[rows[i]] = p1/p0 - 1.0
				} else {
					out[rows[i]] = math.Log(p1 / p0)
				}
			}
		}

		name := ReturnColumn(h)
		cols[name] = out
		order = append(order, name)
	}

	return dataset.BuildFrame(frame.Keys(), cols, order)
}
