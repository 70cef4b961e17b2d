package factors

import (
	"fmt"
	"math"

	"github.com/wonny/factorlab/internal/dataset"
)

// Transform computes one asset's factor values from its date-ordered field
// slices. The output must have one value per input row, NaN during warmup.
type Transform func(fields map[string][]float64, window int) []float64

// Definition describes a computable factor: an identity plus the transform
// that produces its values from a price panel.
type Definition struct {
	Name           string   // unique factor name, e.g. "momentum_20"
	Version        string   // bumped whenever the transform changes
	Window         int      // lookback in trading days
	RequiredFields []string // panel columns the transform reads
	Transform      Transform
}

// Validate rejects malformed definitions
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("factor definition: name is required")
	}
	if d.Version == "" {
		return fmt.Errorf("factor %s: version is required", d.Name)
	}
	if d.Window < 1 {
		return fmt.Errorf("factor %s: window must be >= 1, got %d", d.Name, d.Window)
	}
	if len(d.RequiredFields) == 0 {
		return fmt.Errorf("factor %s: at least one required field", d.Name)
	}
	if d.Transform == nil {
		return fmt.Errorf("factor %s: transform is required", d.Name)
	}
	return nil
}

// Compute evaluates the factor over a price panel, asset by asset. Each
// asset's date-ordered field slices go through the transform; results are
// scattered back onto the panel's (date, code) index.
func (d Definition) Compute(panel *dataset.Frame) (*dataset.Series, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	for _, field := range d.RequiredFields {
		if !panel.HasColumn(field) {
			return nil, fmt.Errorf("factor %s: panel missing column %q (have %v)",
				d.Name, field, panel.Columns())
		}
	}

	cols := make(map[string][]float64, len(d.RequiredFields))
	for _, field := range d.RequiredFields {
		vals, err := panel.ColumnValues(field)
		if err != nil {
			return nil, err
		}
		cols[field] = vals
	}

	out := make([]float64, panel.Len())
	for i := range out {
		out[i] = math.NaN()
	}

	for _, rows := range panel.CodeRows() {
		fields := make(map[string][]float64, len(cols))
		for name, vals := range cols {
			view := make([]float64, len(rows))
			for i, r := range rows {
				view[i] = vals[r]
			}
			fields[name] = view
		}

		vals := d.Transform(fields, d.Window)
		if len(vals) != len(rows) {
			return nil, fmt.Errorf("factor %s: transform returned %d rows, want %d",
				d.Name, len(vals), len(rows))
		}
		for i, r := range rows {
			out[r] = vals[i]
		}
	}

	return panel.NewSeriesOnIndex(d.Name, out)
}
