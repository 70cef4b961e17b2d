package dataset

import (
	"fmt"
	"time"
)

// Frame is a panel table: a shared (date, code) index plus named float64
// columns. The index is sorted by (date, code) and free of duplicates.
type Frame struct {
	keys  []Key
	cols  map[string][]float64
	order []string
}

// BuildFrame assembles a frame from row keys and columns in any row order.
// All columns must have one value per key. Duplicate keys are rejected.
func BuildFrame(keys []Key, cols map[string][]float64, order []string) (*Frame, error) {
	for _, name := range order {
		vals, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("frame: column %q listed but not provided", name)
		}
		if len(vals) != len(keys) {
			return nil, fmt.Errorf("frame: column %q has %d rows, index has %d", name, len(vals), len(keys))
		}
	}

	idx := sortedOrder(keys)

	sortedKeys := make([]Key, len(keys))
	for i, j := range idx {
		sortedKeys[i] = keys[j]
	}
	for i := 1; i < len(sortedKeys); i++ {
		if sortedKeys[i].Equal(sortedKeys[i-1]) {
			return nil, fmt.Errorf("frame: duplicate key (%s, %s)",
				sortedKeys[i].Date.Format("2006-01-02"), sortedKeys[i].Code)
		}
	}

	sortedCols := make(map[string][]float64, len(cols))
	for name, vals := range cols {
		sorted := make([]float64, len(vals))
		for i, j := range idx {
			sorted[i] = vals[j]
		}
		sortedCols[name] = sorted
	}

	return &Frame{
		keys:  sortedKeys,
		cols:  sortedCols,
		order: append([]string(nil), order...),
	}, nil
}

// Len returns the number of rows
func (f *Frame) Len() int { return len(f.keys) }

// Keys exposes the sorted key slice. Callers must not modify it.
func (f *Frame) Keys() []Key { return f.keys }

// Columns returns column names in their declared order
func (f *Frame) Columns() []string { return append([]string(nil), f.order...) }

// HasColumn reports whether the frame has the named column
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// ColumnValues returns the raw values of a column aligned with Keys.
// Callers must not modify the slice.
func (f *Frame) ColumnValues(name string) ([]float64, error) {
	vals, ok := f.cols[name]
	if !ok {
		return nil, fmt.Errorf("frame: column %q not found", name)
	}
	return vals, nil
}

// Column returns the named column as a Series sharing the frame's index
func (f *Frame) Column(name string) (*Series, error) {
	vals, ok := f.cols[name]
	if !ok {
		return nil, fmt.Errorf("frame: column %q not found", name)
	}
	return &Series{name: name, keys: f.keys, vals: vals}, nil
}

// AddColumn attaches a column aligned with the frame's existing row order
func (f *Frame) AddColumn(name string, vals []float64) error {
	if len(vals) != len(f.keys) {
		return fmt.Errorf("frame: column %q has %d rows, index has %d", name, len(vals), len(f.keys))
	}
	if _, ok := f.cols[name]; ok {
		return fmt.Errorf("frame: column %q already exists", name)
	}
	f.cols[name] = vals
	f.order = append(f.order, name)
	return nil
}

// NewSeriesOnIndex builds a series on the frame's index from raw values
func (f *Frame) NewSeriesOnIndex(name string, vals []float64) (*Series, error) {
	if len(vals) != len(f.keys) {
		return nil, fmt.Errorf("frame: series %q has %d rows, index has %d", name, len(vals), len(f.keys))
	}
	return &Series{name: name, keys: f.keys, vals: vals}, nil
}

// CodeRows returns, for each asset code, its row indices in date-ascending
// order. The frame index is (date, code) sorted, so the per-code subsequence
// is already date-ordered.
func (f *Frame) CodeRows() map[string][]int {
	rows := make(map[string][]int)
	for i, k := range f.keys {
		rows[k.Code] = append(rows[k.Code], i)
	}
	return rows
}

// Dates returns the distinct trading dates in ascending order
func (f *Frame) Dates() []time.Time {
	var dates []time.Time
	for i, k := range f.keys {
		if i == 0 || !k.Date.Equal(f.keys[i-1].Date) {
			dates = append(dates, k.Date)
		}
	}
	return dates
}
