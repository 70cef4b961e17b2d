package dataset

import (
	"fmt"
	"math"
	"sort"
)

// Series maps panel keys to float64 values. Keys are kept sorted by
// (date, code) and are unique; NaN marks a missing value.
type Series struct {
	name string
	keys []Key
	vals []float64
}

// NewSeries builds a series from keys and values. Input order does not
// matter; rows are sorted by key. Duplicate keys are rejected.
func NewSeries(name string, keys []Key, vals []float64) (*Series, error) {
	if len(keys) != len(vals) {
		return nil, fmt.Errorf("series %s: %d keys but %d values", name, len(keys), len(vals))
	}

	idx := sortedOrder(keys)

	sortedKeys := make([]Key, len(keys))
	sortedVals := make([]float64, len(vals))
	for i, j := range idx {
		sortedKeys[i] = keys[j]
		sortedVals[i] = vals[j]
	}

	for i := 1; i < len(sortedKeys); i++ {
		if sortedKeys[i].Equal(sortedKeys[i-1]) {
			return nil, fmt.Errorf("series %s: duplicate key (%s, %s)",
				name, sortedKeys[i].Date.Format("2006-01-02"), sortedKeys[i].Code)
		}
	}

	return &Series{name: name, keys: sortedKeys, vals: sortedVals}, nil
}

// sortedOrder returns the permutation that sorts keys by (date, code)
func sortedOrder(keys []Key) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]].Less(keys[idx[b]])
	})
	return idx
}

// Name returns the series name
func (s *Series) Name() string { return s.name }

// SetName renames the series
func (s *Series) SetName(name string) { s.name = name }

// Len returns the number of rows
func (s *Series) Len() int { return len(s.keys) }

// Key returns the i-th key
func (s *Series) Key(i int) Key { return s.keys[i] }

// Value returns the i-th value
func (s *Series) Value(i int) float64 { return s.vals[i] }

// Keys exposes the sorted key slice. Callers must not modify it.
func (s *Series) Keys() []Key { return s.keys }

// Values exposes the value slice aligned with Keys. Callers must not modify it.
func (s *Series) Values() []float64 { return s.vals }

// DropNaN returns a copy of the series without missing values
func (s *Series) DropNaN() *Series {
	keys := make([]Key, 0, len(s.keys))
	vals := make([]float64, 0, len(s.vals))
	for i, v := range s.vals {
		if !math.IsNaN(v) {
			keys = append(keys, s.keys[i])
			vals = append(vals, v)
		}
	}
	return &Series{name: s.name, keys: keys, vals: vals}
}

// CountValid returns the number of non-missing values
func (s *Series) CountValid() int {
	n := 0
	for _, v := range s.vals {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Align inner-joins two series on their keys, keeping only rows where both
// values are present. Both inputs are key-sorted, so this is a merge join.
func Align(a, b *Series) (*Series, *Series) {
	keys := make([]Key, 0, min(len(a.keys), len(b.keys)))
	avals := make([]float64, 0, cap(keys))
	bvals := make([]float64, 0, cap(keys))

	i, j := 0, 0
	for i < len(a.keys) && j < len(b.keys) {
		switch {
		case a.keys[i].Less(b.keys[j]):
			i++
		case b.keys[j].Less(a.keys[i]):
			j++
		default:
			if !math.IsNaN(a.vals[i]) && !math.IsNaN(b.vals[j]) {
				keys = append(keys, a.keys[i])
				avals = append(avals, a.vals[i])
				bvals = append(bvals, b.vals[j])
			}
			i++
			j++
		}
	}

	return &Series{name: a.name, keys: keys, vals: avals},
		&Series{name: b.name, keys: keys, vals: bvals}
}

// DateRuns returns [start, end) row ranges of consecutive rows sharing a
// date. Keys are sorted by date first, so each date forms one run.
func (s *Series) DateRuns() [][2]int {
	var runs [][2]int
	n := len(s.keys)
	for start := 0; start < n; {
		end := start + 1
		for end < n && s.keys[end].Date.Equal(s.keys[start].Date) {
			end++
		}
		runs = append(runs, [2]int{start, end})
		start = end
	}
	return runs
}
