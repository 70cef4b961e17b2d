package dataset

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// LoadCSV reads a long-format daily panel from a CSV file into a Frame.
// The file must have "date" (YYYY-MM-DD) and "code" columns; every other
// column is loaded as a float64 panel column. Rows outside [from, to] are
// dropped; pass zero times to keep everything.
func LoadCSV(path string, from, to time.Time) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open panel csv: %w", err)
	}
	defer file.Close()

	// Force string parsing for the index columns so codes keep leading zeros
	df := dataframe.ReadCSV(file, dataframe.WithTypes(map[string]series.Type{
		"date": series.String,
		"code": series.String,
	}))
	if df.Err != nil {
		return nil, fmt.Errorf("read panel csv: %w", df.Err)
	}

	names := df.Names()
	hasDate, hasCode := false, false
	var valueCols []string
	for _, name := range names {
		switch name {
		case "date":
			hasDate = true
		case "code":
			hasCode = true
		default:
			valueCols = append(valueCols, name)
		}
	}
	if !hasDate || !hasCode {
		return nil, fmt.Errorf("panel csv must have date and code columns, got %v", names)
	}

	dateStrs := df.Col("date").Records()
	codes := df.Col("code").Records()

	keep := make([]bool, df.Nrow())
	keys := make([]Key, 0, df.Nrow())
	for i := range dateStrs {
		d, err := time.Parse("2006-01-02", dateStrs[i])
		if err != nil {
			return nil, fmt.Errorf("panel csv row %d: bad date %q: %w", i, dateStrs[i], err)
		}
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		keep[i] = true
		keys = append(keys, Key{Date: d, Code: codes[i]})
	}

	cols := make(map[string][]float64, len(valueCols))
	for _, name := range valueCols {
		all := df.Col(name).Float() // non-numeric cells become NaN
		vals := make([]float64, 0, len(keys))
		for i, v := range all {
			if keep[i] {
				vals = append(vals, v)
			}
		}
		cols[name] = vals
	}

	return BuildFrame(keys, cols, valueCols)
}
