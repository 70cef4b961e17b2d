package dataset

import "time"

// Key identifies one observation in the panel: one asset on one trading date.
// Keys are totally ordered by (date, code); a panel never contains duplicates.
type Key struct {
	Date time.Time
	Code string
}

// Less reports whether k orders before o in (date, code) order
func (k Key) Less(o Key) bool {
	if !k.Date.Equal(o.Date) {
		return k.Date.Before(o.Date)
	}
	return k.Code < o.Code
}

// Equal reports whether two keys identify the same observation
func (k Key) Equal(o Key) bool {
	return k.Date.Equal(o.Date) && k.Code == o.Code
}
