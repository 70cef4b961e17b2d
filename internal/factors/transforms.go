package factors

import "math"

// Panel columns the built-in transforms read.
const (
	FieldClose  = "close"
	FieldVolume = "volume"
)

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// momentum is the w-day price change: close[t] / close[t-w] - 1
func momentum(fields map[string][]float64, window int) []float64 {
	closes := fields[FieldClose]
	out := nanSlice(len(closes))
	for t := window; t < len(closes); t++ {
		p0, p1 := closes[t-window], closes[t]
		if math.IsNaN(p0) || math.IsNaN(p1) || p0 == 0 {
			continue
		}
		out[t] = p1/p0 - 1.0
	}
	return out
}

// reversal is negated momentum: recent losers score high
func reversal(fields map[string][]float64, window int) []float64 {
	out := momentum(fields, window)
	for i, v := range out {
		if !math.IsNaN(v) {
			out[i] = -v
		}
	}
	return out
}

// volatility is the negated sample std of daily returns over the window.
// Negated so that low-volatility names score high.
func volatility(fields map[string][]float64, window int) []float64 {
	closes := fields[FieldClose]
	n := len(closes)

	rets := nanSlice(n)
	for t := 1; t < n; t++ {
		p0, p1 := closes[t-1], closes[t]
		if math.IsNaN(p0) || math.IsNaN(p1) || p0 == 0 {
			continue
		}
		rets[t] = p1/p0 - 1.0
	}

	out := nanSlice(n)
	for t := window; t < n; t++ {
		sum, cnt := 0.0, 0
		for k := t - window + 1; k <= t; k++ {
			if !math.IsNaN(rets[k]) {
				sum += rets[k]
				cnt++
			}
		}
		if cnt < 2 {
			continue
		}
		m := sum / float64(cnt)
		ss := 0.0
		for k := t - window + 1; k <= t; k++ {
			if !math.IsNaN(rets[k]) {
				d := rets[k] - m
				ss += d * d
			}
		}
		out[t] = -math.Sqrt(ss / float64(cnt-1))
	}
	return out
}

// volumeRatio compares today's volume to its trailing w-day average
func volumeRatio(fields map[string][]float64, window int) []float64 {
	volumes := fields[FieldVolume]
	n := len(volumes)
	out := nanSlice(n)
	for t := window; t < n; t++ {
		sum, cnt := 0.0, 0
		for k := t - window; k < t; k++ {
			if !math.IsNaN(volumes[k]) {
				sum += volumes[k]
				cnt++
			}
		}
		if cnt == 0 || sum == 0 || math.IsNaN(volumes[t]) {
			continue
		}
		out[t] = volumes[t] / (sum / float64(cnt))
	}
	return out
}

// updownPower measures directed volume pressure over the window: volume on
// up days minus volume on down days, scaled by total window volume
func updownPower(fields map[string][]float64, window int) []float64 {
	closes := fields[FieldClose]
	volumes := fields[FieldVolume]
	n := len(closes)

	out := nanSlice(n)
	for t := window; t < n; t++ {
		up, down, total := 0.0, 0.0, 0.0
		for k := t - window + 1; k <= t; k++ {
			p0, p1, v := closes[k-1], closes[k], volumes[k]
			if math.IsNaN(p0) || math.IsNaN(p1) || math.IsNaN(v) {
				continue
			}
			total += v
			if p1 > p0 {
				up += v
			} else if p1 < p0 {
				down += v
			}
		}
		if total == 0 {
			continue
		}
		out[t] = (up - down) / total
	}
	return out
}
