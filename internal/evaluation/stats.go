package evaluation

import (
	"math"
	"sort"
)

// stdFloor guards the information-ratio and t-stat divisions. A per-date
// metric series with (near-)zero dispersion has no meaningful IR or t.
const stdFloor = 1e-8

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

// nanMean averages the non-NaN entries; NaN when none exist
func nanMean(xs []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range xs {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// sampleStd is the n-1 denominator standard deviation
func sampleStd(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range xs {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

// summaryStats computes mean / sample std / information ratio / t-stat for a
// per-date metric series. Fewer than 2 values leaves everything undefined;
// a std at or below stdFloor leaves IR and t undefined.
func summaryStats(xs []float64) (m, std, ir, t float64) {
	if len(xs) < 2 {
		nan := math.NaN()
		return nan, nan, nan, nan
	}
	m = mean(xs)
	std = sampleStd(xs, m)
	if std <= stdFloor {
		return m, std, math.NaN(), math.NaN()
	}
	ir = m / std
	t = m / (std / math.Sqrt(float64(len(xs))))
	return m, std, ir, t
}

// pearson computes the Pearson correlation coefficient. NaN when either
// vector is degenerate.
func pearson(x, y []float64) float64 {
	n := len(x)
	if n < 2 || len(y) != n {
		return math.NaN()
	}
	mx, my := mean(x), mean(y)
	var num, dx, dy float64
	for i := 0; i < n; i++ {
		a := x[i] - mx
		b := y[i] - my
		num += a * b
		dx += a * a
		dy += b * b
	}
	den := math.Sqrt(dx * dy)
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// rankAverage assigns 1-based ranks with ties sharing their average rank
func rankAverage(x []float64) []float64 {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i + 1
		for j < n && x[idx[j]] == x[idx[i]] {
			j++
		}
		// positions i..j-1 hold tied values; all get the average rank
		avg := float64(i+j+1) / 2.0 // ((i+1) + j) / 2 in 1-based ranks
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}
	return ranks
}

// spearman is the rank correlation via the double-rank trick: rank both
// arrays, then Pearson-correlate the ranks
func spearman(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	return pearson(rankAverage(x), rankAverage(y))
}

// allEqual reports whether the slice has zero cross-sectional variance
func allEqual(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] != xs[0] {
			return false
		}
	}
	return true
}

// corrPair computes the per-date linear and rank IC of one cross-section.
// Both are NaN when the date is degenerate: fewer than 2 observations or
// zero variance on either side. Shared by the common evaluator and the
// accelerated kernel so the two paths agree bit for bit.
func corrPair(factor, ret []float64) (ic, rankIC float64) {
	if len(factor) < 2 || allEqual(factor) || allEqual(ret) {
		return math.NaN(), math.NaN()
	}
	return pearson(factor, ret), spearman(factor, ret)
}

// quantile returns the p-quantile of sorted values with linear interpolation
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}

// equalCountLabels partitions values into q bins of (near-)equal size:
// sort ascending, assign the first n/q elements to bin 0 and so on, with the
// n mod q remainder spread over the earliest bins. Ties are broken by input
// position, so the assignment is deterministic.
func equalCountLabels(values []float64, q int) []int {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	labels := make([]int, n)
	base := n / q
	rem := n % q
	pos := 0
	for b := 0; b < q; b++ {
		size := base
		if b < rem {
			size++
		}
		for i := 0; i < size; i++ {
			labels[idx[pos]] = b
			pos++
		}
	}
	return labels
}

// boundaryLabels partitions values by inclusive quantile boundaries.
// Duplicate boundaries caused by heavy ties are collapsed, so a degenerate
// date yields fewer than q populated bins rather than failing. Returns nil
// when fewer than two distinct boundaries remain (all values equal).
func boundaryLabels(values []float64, q int) []int {
	n := len(values)
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	edges := make([]float64, 0, q+1)
	for i := 0; i <= q; i++ {
		e := quantile(sorted, float64(i)/float64(q))
		if len(edges) == 0 || e != edges[len(edges)-1] {
			edges = append(edges, e)
		}
	}
	if len(edges) < 2 {
		return nil
	}

	// Right-inclusive intervals: a value equal to a boundary falls into the
	// lower bin; the minimum belongs to bin 0.
	interior := edges[1 : len(edges)-1]
	labels := make([]int, n)
	for i, v := range values {
		labels[i] = sort.SearchFloat64s(interior, v)
	}
	return labels
}

// groupMeans computes the mean return per factor bin for one date's
// cross-section. The returned row always has q entries labeled 0..q-1 with
// NaN for unpopulated bins. ok is false when the date cannot be grouped
// (fewer than q observations, or no usable boundaries). Shared by the
// common evaluator and the accelerated kernel.
func groupMeans(factor, ret []float64, q int, policy QuantilePolicy) ([]float64, bool) {
	n := len(factor)
	if n < q {
		return nil, false
	}

	var labels []int
	switch policy {
	case QuantileBoundary:
		labels = boundaryLabels(factor, q)
	default:
		labels = equalCountLabels(factor, q)
	}
	if labels == nil {
		return nil, false
	}

	sums := make([]float64, q)
	counts := make([]int, q)
	for i, b := range labels {
		sums[b] += ret[i]
		counts[b]++
	}

	row := make([]float64, q)
	for b := 0; b < q; b++ {
		if counts[b] == 0 {
			row[b] = math.NaN()
		} else {
			row[b] = sums[b] / float64(counts[b])
		}
	}
	return row, true
}

// cumprod1p compounds a daily series: cumulative product of (1 + value),
// with missing days treated as flat (0) for compounding only
func cumprod1p(values []float64) []float64 {
	out := make([]float64, len(values))
	acc := 1.0
	for i, v := range values {
		if !math.IsNaN(v) {
			acc *= 1.0 + v
		}
		out[i] = acc
	}
	return out
}
