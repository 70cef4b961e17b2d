package evaluation

import (
	"runtime"
	"sync"
)

// Kernel runs the per-date cross-sectional statistics over a dense panel
// layout: one flat value array per side plus [start, end) offsets for each
// date bucket. Dates are independent, so the kernel fans them out across a
// fixed worker pool; every worker writes only its own date's output slot.
//
// SSOT: the per-date math itself lives in stats.go (corrPair, groupMeans),
// shared with the common evaluator, so both paths produce identical numbers.
type Kernel struct {
	Workers int // 0 falls back to GOMAXPROCS
}

func (k *Kernel) workers(dates int) int {
	w := k.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if w > dates {
		w = dates
	}
	if w < 1 {
		w = 1
	}
	return w
}

// run dispatches one call per date index across the worker pool
func (k *Kernel) run(dates int, fn func(d int)) {
	w := k.workers(dates)
	if w == 1 {
		for d := 0; d < dates; d++ {
			fn(d)
		}
		return
	}

	jobs := make(chan int, dates)
	var wg sync.WaitGroup
	for i := 0; i < w; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range jobs {
				fn(d)
			}
		}()
	}
	for d := 0; d < dates; d++ {
		jobs <- d
	}
	close(jobs)
	wg.Wait()
}

// CorrelationsByDate computes linear and rank IC for every date bucket.
// Degenerate dates come back NaN in both outputs.
func (k *Kernel) CorrelationsByDate(factor, ret []float64, offsets [][2]int) (ic, rankIC []float64) {
	ic = make([]float64, len(offsets))
	rankIC = make([]float64, len(offsets))

	k.run(len(offsets), func(d int) {
		lo, hi := offsets[d][0], offsets[d][1]
		ic[d], rankIC[d] = corrPair(factor[lo:hi], ret[lo:hi])
	})
	return ic, rankIC
}

// GroupReturnsByDate computes the q-bin mean-return row for every date
// bucket. A nil row marks a date that could not be grouped.
func (k *Kernel) GroupReturnsByDate(factor, ret []float64, offsets [][2]int, q int, policy QuantilePolicy) [][]float64 {
	rows := make([][]float64, len(offsets))

	k.run(len(offsets), func(d int) {
		lo, hi := offsets[d][0], offsets[d][1]
		if row, ok := groupMeans(factor[lo:hi], ret[lo:hi], q, policy); ok {
			rows[d] = row
		}
	})
	return rows
}
