package evaluation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/pkg/logger"
)

func TestRegistryHasBuiltins(t *testing.T) {
	names := List()
	require.Contains(t, names, "common")
	require.Contains(t, names, "fast")

	if _, err := Get("common"); err != nil {
		t.Errorf("Get(common) failed: %v", err)
	}
	if _, err := Get("nope"); err == nil {
		t.Error("expected error for unknown evaluator")
	}
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	err := Register(&CommonEvaluator{})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEngineEvaluateMultiHorizon(t *testing.T) {
	// 6 dates, 5 codes; factor tracks the code index, prices trend with it
	var keys []dataset.Key
	var closes, fv []float64
	codes := []string{"A", "B", "C", "D", "E"}
	for d := 1; d <= 6; d++ {
		for c, code := range codes {
			keys = append(keys, dataset.Key{Date: day(d), Code: code})
			growth := 1.0 + 0.01*float64(c)
			closes = append(closes, 100*math.Pow(growth, float64(d)))
			fv = append(fv, float64(c))
		}
	}

	panel, err := dataset.BuildFrame(keys, map[string][]float64{"close": closes}, []string{"close"})
	require.NoError(t, err)
	factor, err := dataset.NewSeries("trend", keys, fv)
	require.NoError(t, err)

	engine := NewEngine(logger.NewNop())
	p := DefaultParams()
	p.Q = 5

	results, err := engine.EvaluateMultiHorizon("common", factor, panel, "close", ReturnSimple, []int{1, 2}, p)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, h := range []int{1, 2} {
		res := results[h]
		require.NotNil(t, res, "missing horizon %d", h)
		require.Equal(t, h, res.Horizon)
		require.Equal(t, "trend", res.FactorName)
		// Higher code index always earns more: perfect rank IC
		require.InDelta(t, 1.0, res.Metrics[MetricRankICMean], 1e-9)
	}
}

func TestEngineMultiHorizonValidation(t *testing.T) {
	panel, err := dataset.BuildFrame(
		[]dataset.Key{{Date: day(1), Code: "A"}},
		map[string][]float64{"close": {100}},
		[]string{"close"})
	require.NoError(t, err)
	factor, err := dataset.NewSeries("f", []dataset.Key{{Date: day(1), Code: "A"}}, []float64{1})
	require.NoError(t, err)

	engine := NewEngine(logger.NewNop())

	_, err = engine.EvaluateMultiHorizon("common", factor, panel, "close", ReturnSimple, nil, DefaultParams())
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = engine.EvaluateMultiHorizon("nope", factor, panel, "close", ReturnSimple, []int{1}, DefaultParams())
	require.Error(t, err)
}
