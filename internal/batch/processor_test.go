package batch

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/catalog"
	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/evalconfig"
	"github.com/wonny/factorlab/internal/evaluation"
	"github.com/wonny/factorlab/internal/factors"
	"github.com/wonny/factorlab/pkg/config"
	"github.com/wonny/factorlab/pkg/logger"
	"github.com/wonny/factorlab/pkg/redis"
)

// testPanel has close prices only; each code compounds at its own rate, so
// momentum ranks the codes identically every date
func testPanel(t *testing.T) *dataset.Frame {
	t.Helper()
	codes := []string{"A", "B", "C", "D", "E"}

	var keys []dataset.Key
	var closes []float64
	for d := 1; d <= 12; d++ {
		for c, code := range codes {
			keys = append(keys, dataset.Key{
				Date: time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC),
				Code: code,
			})
			growth := 1.0 + 0.01*float64(c)
			closes = append(closes, 100*math.Pow(growth, float64(d)))
		}
	}

	panel, err := dataset.BuildFrame(keys, map[string][]float64{"close": closes}, []string{"close"})
	require.NoError(t, err)
	return panel
}

func builtinDef(t *testing.T, name string) factors.Definition {
	t.Helper()
	def, err := factors.Builtins().Get(name)
	require.NoError(t, err)
	return def
}

func newProcessor(t *testing.T, registry *factors.Registry) (*Processor, *catalog.Service) {
	t.Helper()
	log := logger.NewNop()

	svc, err := catalog.NewService(catalog.NewMemoryStore(), catalog.DefaultAdmissionRule(), log)
	require.NoError(t, err)

	// Disabled redis client: every cache read misses, writes are no-ops
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)
	cache := redis.NewCache(client, "test")

	cfg := evalconfig.Default()
	cfg.Evaluation.Horizons = []int{1, 2}
	cfg.Evaluation.Quantiles = 5

	return NewProcessor(cfg, registry, evaluation.NewEngine(log), svc, cache, log), svc
}

func TestProcessorIsolatesFactorFailures(t *testing.T) {
	registry := factors.NewRegistry()
	require.NoError(t, registry.Register(builtinDef(t, "momentum_5")))
	// The panel has no volume column, so this factor cannot compute
	require.NoError(t, registry.Register(builtinDef(t, "volume_ratio_5")))

	processor, _ := newProcessor(t, registry)
	summary, err := processor.Run(context.Background(), testPanel(t))
	require.NoError(t, err)

	require.Equal(t, 2, summary.Evaluated)
	require.Equal(t, 1, summary.Failed)

	byName := map[string]FactorOutcome{}
	for _, o := range summary.Outcomes {
		byName[o.FactorName] = o
	}
	require.NotEmpty(t, byName["volume_ratio_5"].Err, "broken factor must record its error")
	require.Empty(t, byName["momentum_5"].Err, "healthy factor must not be affected")
}

func TestProcessorRejectsWithoutAdmittingDegenerate(t *testing.T) {
	// Deterministic growth per code gives a perfect rank IC on every date.
	// Zero dispersion across dates leaves the IR undefined, so the admission
	// rule fails closed and nothing is cataloged.
	registry := factors.NewRegistry()
	require.NoError(t, registry.Register(builtinDef(t, "momentum_5")))

	processor, svc := newProcessor(t, registry)
	summary, err := processor.Run(context.Background(), testPanel(t))
	require.NoError(t, err)

	require.Equal(t, 0, summary.Admitted)
	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestProcessorRejectsEmptyPanel(t *testing.T) {
	processor, _ := newProcessor(t, factors.NewRegistry())
	_, err := processor.Run(context.Background(), nil)
	require.Error(t, err)
}
