package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/evaluation"
	"github.com/wonny/factorlab/pkg/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(NewMemoryStore(), DefaultAdmissionRule(), logger.NewNop())
	require.NoError(t, err)
	return svc
}

func TestServiceAutoAdmit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	results := map[int]*evaluation.EvalResult{
		1: {Horizon: 1, Metrics: map[string]float64{}},
		5: {Horizon: 5, Metrics: passingMetrics()},
	}

	entry, admitted, err := svc.AutoAdmit(ctx, "momentum_20", "1.0.0", "fast", results)
	require.NoError(t, err)
	require.True(t, admitted)
	require.Equal(t, 5, entry.Horizon)
	require.Equal(t, SourceAuto, entry.Source)

	got, err := svc.Get(ctx, "momentum_20")
	require.NoError(t, err)
	require.Equal(t, "1.0.0", got.Version)
	require.Equal(t, "fast", got.Evaluator)
}

func TestServiceAutoAdmitNoPass(t *testing.T) {
	svc := newTestService(t)

	results := map[int]*evaluation.EvalResult{
		1: {Horizon: 1, Metrics: map[string]float64{}},
	}
	_, admitted, err := svc.AutoAdmit(context.Background(), "flat", "1.0.0", "fast", results)
	require.NoError(t, err)
	require.False(t, admitted)

	_, err = svc.Get(context.Background(), "flat")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceRejectsDuplicateAdmission(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	results := map[int]*evaluation.EvalResult{
		1: {Horizon: 1, Metrics: passingMetrics()},
	}
	_, admitted, err := svc.AutoAdmit(ctx, "momentum_20", "1.0.0", "fast", results)
	require.NoError(t, err)
	require.True(t, admitted)

	_, _, err = svc.AutoAdmit(ctx, "momentum_20", "1.0.1", "fast", results)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestServiceManualAdmit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	err := svc.ManualAdmit(ctx, Entry{
		FactorName: "special_sauce",
		Version:    "0.1.0",
		Horizon:    10,
		Metrics:    map[string]float64{evaluation.MetricRankICMean: 0.01},
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "special_sauce")
	require.NoError(t, err)
	require.Equal(t, SourceManual, got.Source)
	require.False(t, got.AdmittedAt.IsZero())

	require.Error(t, svc.ManualAdmit(ctx, Entry{}))
}

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Entry{FactorName: "b"}))
	require.NoError(t, store.Put(ctx, Entry{FactorName: "a"}))
	err := store.Put(ctx, Entry{FactorName: "a"})
	require.True(t, errors.Is(err, ErrDuplicate))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "a", entries[0].FactorName, "list must be name-sorted")

	require.NoError(t, store.Delete(ctx, "a"))
	require.ErrorIs(t, store.Delete(ctx, "a"), ErrNotFound)
}
