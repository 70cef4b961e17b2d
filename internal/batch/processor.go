package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/factorlab/internal/catalog"
	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/evalconfig"
	"github.com/wonny/factorlab/internal/evaluation"
	"github.com/wonny/factorlab/internal/factors"
	"github.com/wonny/factorlab/pkg/logger"
	"github.com/wonny/factorlab/pkg/redis"
)

// metricsCacheTTL bounds how long cached per-factor metrics stay valid.
// A new panel load within the window reuses them.
const metricsCacheTTL = 12 * time.Hour

// FactorOutcome is the per-factor record of one batch run
type FactorOutcome struct {
	FactorName string             `json:"factor_name"`
	Admitted   bool               `json:"admitted"`
	Horizon    int                `json:"horizon,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Err        string             `json:"error,omitempty"`
}

// Summary aggregates a batch run
type Summary struct {
	RunID      string          `json:"run_id"`
	ConfigHash string          `json:"config_hash"`
	Evaluated  int             `json:"evaluated"`
	Admitted   int             `json:"admitted"`
	Failed     int             `json:"failed"`
	Elapsed    string          `json:"elapsed"`
	Outcomes   []FactorOutcome `json:"outcomes"`
}

// cachedEval is the redis payload for one factor's multi-horizon metrics
type cachedEval struct {
	PanelFingerprint string                     `json:"panel_fingerprint"`
	Metrics          map[int]map[string]float64 `json:"metrics"`
}

// Processor runs every registered factor through evaluation and admission.
// One factor failing never stops the batch; its error lands in the summary.
type Processor struct {
	cfg      *evalconfig.Config
	registry *factors.Registry
	engine   *evaluation.Engine
	svc      *catalog.Service
	cache    *redis.Cache
	log      *logger.Logger
}

// NewProcessor wires a batch processor. cache may be a disabled client's
// cache; lookups then simply miss.
func NewProcessor(cfg *evalconfig.Config, registry *factors.Registry, engine *evaluation.Engine, svc *catalog.Service, cache *redis.Cache, log *logger.Logger) *Processor {
	return &Processor{
		cfg:      cfg,
		registry: registry,
		engine:   engine,
		svc:      svc,
		cache:    cache,
		log:      log,
	}
}

// Run evaluates every registered factor over the panel and admits the
// passers
func (p *Processor) Run(ctx context.Context, panel *dataset.Frame) (*Summary, error) {
	if panel == nil || panel.Len() == 0 {
		return nil, fmt.Errorf("batch: empty panel")
	}

	configHash, err := evalconfig.Hash(p.cfg)
	if err != nil {
		return nil, fmt.Errorf("batch: hash config: %w", err)
	}
	fingerprint := panelFingerprint(panel, configHash)

	start := time.Now()
	defs := p.registry.All()
	summary := &Summary{
		RunID:      p.cfg.Meta.RunID,
		ConfigHash: configHash,
		Outcomes:   make([]FactorOutcome, 0, len(defs)),
	}

	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome := p.processOne(ctx, def, panel, fingerprint)
		summary.Outcomes = append(summary.Outcomes, outcome)

		summary.Evaluated++
		if outcome.Err != "" {
			summary.Failed++
		}
		if outcome.Admitted {
			summary.Admitted++
		}
	}

	summary.Elapsed = time.Since(start).String()
	p.log.WithFields(map[string]interface{}{
		"run_id":    summary.RunID,
		"evaluated": summary.Evaluated,
		"admitted":  summary.Admitted,
		"failed":    summary.Failed,
		"elapsed":   summary.Elapsed,
	}).Info("batch run complete")
	return summary, nil
}

// processOne isolates a single factor: compute, evaluate, admit. Any error
// is captured in the outcome instead of propagating.
func (p *Processor) processOne(ctx context.Context, def factors.Definition, panel *dataset.Frame, fingerprint string) FactorOutcome {
	outcome := FactorOutcome{FactorName: def.Name}

	results, err := p.evaluateWithCache(ctx, def, panel, fingerprint)
	if err != nil {
		p.log.WithError(err).WithField("factor", def.Name).Error("factor evaluation failed")
		outcome.Err = err.Error()
		return outcome
	}

	entry, admitted, err := p.svc.AutoAdmit(ctx, def.Name, def.Version, p.cfg.Evaluation.Evaluator, results)
	if err != nil {
		p.log.WithError(err).WithField("factor", def.Name).Error("admission failed")
		outcome.Err = err.Error()
		return outcome
	}

	outcome.Admitted = admitted
	if admitted {
		outcome.Horizon = entry.Horizon
		outcome.Metrics = entry.Metrics
	}
	return outcome
}

// evaluateWithCache returns the factor's multi-horizon results, reusing
// cached metrics when the panel and config are unchanged. Cached hits carry
// metrics only; artifacts are recomputed on demand.
func (p *Processor) evaluateWithCache(ctx context.Context, def factors.Definition, panel *dataset.Frame, fingerprint string) (map[int]*evaluation.EvalResult, error) {
	cacheKey := fmt.Sprintf("eval:%s:%s", def.Name, def.Version)

	var cached cachedEval
	if hit, err := p.cache.Get(ctx, cacheKey, &cached); err == nil && hit && cached.PanelFingerprint == fingerprint {
		p.log.WithField("factor", def.Name).Debug("metrics cache hit")
		results := make(map[int]*evaluation.EvalResult, len(cached.Metrics))
		for h, m := range cached.Metrics {
			results[h] = &evaluation.EvalResult{
				EvaluatorName: p.cfg.Evaluation.Evaluator,
				FactorName:    def.Name,
				Horizon:       h,
				Metrics:       m,
			}
		}
		return results, nil
	}

	factor, err := def.Compute(panel)
	if err != nil {
		return nil, err
	}

	results, err := p.engine.EvaluateMultiHorizon(
		p.cfg.Evaluation.Evaluator,
		factor,
		panel,
		"close",
		p.cfg.Evaluation.ReturnKind,
		p.cfg.Evaluation.Horizons,
		p.cfg.Evaluation.Params(1),
	)
	if err != nil {
		return nil, err
	}

	payload := cachedEval{
		PanelFingerprint: fingerprint,
		Metrics:          make(map[int]map[string]float64, len(results)),
	}
	for h, res := range results {
		payload.Metrics[h] = res.Metrics
	}
	if err := p.cache.Set(ctx, cacheKey, payload, metricsCacheTTL); err != nil {
		p.log.WithError(err).WithField("factor", def.Name).Warn("metrics cache write failed")
	}

	return results, nil
}

// panelFingerprint identifies a panel-and-config combination for cache
// scoping: row count, date range, and the config hash
func panelFingerprint(panel *dataset.Frame, configHash string) string {
	keys := panel.Keys()
	first := keys[0].Date.Format("2006-01-02")
	last := keys[len(keys)-1].Date.Format("2006-01-02")
	return fmt.Sprintf("%d:%s:%s:%s", panel.Len(), first, last, configHash)
}
