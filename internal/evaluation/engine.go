package evaluation

import (
	"fmt"
	"sync"
	"time"

	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/pkg/logger"
)

// Engine drives factor evaluation across evaluators and horizons
type Engine struct {
	log *logger.Logger
}

// NewEngine creates an evaluation engine
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{log: log}
}

// EvaluateOne runs a single (factor, return, horizon) evaluation through a
// registered evaluator
func (e *Engine) EvaluateOne(evaluatorName string, factor, ret *dataset.Series, p Params) (*EvalResult, error) {
	ev, err := Get(evaluatorName)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := ev.Evaluate(factor, ret, p)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q with %q: %w", factor.Name(), evaluatorName, err)
	}

	e.log.WithFields(map[string]interface{}{
		"evaluator": evaluatorName,
		"factor":    res.FactorName,
		"horizon":   p.Horizon,
		"metrics":   len(res.Metrics),
		"elapsed":   time.Since(start).String(),
	}).Debug("factor evaluated")
	return res, nil
}

// EvaluateMultiHorizon evaluates one factor at every horizon. Forward
// returns for all horizons are built once from the price panel; the
// per-horizon evaluations then run concurrently, each writing its own slot.
func (e *Engine) EvaluateMultiHorizon(evaluatorName string, factor *dataset.Series, panel *dataset.Frame, priceCol, returnKind string, horizons []int, p Params) (map[int]*EvalResult, error) {
	if len(horizons) == 0 {
		return nil, fmt.Errorf("%w: no horizons given", ErrInvalidConfig)
	}
	if _, err := Get(evaluatorName); err != nil {
		return nil, err
	}

	fwd, err := BuildForwardReturns(panel, horizons, priceCol, returnKind)
	if err != nil {
		return nil, err
	}

	type slot struct {
		res *EvalResult
		err error
	}
	slots := make([]slot, len(horizons))

	var wg sync.WaitGroup
	for i, h := range horizons {
		ret, err := fwd.Column(ReturnColumn(h))
		if err != nil {
			return nil, err
		}

		wg.Add(1)
		go func(i, h int, ret *dataset.Series) {
			defer wg.Done()
			hp := p
			hp.Horizon = h
			res, err := e.EvaluateOne(evaluatorName, factor, ret, hp)
			slots[i] = slot{res: res, err: err}
		}(i, h, ret)
	}
	wg.Wait()

	out := make(map[int]*EvalResult, len(horizons))
	for i, h := range horizons {
		if slots[i].err != nil {
			return nil, slots[i].err
		}
		out[h] = slots[i].res
	}

	e.log.WithFields(map[string]interface{}{
		"factor":   factor.Name(),
		"horizons": horizons,
	}).Info("multi-horizon evaluation complete")
	return out, nil
}
