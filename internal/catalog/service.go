package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/factorlab/internal/evaluation"
	"github.com/wonny/factorlab/pkg/logger"
)

// Service is the admission front door: it applies the rule to evaluation
// results and records the entries that pass.
type Service struct {
	store Store
	rule  AdmissionRule
	log   *logger.Logger
}

// NewService creates a catalog service
func NewService(store Store, rule AdmissionRule, log *logger.Logger) (*Service, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return &Service{store: store, rule: rule, log: log}, nil
}

// Rule returns the service's admission thresholds
func (s *Service) Rule() AdmissionRule { return s.rule }

// ManualAdmit records an operator-approved factor, bypassing the rule
func (s *Service) ManualAdmit(ctx context.Context, e Entry) error {
	if e.FactorName == "" {
		return fmt.Errorf("catalog: factor name is required")
	}
	e.Source = SourceManual
	if e.AdmittedAt.IsZero() {
		e.AdmittedAt = time.Now().UTC()
	}
	if err := s.store.Put(ctx, e); err != nil {
		return err
	}

	s.log.WithFields(map[string]interface{}{
		"factor": e.FactorName,
		"source": e.Source,
	}).Info("factor admitted to catalog")
	return nil
}

// AutoAdmit applies the admission rule to a factor's multi-horizon results
// and catalogs the first passing horizon. Returns the recorded entry and
// false when no horizon passes.
func (s *Service) AutoAdmit(ctx context.Context, factorName, version, evaluatorName string, results map[int]*evaluation.EvalResult) (Entry, bool, error) {
	horizon, ok := s.rule.FirstPassingHorizon(results)
	if !ok {
		s.log.WithField("factor", factorName).Debug("no horizon passed admission")
		return Entry{}, false, nil
	}

	res := results[horizon]
	e := Entry{
		FactorName: factorName,
		Version:    version,
		Evaluator:  evaluatorName,
		Horizon:    horizon,
		Metrics:    res.Metrics,
		Source:     SourceAuto,
		AdmittedAt: time.Now().UTC(),
	}
	if err := s.store.Put(ctx, e); err != nil {
		return Entry{}, false, err
	}

	s.log.WithFields(map[string]interface{}{
		"factor":  factorName,
		"horizon": horizon,
		"source":  e.Source,
	}).Info("factor admitted to catalog")
	return e, true, nil
}

// List returns the catalog contents
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.store.List(ctx)
}

// Get returns one catalog entry
func (s *Service) Get(ctx context.Context, factorName string) (Entry, error) {
	return s.store.Get(ctx, factorName)
}

// Remove deletes one catalog entry
func (s *Service) Remove(ctx context.Context, factorName string) error {
	return s.store.Delete(ctx, factorName)
}
