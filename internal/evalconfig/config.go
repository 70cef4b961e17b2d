package evalconfig

import (
	"fmt"

	"github.com/wonny/factorlab/internal/catalog"
	"github.com/wonny/factorlab/internal/evaluation"
)

// Config is the research run definition loaded from YAML: which evaluator
// runs, with which parameters, at which horizons, behind which admission
// thresholds. One file describes one reproducible run.
type Config struct {
	Meta       Meta                  `yaml:"meta" json:"meta"`
	Evaluation Evaluation            `yaml:"evaluation" json:"evaluation"`
	Admission  catalog.AdmissionRule `yaml:"admission" json:"admission"`
}

// Meta identifies the run
type Meta struct {
	RunID       string `yaml:"run_id" json:"run_id"`
	Description string `yaml:"description" json:"description"`
}

// Evaluation selects the evaluator and its parameters
type Evaluation struct {
	Evaluator  string  `yaml:"evaluator" json:"evaluator"`
	Quantiles  int     `yaml:"quantiles" json:"quantiles"`
	TopPct     float64 `yaml:"top_pct" json:"top_pct"`
	LongHigh   bool    `yaml:"long_high" json:"long_high"`
	Horizons   []int   `yaml:"horizons" json:"horizons"`
	Policy     string  `yaml:"quantile_policy" json:"quantile_policy"`
	ReturnKind string  `yaml:"return_kind" json:"return_kind"`
	Workers    int     `yaml:"workers" json:"workers"`
}

// Params converts the evaluation section into evaluator parameters at one
// horizon
func (e Evaluation) Params(horizon int) evaluation.Params {
	return evaluation.Params{
		Q:        e.Quantiles,
		TopPct:   e.TopPct,
		LongHigh: e.LongHigh,
		Horizon:  horizon,
		Policy:   evaluation.QuantilePolicy(e.Policy),
		Workers:  e.Workers,
	}
}

// Default returns a runnable configuration with standard values
func Default() *Config {
	return &Config{
		Meta: Meta{RunID: "default"},
		Evaluation: Evaluation{
			Evaluator:  "fast",
			Quantiles:  10,
			TopPct:     0.2,
			LongHigh:   true,
			Horizons:   []int{1, 5, 20},
			Policy:     string(evaluation.QuantileEqualCount),
			ReturnKind: evaluation.ReturnSimple,
		},
		Admission: catalog.DefaultAdmissionRule(),
	}
}

// Validate checks the whole config
func Validate(cfg *Config) error {
	if cfg.Meta.RunID == "" {
		return fmt.Errorf("evalconfig: meta.run_id is required")
	}
	if cfg.Evaluation.Evaluator == "" {
		return fmt.Errorf("evalconfig: evaluation.evaluator is required")
	}
	if len(cfg.Evaluation.Horizons) == 0 {
		return fmt.Errorf("evalconfig: at least one horizon is required")
	}
	seen := make(map[int]bool)
	for _, h := range cfg.Evaluation.Horizons {
		if h < 1 {
			return fmt.Errorf("evalconfig: horizon must be >= 1, got %d", h)
		}
		if seen[h] {
			return fmt.Errorf("evalconfig: duplicate horizon %d", h)
		}
		seen[h] = true
	}
	if k := cfg.Evaluation.ReturnKind; k != evaluation.ReturnSimple && k != evaluation.ReturnLog {
		return fmt.Errorf("evalconfig: return_kind must be %q or %q, got %q",
			evaluation.ReturnSimple, evaluation.ReturnLog, k)
	}
	// Horizon itself is validated per run; 1 stands in here
	if err := cfg.Evaluation.Params(1).Validate(); err != nil {
		return fmt.Errorf("evalconfig: %w", err)
	}
	if err := cfg.Admission.Validate(); err != nil {
		return fmt.Errorf("evalconfig: %w", err)
	}
	return nil
}
