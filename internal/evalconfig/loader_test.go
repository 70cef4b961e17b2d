package evalconfig

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `meta:
  run_id: test-run
  description: fixture

evaluation:
  evaluator: fast
  quantiles: 10
  top_pct: 0.2
  long_high: true
  horizons: [1, 5, 20]
  quantile_policy: equal_count
  return_kind: simple
  workers: 2

admission:
  min_abs_rank_ic: 0.02
  min_abs_rank_ic_ir: 0.3
  max_turnover_per_day: 0.5
  min_abs_monotonic: 0.7
`

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, raw, err := Load(writeYAML(t, validYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(raw) == 0 {
		t.Error("raw bytes missing")
	}

	if cfg.Meta.RunID != "test-run" {
		t.Errorf("run_id = %q", cfg.Meta.RunID)
	}
	if cfg.Evaluation.Evaluator != "fast" || cfg.Evaluation.Quantiles != 10 {
		t.Errorf("evaluation section = %+v", cfg.Evaluation)
	}
	if got := cfg.Evaluation.Horizons; len(got) != 3 || got[0] != 1 || got[2] != 20 {
		t.Errorf("horizons = %v", got)
	}
	if cfg.Admission.MaxTurnoverPerDay != 0.5 {
		t.Errorf("admission = %+v", cfg.Admission)
	}

	p := cfg.Evaluation.Params(5)
	if p.Horizon != 5 || p.Q != 10 || !p.LongHigh {
		t.Errorf("params = %+v", p)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	yaml := validYAML + "\nextra_section:\n  oops: 1\n"
	if _, _, err := Load(writeYAML(t, yaml)); err == nil {
		t.Error("unknown fields must fail the load")
	}
}

func TestValidate(t *testing.T) {
	base := Default()
	if err := Validate(base); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing run id", func(c *Config) { c.Meta.RunID = "" }},
		{"missing evaluator", func(c *Config) { c.Evaluation.Evaluator = "" }},
		{"no horizons", func(c *Config) { c.Evaluation.Horizons = nil }},
		{"bad horizon", func(c *Config) { c.Evaluation.Horizons = []int{0} }},
		{"duplicate horizon", func(c *Config) { c.Evaluation.Horizons = []int{5, 5} }},
		{"bad return kind", func(c *Config) { c.Evaluation.ReturnKind = "geometric" }},
		{"bad quantiles", func(c *Config) { c.Evaluation.Quantiles = 1 }},
		{"bad admission", func(c *Config) { c.Admission.MaxTurnoverPerDay = 2.0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestHashDeterministic(t *testing.T) {
	a, _, err := Load(writeYAML(t, validYAML))
	if err != nil {
		t.Fatal(err)
	}

	h1, err := Hash(a)
	if err != nil {
		t.Fatal(err)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}

	h2, _ := Hash(a)
	if h1 != h2 {
		t.Error("hash not deterministic")
	}

	b := Default()
	hb, _ := Hash(b)
	if h1 == hb {
		t.Error("different configs must hash differently")
	}
}
