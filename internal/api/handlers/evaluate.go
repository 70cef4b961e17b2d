package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/evalconfig"
	"github.com/wonny/factorlab/internal/evaluation"
	"github.com/wonny/factorlab/internal/factors"
	"github.com/wonny/factorlab/pkg/logger"
)

// PanelLoader supplies the daily price panel for a date range
type PanelLoader interface {
	LoadPanel(ctx context.Context, from, to time.Time) (*dataset.Frame, error)
}

// EvalHandler serves on-demand factor evaluation
// SSOT: evaluation API surface lives in this struct
type EvalHandler struct {
	cfg      *evalconfig.Config
	registry *factors.Registry
	engine   *evaluation.Engine
	loader   PanelLoader
	logger   *logger.Logger
}

// NewEvalHandler creates an evaluation handler
func NewEvalHandler(cfg *evalconfig.Config, registry *factors.Registry, engine *evaluation.Engine, loader PanelLoader, log *logger.Logger) *EvalHandler {
	return &EvalHandler{
		cfg:      cfg,
		registry: registry,
		engine:   engine,
		loader:   loader,
		logger:   log,
	}
}

// ListFactors returns the registered factor definitions
// GET /api/factors
func (h *EvalHandler) ListFactors(w http.ResponseWriter, r *http.Request) {
	names := h.registry.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(names),
		"factors": names,
	})
}

// evaluateRequest is the POST body for /api/evaluate
type evaluateRequest struct {
	Factor   string `json:"factor"`
	From     string `json:"from"` // YYYY-MM-DD
	To       string `json:"to"`   // YYYY-MM-DD
	Horizons []int  `json:"horizons,omitempty"`
}

// horizonResult is one horizon's slice of the response
type horizonResult struct {
	Horizon int                `json:"horizon"`
	Metrics map[string]float64 `json:"metrics"`
	Notes   map[string]string  `json:"notes,omitempty"`
}

// Evaluate computes a factor over the requested window and returns its
// multi-horizon metrics
// POST /api/evaluate
func (h *EvalHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	def, err := h.registry.Get(req.Factor)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}

	horizons := req.Horizons
	if len(horizons) == 0 {
		horizons = h.cfg.Evaluation.Horizons
	}
	for _, hz := range horizons {
		if hz < 1 {
			writeError(w, http.StatusBadRequest, "horizons must be >= 1")
			return
		}
	}

	panel, err := h.loader.LoadPanel(ctx, from, to)
	if err != nil {
		h.logger.WithError(err).Error("panel load failed")
		writeError(w, http.StatusInternalServerError, "failed to load panel")
		return
	}
	if panel.Len() == 0 {
		writeError(w, http.StatusUnprocessableEntity, "panel is empty for the requested range")
		return
	}

	factor, err := def.Compute(panel)
	if err != nil {
		h.logger.WithError(err).WithField("factor", def.Name).Error("factor compute failed")
		writeError(w, http.StatusInternalServerError, "failed to compute factor")
		return
	}

	results, err := h.engine.EvaluateMultiHorizon(
		h.cfg.Evaluation.Evaluator, factor, panel,
		"close", h.cfg.Evaluation.ReturnKind, horizons, h.cfg.Evaluation.Params(1))
	if err != nil {
		h.logger.WithError(err).WithField("factor", def.Name).Error("evaluation failed")
		writeError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	out := make([]horizonResult, 0, len(results))
	for _, hz := range horizons {
		res := results[hz]
		out = append(out, horizonResult{Horizon: hz, Metrics: res.Metrics, Notes: res.Notes})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"factor":  def.Name,
		"version": def.Version,
		"from":    req.From,
		"to":      req.To,
		"results": out,
	})
}
