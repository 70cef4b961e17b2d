package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/factorlab/internal/batch"
	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/pkg/logger"
)

// PanelLoader supplies the daily price panel for a date range.
// dataset.PriceRepository satisfies it.
type PanelLoader interface {
	LoadPanel(ctx context.Context, from, to time.Time) (*dataset.Frame, error)
}

// AdmissionJob runs the nightly factor admission batch: reload the recent
// panel, evaluate every registered factor, admit the passers.
type AdmissionJob struct {
	loader    PanelLoader
	processor *batch.Processor
	lookback  int // calendar days of panel history to load
	logger    *logger.Logger
}

// NewAdmissionJob creates the nightly admission job
func NewAdmissionJob(loader PanelLoader, processor *batch.Processor, lookbackDays int, log *logger.Logger) *AdmissionJob {
	return &AdmissionJob{
		loader:    loader,
		processor: processor,
		lookback:  lookbackDays,
		logger:    log,
	}
}

// Name returns the job name
func (j *AdmissionJob) Name() string {
	return "factor_admission"
}

// Schedule runs after the daily close data lands (7 PM on weekdays)
func (j *AdmissionJob) Schedule() string {
	return "0 0 19 * * 1-5"
}

// Run loads the panel and executes the batch
func (j *AdmissionJob) Run(ctx context.Context) error {
	to := time.Now()
	from := to.AddDate(0, 0, -j.lookback)

	j.logger.WithFields(map[string]interface{}{
		"from": from.Format("2006-01-02"),
		"to":   to.Format("2006-01-02"),
	}).Info("Starting scheduled factor admission")

	panel, err := j.loader.LoadPanel(ctx, from, to)
	if err != nil {
		return fmt.Errorf("load panel: %w", err)
	}
	if panel.Len() == 0 {
		return fmt.Errorf("panel is empty for %s..%s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	summary, err := j.processor.Run(ctx, panel)
	if err != nil {
		return fmt.Errorf("batch run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"evaluated": summary.Evaluated,
		"admitted":  summary.Admitted,
		"failed":    summary.Failed,
	}).Info("Scheduled factor admission finished")
	return nil
}
