package scheduler

import (
	"testing"
	"time"
)

func TestJobHistoryKeepsLast100(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "j", StartTime: time.Now(), Success: i%2 == 0})
	}
	if len(h.Results) != 100 {
		t.Errorf("history length = %d, want 100", len(h.Results))
	}
}

func TestJobHistoryLatestAndSuccessRate(t *testing.T) {
	h := &JobHistory{}
	if h.GetSuccessRate() != 0.0 {
		t.Error("empty history success rate should be 0")
	}

	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: false})
	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: true})

	if got := h.GetSuccessRate(); got != 0.75 {
		t.Errorf("success rate = %v, want 0.75", got)
	}

	latest := h.GetLatestResults(2)
	if len(latest) != 2 || !latest[0].Success || !latest[1].Success {
		t.Errorf("latest = %+v", latest)
	}

	if got := h.GetLatestResults(10); len(got) != 4 {
		t.Errorf("clamped latest = %d, want 4", len(got))
	}
}
