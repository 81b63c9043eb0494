package model

import (
	"strings"
	"testing"
)

func TestReport_AddCountsOutcomes(t *testing.T) {
	var rep Report
	rep.Records = 2
	for _, o := range []StepOutcome{OutcomePerformed, OutcomePerformed, OutcomeNotFound, OutcomeSkipped, OutcomeFailed} {
		rep.Add(StepResult{Outcome: o})
	}

	if rep.Attempts != 5 {
		t.Errorf("Attempts = %d, want 5", rep.Attempts)
	}
	if rep.Performed != 2 || rep.NotFound != 1 || rep.Skipped != 1 || rep.Failed != 1 {
		t.Errorf("unexpected counters: %+v", rep)
	}
	if len(rep.Results) != 5 {
		t.Errorf("Results = %d, want 5", len(rep.Results))
	}
	if rep.Clean() {
		t.Error("report with skips should not be clean")
	}
	if !strings.Contains(rep.Summary(), "2 performed") {
		t.Errorf("summary missing performed count: %s", rep.Summary())
	}
}

func TestReport_CleanRun(t *testing.T) {
	var rep Report
	rep.Add(StepResult{Outcome: OutcomePerformed})
	rep.Add(StepResult{Outcome: OutcomeLocated})
	if !rep.Clean() {
		t.Error("performed and located steps should leave the report clean")
	}
}

func TestStepResult_OK(t *testing.T) {
	tests := []struct {
		outcome StepOutcome
		want    bool
	}{
		{OutcomePerformed, true},
		{OutcomeLocated, true},
		{OutcomeNotFound, false},
		{OutcomeSkipped, false},
		{OutcomeFailed, false},
	}
	for _, tt := range tests {
		if got := (StepResult{Outcome: tt.outcome}).OK(); got != tt.want {
			t.Errorf("OK() for %v = %v, want %v", tt.outcome, got, tt.want)
		}
	}
}
