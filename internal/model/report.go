package model

import (
	"fmt"
	"time"
)

// Report aggregates step results for a whole run.
type Report struct {
	RunID     string       `yaml:"run_id"    json:"run_id"`
	Started   time.Time    `yaml:"started"   json:"started"`
	Finished  time.Time    `yaml:"finished"  json:"finished"`
	Records   int          `yaml:"records"   json:"records"`
	Attempts  int          `yaml:"attempts"  json:"attempts"`
	Performed int          `yaml:"performed" json:"performed"`
	Located   int          `yaml:"located,omitempty" json:"located,omitempty"`
	NotFound  int          `yaml:"not_found" json:"not_found"`
	Skipped   int          `yaml:"skipped"   json:"skipped"`
	Failed    int          `yaml:"failed"    json:"failed"`
	Results   []StepResult `yaml:"results"   json:"results"`
}

// Add appends r and updates the counters.
func (rep *Report) Add(r StepResult) {
	rep.Attempts++
	switch r.Outcome {
	case OutcomePerformed:
		rep.Performed++
	case OutcomeLocated:
		rep.Located++
	case OutcomeNotFound:
		rep.NotFound++
	case OutcomeSkipped:
		rep.Skipped++
	case OutcomeFailed:
		rep.Failed++
	}
	rep.Results = append(rep.Results, r)
}

// Clean reports whether every attempted step reached its element.
func (rep *Report) Clean() bool {
	return rep.NotFound == 0 && rep.Skipped == 0 && rep.Failed == 0
}

// Summary is the one-line completion message.
func (rep *Report) Summary() string {
	return fmt.Sprintf("%d records, %d steps: %d performed, %d not found, %d skipped, %d failed",
		rep.Records, rep.Attempts, rep.Performed+rep.Located, rep.NotFound, rep.Skipped, rep.Failed)
}
