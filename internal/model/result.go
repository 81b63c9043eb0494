package model

import (
	"fmt"
	"time"
)

// StepOutcome classifies what happened to one (record, action) attempt.
type StepOutcome int

const (
	OutcomePerformed StepOutcome = iota + 1 // input was delivered
	OutcomeNotFound                         // best score was below the threshold
	OutcomeSkipped                          // step could not be attempted (missing objectId, missing asset)
	OutcomeFailed                           // capture or input delivery failed
	OutcomeLocated                          // dry run: element found, no input sent
)

func (o StepOutcome) String() string {
	switch o {
	case OutcomePerformed:
		return "performed"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	case OutcomeLocated:
		return "located"
	default:
		return fmt.Sprintf("StepOutcome(%d)", int(o))
	}
}

func (o StepOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *StepOutcome) UnmarshalText(b []byte) error {
	for _, c := range []StepOutcome{OutcomePerformed, OutcomeNotFound, OutcomeSkipped, OutcomeFailed, OutcomeLocated} {
		if c.String() == string(b) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown step outcome %q", string(b))
}

// StepResult is the structured result of a single step.
type StepResult struct {
	Record   int           `yaml:"record"             json:"record"` // 1-based data row
	Step     int           `yaml:"step"               json:"step"`   // 1-based script position
	Field    string        `yaml:"field,omitempty"    json:"field,omitempty"`
	Action   ActionKind    `yaml:"action"             json:"action"`
	ObjectID string        `yaml:"object,omitempty"   json:"object,omitempty"`
	Outcome  StepOutcome   `yaml:"outcome"            json:"outcome"`
	Reason   string        `yaml:"reason,omitempty"   json:"reason,omitempty"`
	Score    float64       `yaml:"score,omitempty"    json:"score,omitempty"`
	Location *Point        `yaml:"location,omitempty" json:"location,omitempty"`
	Elapsed  time.Duration `yaml:"-"                  json:"-"`
}

// OK reports whether the step reached its target element.
func (r StepResult) OK() bool {
	return r.Outcome == OutcomePerformed || r.Outcome == OutcomeLocated
}
