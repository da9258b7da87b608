package types

import (
	"strings"
	"time"
)

// Outcome represents the final status of one test execution
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomePending Outcome = "pending"
	OutcomeSkipped Outcome = "skipped"
	OutcomeError   Outcome = "error"
	OutcomeOther   Outcome = "other"
)

// KnownOutcomes lists every outcome the summary counts explicitly.
// Anything else lands in the "other" bucket.
var KnownOutcomes = []Outcome{
	OutcomePassed,
	OutcomeFailed,
	OutcomePending,
	OutcomeSkipped,
	OutcomeError,
}

// ParseOutcome maps a raw outcome string to an Outcome.
// Unrecognized values map to OutcomeOther rather than failing.
func ParseOutcome(raw string) Outcome {
	outcome := Outcome(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range KnownOutcomes {
		if outcome == known {
			return outcome
		}
	}
	return OutcomeOther
}

// IsTerminalFailure reports whether the outcome carries failure diagnostics
// (message and trace fields).
func (o Outcome) IsTerminalFailure() bool {
	return o == OutcomeFailed || o == OutcomeError
}

// ResultRecord captures the outcome of a single test run
type ResultRecord struct {
	TestID     string     `json:"test_id" yaml:"test_id"`
	Name       string     `json:"name" yaml:"name"`
	Outcome    Outcome    `json:"outcome" yaml:"outcome"`
	Duration   float64    `json:"duration" yaml:"duration"` // Seconds; zero when not measured
	StartTime  *time.Time `json:"start_time,omitempty" yaml:"start_time,omitempty"`
	Marks      []string   `json:"marks,omitempty" yaml:"marks,omitempty"`
	ExternalID string     `json:"external_id,omitempty" yaml:"external_id,omitempty"` // Identifier from a third-party annotation system
	Message    string     `json:"message,omitempty" yaml:"message,omitempty"`         // Failure message or skip reason
	Trace      string     `json:"trace,omitempty" yaml:"trace,omitempty"`             // Truncated stack trace for failures
}

// GetDisplayName returns a human-readable name for the record,
// falling back to the test ID when no name was captured.
func (r ResultRecord) GetDisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.TestID
}
