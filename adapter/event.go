// Package adapter turns host runner lifecycle notifications into result
// records. The host delivers one JSON event per line on the event stream; the
// collector applies the phase rules and feeds the accumulator.
package adapter

import (
	"strings"
	"time"

	"github.com/testops/test-reporter/types"
)

// Phase is a sub-stage of a single test's lifecycle.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseCall     Phase = "call"
	PhaseTeardown Phase = "teardown"
)

// HasOutcome is the capability to report a test outcome.
type HasOutcome interface {
	TestOutcome() types.Outcome
}

// HasDuration is the capability to report a measured duration in seconds.
type HasDuration interface {
	TestDuration() float64
}

// HasDiagnostics is the capability to surface failure diagnostics.
type HasDiagnostics interface {
	// Diagnostics returns a short message and the raw trace, either of
	// which may be empty.
	Diagnostics() (message, trace string)
}

// Event is one lifecycle notification from the host runner. The core only
// consumes events through the capability interfaces above, so adapting a
// different host means implementing those, not reshaping this struct.
type Event struct {
	TestID     string     `json:"test_id"`
	Name       string     `json:"name,omitempty"`
	Phase      Phase      `json:"phase"`
	Outcome    string     `json:"outcome"`
	Duration   float64    `json:"duration,omitempty"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	Marks      []string   `json:"marks,omitempty"`
	ExternalID string     `json:"external_id,omitempty"`
	Message    string     `json:"message,omitempty"`
	Trace      string     `json:"trace,omitempty"`
}

var (
	_ HasOutcome     = Event{}
	_ HasDuration    = Event{}
	_ HasDiagnostics = Event{}
)

// TestOutcome maps the event's raw outcome string to an Outcome.
func (e Event) TestOutcome() types.Outcome {
	return types.ParseOutcome(e.Outcome)
}

// TestDuration returns the measured duration in seconds, zero if absent.
func (e Event) TestDuration() float64 {
	if e.Duration < 0 {
		return 0
	}
	return e.Duration
}

// Diagnostics returns the failure message and trace. When the host provided
// no explicit message, the first meaningful trace line stands in for it.
func (e Event) Diagnostics() (string, string) {
	message := e.Message
	if message == "" {
		message = firstMeaningfulLine(e.Trace)
	}
	return message, e.Trace
}

// firstMeaningfulLine picks the first trace line that looks like an error
// rather than quoted source context.
func firstMeaningfulLine(trace string) string {
	for _, line := range strings.Split(trace, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ">") {
			continue
		}
		return line
	}
	return ""
}
