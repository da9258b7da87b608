package report

import (
	"github.com/testops/test-reporter/types"
)

// Tool identifies the generator of a report.
type Tool struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// Summary holds per-outcome totals for a run plus its start and stop
// timestamps in epoch milliseconds.
type Summary struct {
	Tests   int   `json:"tests" yaml:"tests"`
	Passed  int   `json:"passed" yaml:"passed"`
	Failed  int   `json:"failed" yaml:"failed"`
	Pending int   `json:"pending" yaml:"pending"`
	Skipped int   `json:"skipped" yaml:"skipped"`
	Error   int   `json:"error" yaml:"error"`
	Other   int   `json:"other" yaml:"other"`
	Start   int64 `json:"start" yaml:"start"`
	Stop    int64 `json:"stop" yaml:"stop"`
}

// CountFor returns the summary bucket for the given outcome.
func (s *Summary) CountFor(outcome types.Outcome) int {
	switch outcome {
	case types.OutcomePassed:
		return s.Passed
	case types.OutcomeFailed:
		return s.Failed
	case types.OutcomePending:
		return s.Pending
	case types.OutcomeSkipped:
		return s.Skipped
	case types.OutcomeError:
		return s.Error
	default:
		return s.Other
	}
}

func (s *Summary) increment(outcome types.Outcome) {
	s.Tests++
	s.adjust(outcome, 1)
}

func (s *Summary) adjust(outcome types.Outcome, delta int) {
	switch outcome {
	case types.OutcomePassed:
		s.Passed += delta
	case types.OutcomeFailed:
		s.Failed += delta
	case types.OutcomePending:
		s.Pending += delta
	case types.OutcomeSkipped:
		s.Skipped += delta
	case types.OutcomeError:
		s.Error += delta
	default:
		s.Other += delta
	}
}

// TestEntry is one test in the emitted report.
type TestEntry struct {
	Name       string        `json:"name" yaml:"name"`
	Status     types.Outcome `json:"status" yaml:"status"`
	DurationMS int64         `json:"duration_ms" yaml:"duration_ms"`
	Message    string        `json:"message,omitempty" yaml:"message,omitempty"`
	Trace      string        `json:"trace,omitempty" yaml:"trace,omitempty"`
	Marks      []string      `json:"marks,omitempty" yaml:"marks,omitempty"`
	ExternalID string        `json:"external_id,omitempty" yaml:"external_id,omitempty"`
}

// Report is the finalized, immutable result of a reporting session.
type Report struct {
	Tool        Tool           `json:"tool" yaml:"tool"`
	Summary     Summary        `json:"summary" yaml:"summary"`
	Tests       []TestEntry    `json:"tests" yaml:"tests"`
	Environment map[string]any `json:"environment" yaml:"environment"`
	Extra       map[string]any `json:"extra" yaml:"extra"`
}

// DurationMS returns the wall clock duration of the run in milliseconds.
func (r *Report) DurationMS() int64 {
	return r.Summary.Stop - r.Summary.Start
}

func entryFromRecord(rec types.ResultRecord) TestEntry {
	return TestEntry{
		Name:       rec.GetDisplayName(),
		Status:     rec.Outcome,
		DurationMS: int64(rec.Duration * 1000),
		Message:    rec.Message,
		Trace:      rec.Trace,
		Marks:      rec.Marks,
		ExternalID: rec.ExternalID,
	}
}
