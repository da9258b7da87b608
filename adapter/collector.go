package adapter

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/testops/test-reporter/report"
	"github.com/testops/test-reporter/types"
)

// Collector applies the phase rules to host runner events and feeds the
// accumulator. The call phase commits normal completions; a setup phase
// commits only terminal non-passing outcomes; a failing teardown after a
// committed record is merged into that record. The accumulator's own
// deduplication guarantees at most one record per test ID.
type Collector struct {
	log log.Logger
	acc *report.Accumulator
}

// NewCollector creates a collector feeding the given accumulator.
func NewCollector(logger log.Logger, acc *report.Accumulator) *Collector {
	if logger == nil {
		logger = log.Root()
	}
	return &Collector{log: logger, acc: acc}
}

// HandleEvent processes one lifecycle event. It never returns an error;
// anything unusable is logged and dropped.
func (c *Collector) HandleEvent(event Event) {
	if event.TestID == "" {
		c.log.Warn("Event is missing a test ID; skipping", "phase", event.Phase)
		return
	}

	switch event.Phase {
	case PhaseCall:
		c.acc.Add(c.buildRecord(event, event.TestOutcome()))
	case PhaseSetup:
		outcome := event.TestOutcome()
		if outcome == types.OutcomePassed {
			// A clean setup is not a result; the call phase will report.
			return
		}
		// Setup failures surface as errors, not test failures.
		if outcome == types.OutcomeFailed {
			outcome = types.OutcomeError
		}
		c.acc.Add(c.buildRecord(event, outcome))
	case PhaseTeardown:
		outcome := event.TestOutcome()
		if !outcome.IsTerminalFailure() {
			return
		}
		message, trace := event.Diagnostics()
		c.acc.MergeTeardownFailure(event.TestID, message, trace)
	default:
		c.log.Debug("Ignoring event with unknown phase", "phase", event.Phase, "test_id", event.TestID)
	}
}

// buildRecord assembles a record from the event's capability views, applying
// the per-outcome truncation rules.
func (c *Collector) buildRecord(event Event, outcome types.Outcome) types.ResultRecord {
	rec := types.ResultRecord{
		TestID:     event.TestID,
		Name:       event.Name,
		Outcome:    outcome,
		StartTime:  event.StartTime,
		Marks:      event.Marks,
		ExternalID: event.ExternalID,
	}
	if rec.Name == "" {
		rec.Name = event.TestID
	}

	// Duration is only measured during the call phase; setup errors and
	// skips report zero.
	if event.Phase == PhaseCall {
		var src HasDuration = event
		rec.Duration = src.TestDuration()
	}

	switch {
	case outcome.IsTerminalFailure():
		var src HasDiagnostics = event
		message, trace := src.Diagnostics()
		if message == "" {
			message = "unknown error"
		}
		rec.Message = types.TruncateMessage(message, types.MessageLimit)
		rec.Trace = types.TruncateTrace(trace)
	case outcome == types.OutcomeSkipped:
		var src HasDiagnostics = event
		reason, _ := src.Diagnostics()
		if reason == "" {
			reason = "test was skipped"
		}
		rec.Message = types.TruncateMessage(reason, types.SkipReasonLimit)
	}

	return rec
}
