package adapter

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testops/test-reporter/report"
	"github.com/testops/test-reporter/types"
)

func newCollector() (*Collector, *report.Accumulator) {
	acc := report.NewAccumulator(log.New())
	return NewCollector(log.New(), acc), acc
}

func TestCollectorCallPhase(t *testing.T) {
	collector, acc := newCollector()

	collector.HandleEvent(Event{
		TestID:   "pkg::TestOne",
		Name:     "TestOne",
		Phase:    PhaseCall,
		Outcome:  "passed",
		Duration: 0.25,
	})

	records := acc.Records()
	require.Len(t, records, 1)
	assert.Equal(t, types.OutcomePassed, records[0].Outcome)
	assert.Equal(t, 0.25, records[0].Duration)
	assert.Equal(t, "TestOne", records[0].Name)
}

func TestCollectorSetupPassIsNotARecord(t *testing.T) {
	collector, acc := newCollector()

	collector.HandleEvent(Event{TestID: "t1", Phase: PhaseSetup, Outcome: "passed"})

	assert.Empty(t, acc.Records())
	assert.Equal(t, 0, acc.Summary().Tests)
}

func TestCollectorSetupFailureBecomesError(t *testing.T) {
	collector, acc := newCollector()

	collector.HandleEvent(Event{
		TestID:  "t1",
		Phase:   PhaseSetup,
		Outcome: "failed",
		Message: "fixture blew up",
	})

	records := acc.Records()
	require.Len(t, records, 1)
	assert.Equal(t, types.OutcomeError, records[0].Outcome)
	assert.Equal(t, "fixture blew up", records[0].Message)

	summary := acc.Summary()
	assert.Equal(t, 1, summary.Error)
	assert.Equal(t, 0, summary.Failed)
}

func TestCollectorSetupSkipSuppressesLaterCall(t *testing.T) {
	collector, acc := newCollector()

	collector.HandleEvent(Event{TestID: "t1", Phase: PhaseSetup, Outcome: "skipped", Message: "needs db"})
	collector.HandleEvent(Event{TestID: "t1", Phase: PhaseCall, Outcome: "passed"})

	records := acc.Records()
	require.Len(t, records, 1)
	assert.Equal(t, types.OutcomeSkipped, records[0].Outcome)
	assert.Equal(t, "needs db", records[0].Message)
}

func TestCollectorSkipReasonTruncated(t *testing.T) {
	collector, acc := newCollector()

	collector.HandleEvent(Event{
		TestID:  "t1",
		Phase:   PhaseCall,
		Outcome: "skipped",
		Message: strings.Repeat("r", 300),
	})

	records := acc.Records()
	require.Len(t, records, 1)
	assert.Len(t, records[0].Message, types.SkipReasonLimit)
}

func TestCollectorSkipWithoutReasonGetsDefault(t *testing.T) {
	collector, acc := newCollector()

	collector.HandleEvent(Event{TestID: "t1", Phase: PhaseCall, Outcome: "skipped"})

	records := acc.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "test was skipped", records[0].Message)
}

func TestCollectorFailureDiagnostics(t *testing.T) {
	collector, acc := newCollector()

	trace := strings.Join([]string{
		">   assert value == 3",
		"E   AssertionError: assert 1 == 3",
		"helpers.go:42",
	}, "\n")
	collector.HandleEvent(Event{
		TestID:  "t1",
		Phase:   PhaseCall,
		Outcome: "failed",
		Trace:   trace,
	})

	records := acc.Records()
	require.Len(t, records, 1)
	// No explicit message: the first non-quoted trace line stands in.
	assert.Equal(t, "E   AssertionError: assert 1 == 3", records[0].Message)
	assert.Equal(t, trace, records[0].Trace)
}

func TestCollectorFailureWithoutDiagnostics(t *testing.T) {
	collector, acc := newCollector()

	collector.HandleEvent(Event{TestID: "t1", Phase: PhaseCall, Outcome: "failed"})

	records := acc.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "unknown error", records[0].Message)
}

func TestCollectorTeardownFailureMergesIntoPass(t *testing.T) {
	collector, acc := newCollector()

	collector.HandleEvent(Event{TestID: "t1", Phase: PhaseCall, Outcome: "passed", Duration: 0.1})
	collector.HandleEvent(Event{
		TestID:  "t1",
		Phase:   PhaseTeardown,
		Outcome: "failed",
		Message: "socket leaked",
	})

	records := acc.Records()
	require.Len(t, records, 1)
	assert.Equal(t, types.OutcomeError, records[0].Outcome)
	assert.Contains(t, records[0].Message, "socket leaked")
	assert.Equal(t, 0.1, records[0].Duration)

	summary := acc.Summary()
	assert.Equal(t, 1, summary.Tests)
	assert.Equal(t, 1, summary.Error)
	assert.Equal(t, 0, summary.Passed)
}

func TestCollectorCleanTeardownIgnored(t *testing.T) {
	collector, acc := newCollector()

	collector.HandleEvent(Event{TestID: "t1", Phase: PhaseCall, Outcome: "passed"})
	collector.HandleEvent(Event{TestID: "t1", Phase: PhaseTeardown, Outcome: "passed"})

	records := acc.Records()
	require.Len(t, records, 1)
	assert.Equal(t, types.OutcomePassed, records[0].Outcome)
}

func TestCollectorMissingTestIDDropped(t *testing.T) {
	collector, acc := newCollector()

	collector.HandleEvent(Event{Phase: PhaseCall, Outcome: "passed"})

	assert.Empty(t, acc.Records())
}

func TestCollectorUnknownPhaseIgnored(t *testing.T) {
	collector, acc := newCollector()

	collector.HandleEvent(Event{TestID: "t1", Phase: Phase("reboot"), Outcome: "passed"})

	assert.Empty(t, acc.Records())
}

func TestCollectorNameDefaultsToTestID(t *testing.T) {
	collector, acc := newCollector()

	collector.HandleEvent(Event{TestID: "pkg::TestOne", Phase: PhaseCall, Outcome: "passed"})

	records := acc.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "pkg::TestOne", records[0].Name)
}

func TestCollectorSetupReportsZeroDuration(t *testing.T) {
	collector, acc := newCollector()

	collector.HandleEvent(Event{
		TestID:   "t1",
		Phase:    PhaseSetup,
		Outcome:  "error",
		Duration: 3.5,
	})

	records := acc.Records()
	require.Len(t, records, 1)
	assert.Equal(t, float64(0), records[0].Duration)
}

func TestReadEvents(t *testing.T) {
	input := strings.Join([]string{
		`{"test_id":"t1","phase":"call","outcome":"passed","duration":0.1}`,
		``,
		`this line is not json`,
		`{"test_id":"t2","phase":"call","outcome":"failed","message":"boom"}`,
	}, "\n")

	var events []Event
	err := ReadEvents(log.New(), strings.NewReader(input), func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "t1", events[0].TestID)
	assert.Equal(t, "t2", events[1].TestID)
	assert.Equal(t, "boom", events[1].Message)
}

func TestReadEventsEmptyStream(t *testing.T) {
	var called bool
	err := ReadEvents(log.New(), strings.NewReader(""), func(Event) { called = true })
	require.NoError(t, err)
	assert.False(t, called)
}
