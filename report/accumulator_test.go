package report

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testops/test-reporter/types"
)

func newTestAccumulator() *Accumulator {
	return NewAccumulator(log.New()).
		WithTool(Tool{Name: "test-reporter", Version: "test"})
}

func TestAccumulatorCountsMatchRecords(t *testing.T) {
	acc := newTestAccumulator()

	outcomes := []types.Outcome{
		types.OutcomePassed, types.OutcomeFailed, types.OutcomeSkipped,
		types.OutcomePassed, types.OutcomeError, types.OutcomePending,
		types.OutcomeOther,
	}
	for i, outcome := range outcomes {
		acc.Add(types.ResultRecord{
			TestID:  fmt.Sprintf("test-%d", i),
			Outcome: outcome,
		})
	}

	summary := acc.Summary()
	assert.Equal(t, len(outcomes), summary.Tests)
	assert.Len(t, acc.Records(), summary.Tests)

	bucketSum := summary.Passed + summary.Failed + summary.Pending +
		summary.Skipped + summary.Error + summary.Other
	assert.Equal(t, summary.Tests, bucketSum)
}

func TestAccumulatorUnrecognizedOutcomeGoesToOther(t *testing.T) {
	acc := newTestAccumulator()
	acc.Add(types.ResultRecord{TestID: "t1", Outcome: types.Outcome("exploded")})

	summary := acc.Summary()
	assert.Equal(t, 1, summary.Tests)
	assert.Equal(t, 1, summary.Other)
	assert.Equal(t, types.OutcomeOther, acc.Records()[0].Outcome)
}

func TestAccumulatorDuplicateTestIDSuppressed(t *testing.T) {
	acc := newTestAccumulator()

	// Setup-phase skip commits first; the later call-phase record for the
	// same test must not create a second entry.
	acc.Add(types.ResultRecord{TestID: "t1", Outcome: types.OutcomeSkipped})
	acc.Add(types.ResultRecord{TestID: "t1", Outcome: types.OutcomePassed})

	summary := acc.Summary()
	assert.Equal(t, 1, summary.Tests)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Passed)

	records := acc.Records()
	require.Len(t, records, 1)
	assert.Equal(t, types.OutcomeSkipped, records[0].Outcome)
}

func TestAccumulatorMalformedRecordSkipped(t *testing.T) {
	acc := newTestAccumulator()
	acc.Add(types.ResultRecord{Outcome: types.OutcomePassed}) // no test ID

	assert.Equal(t, 0, acc.Summary().Tests)
	assert.Empty(t, acc.Records())
}

func TestAccumulatorNegativeDurationClamped(t *testing.T) {
	acc := newTestAccumulator()
	acc.Add(types.ResultRecord{TestID: "t1", Outcome: types.OutcomePassed, Duration: -2.5})

	require.Len(t, acc.Records(), 1)
	assert.Equal(t, float64(0), acc.Records()[0].Duration)
}

func TestFinalizeScenario(t *testing.T) {
	acc := newTestAccumulator()
	acc.Add(types.ResultRecord{TestID: "t1", Outcome: types.OutcomePassed, Duration: 0.01})
	acc.Add(types.ResultRecord{TestID: "t2", Outcome: types.OutcomeFailed, Duration: 0.02, Message: "assert 1 == 3"})
	acc.Add(types.ResultRecord{TestID: "t3", Outcome: types.OutcomeSkipped, Message: "reason: disabled"})

	rep := acc.Finalize()
	require.NotNil(t, rep)

	assert.Equal(t, 3, rep.Summary.Tests)
	assert.Equal(t, 1, rep.Summary.Passed)
	assert.Equal(t, 1, rep.Summary.Failed)
	assert.Equal(t, 1, rep.Summary.Skipped)
	assert.Equal(t, 0, rep.Summary.Pending)
	assert.Equal(t, 0, rep.Summary.Error)
	assert.Equal(t, 0, rep.Summary.Other)

	require.Len(t, rep.Tests, 3)
	assert.Equal(t, int64(10), rep.Tests[0].DurationMS)
	assert.Equal(t, "assert 1 == 3", rep.Tests[1].Message)
	assert.Equal(t, "reason: disabled", rep.Tests[2].Message)

	assert.Equal(t, "test-reporter", rep.Tool.Name)
	assert.GreaterOrEqual(t, rep.Summary.Stop, rep.Summary.Start)
	assert.NotEmpty(t, rep.Environment["goVersion"])
}

func TestFinalizeEmptyAccumulator(t *testing.T) {
	acc := newTestAccumulator()
	rep := acc.Finalize()
	require.NotNil(t, rep)

	assert.Equal(t, 0, rep.Summary.Tests)
	assert.Empty(t, rep.Tests)
	assert.GreaterOrEqual(t, rep.Summary.Stop, rep.Summary.Start)
}

func TestAddAfterFinalizeIsNoOp(t *testing.T) {
	acc := newTestAccumulator()
	acc.Add(types.ResultRecord{TestID: "t1", Outcome: types.OutcomePassed})
	_ = acc.Finalize()

	acc.Add(types.ResultRecord{TestID: "t2", Outcome: types.OutcomeFailed})
	assert.Equal(t, 1, acc.Summary().Tests)
	assert.Len(t, acc.Records(), 1)
}

func TestFinalizeIncludesWorkerCount(t *testing.T) {
	acc := newTestAccumulator()
	acc.SetWorkerCount(4)
	rep := acc.Finalize()

	assert.Equal(t, 4, rep.Environment["workers"])
}

func TestMergeTeardownFailureAfterPassingCall(t *testing.T) {
	acc := newTestAccumulator()
	acc.Add(types.ResultRecord{TestID: "t1", Outcome: types.OutcomePassed, Duration: 0.05})

	acc.MergeTeardownFailure("t1", "connection leaked", "trace line")

	summary := acc.Summary()
	assert.Equal(t, 1, summary.Tests)
	assert.Equal(t, 0, summary.Passed)
	assert.Equal(t, 1, summary.Error)

	records := acc.Records()
	require.Len(t, records, 1)
	assert.Equal(t, types.OutcomeError, records[0].Outcome)
	assert.Contains(t, records[0].Message, "connection leaked")
	// The call-phase duration survives the merge.
	assert.Equal(t, 0.05, records[0].Duration)
}

func TestMergeTeardownFailureAppendsToExistingDiagnostics(t *testing.T) {
	acc := newTestAccumulator()
	acc.Add(types.ResultRecord{
		TestID:  "t1",
		Outcome: types.OutcomeFailed,
		Message: "assert failed",
		Trace:   "original trace",
	})

	acc.MergeTeardownFailure("t1", "cleanup failed", "teardown trace")

	records := acc.Records()
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Message, "assert failed")
	assert.Contains(t, records[0].Message, "cleanup failed")
	assert.Contains(t, records[0].Trace, "teardown trace")

	summary := acc.Summary()
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 1, summary.Error)
}

func TestMergeTeardownFailureWithoutPriorRecord(t *testing.T) {
	acc := newTestAccumulator()
	acc.MergeTeardownFailure("t1", "teardown exploded", "")

	summary := acc.Summary()
	assert.Equal(t, 1, summary.Tests)
	assert.Equal(t, 1, summary.Error)
}

func TestMergeTeardownFailureNotifiesObserver(t *testing.T) {
	var observed []types.ResultRecord
	acc := newTestAccumulator().WithObserver(func(rec types.ResultRecord) {
		observed = append(observed, rec)
	})

	acc.Add(types.ResultRecord{TestID: "t1", Outcome: types.OutcomePassed})
	acc.MergeTeardownFailure("t1", "connection leaked", "")

	require.Len(t, observed, 2)
	assert.Equal(t, types.OutcomePassed, observed[0].Outcome)
	assert.Equal(t, "t1", observed[1].TestID)
	assert.Equal(t, types.OutcomeError, observed[1].Outcome)
	assert.Contains(t, observed[1].Message, "connection leaked")
}

type panickingLogger struct{ log.Logger }

func (panickingLogger) Info(msg string, ctx ...interface{}) {
	panic("logger exploded")
}

func TestFinalizeDegradesToMinimalReport(t *testing.T) {
	acc := NewAccumulator(panickingLogger{log.New()}).
		WithTool(Tool{Name: "test-reporter", Version: "test"})
	acc.Add(types.ResultRecord{TestID: "t1", Outcome: types.OutcomePassed})

	rep := acc.Finalize()
	require.NotNil(t, rep)

	assert.Equal(t, "report finalization failed", rep.Extra["error"])
	assert.Contains(t, rep.Extra["errorMessage"], "logger exploded")
	// Best-effort counts survive, the per-test entries do not.
	assert.Equal(t, 1, rep.Summary.Tests)
	assert.Empty(t, rep.Tests)
	assert.Greater(t, rep.Summary.Stop, int64(0))
}

func TestAccumulatorObserver(t *testing.T) {
	var observed []string
	acc := newTestAccumulator().WithObserver(func(rec types.ResultRecord) {
		observed = append(observed, rec.TestID)
	})

	acc.Add(types.ResultRecord{TestID: "t1", Outcome: types.OutcomePassed})
	acc.Add(types.ResultRecord{TestID: "t1", Outcome: types.OutcomeFailed}) // duplicate
	acc.Add(types.ResultRecord{Outcome: types.OutcomePassed})               // malformed
	acc.Add(types.ResultRecord{TestID: "t2", Outcome: types.OutcomeFailed})

	assert.Equal(t, []string{"t1", "t2"}, observed)
}
