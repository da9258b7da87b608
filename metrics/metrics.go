package metrics

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/testops/test-reporter/types"
)

const (
	MetricsNamespace = "test_reporter"
)

var (
	Debug bool = false

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "records_total",
		Help:      "Count of accumulated test records",
	}, []string{
		"outcome",
	})

	reportsWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "reports_written_total",
		Help:      "Count of reports delivered per sink",
	}, []string{
		"sink",
	})

	sinkErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "sink_errors_total",
		Help:      "Count of report sink failures",
	}, []string{
		"sink",
	})

	workerPayloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "worker_payloads_imported_total",
		Help:      "Count of worker payloads merged by the coordinator",
	})

	workerRecordsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "worker_records_dropped_total",
		Help:      "Count of worker records dropped during import validation",
	})
)

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

func RecordResult(outcome types.Outcome) {
	if Debug {
		log.Debug("metric inc",
			"m", "records_total",
			"outcome", outcome,
		)
	}
	recordsTotal.WithLabelValues(string(outcome)).Inc()
}

func RecordReportWritten(sink string) {
	reportsWrittenTotal.WithLabelValues(sink).Inc()
}

func RecordSinkError(sink string) {
	sinkErrorsTotal.WithLabelValues(sink).Inc()
}

func RecordWorkerImport(added, dropped int) {
	workerPayloadsTotal.Inc()
	workerRecordsDroppedTotal.Add(float64(dropped))
	if Debug {
		log.Debug("metric inc",
			"m", "worker_payloads_imported_total",
			"added", added,
			"dropped", dropped,
		)
	}
}
