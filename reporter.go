// Package reporter drives one test reporting session: it consumes the host
// runner's event stream, accumulates result records, and either exports them
// for the coordinator (worker role) or merges worker payloads and emits the
// finalized report (coordinator role).
package reporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/testops/test-reporter/adapter"
	"github.com/testops/test-reporter/aggregation"
	"github.com/testops/test-reporter/metrics"
	"github.com/testops/test-reporter/report"
	"github.com/testops/test-reporter/sinks"
	"github.com/testops/test-reporter/store"
)

const toolName = "test-reporter"

// Reporter owns the session's accumulator and its collaborators. One Reporter
// serves exactly one session; the role never changes mid-run.
type Reporter struct {
	cfg       *Config
	version   string
	acc       *report.Accumulator
	collector *adapter.Collector
	store     *store.ResultStore
}

// New creates a Reporter from the given config.
func New(cfg *Config, version string) (*Reporter, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	cfg.Log.Debug("Creating reporter",
		"role", cfg.Role,
		"events", cfg.EventsPath,
		"outputDir", cfg.OutputDir,
		"format", cfg.ReportFormat,
		"remoteURL", cfg.RemoteURL)

	acc := report.NewAccumulator(cfg.Log).
		WithTool(report.Tool{Name: toolName, Version: version})

	r := &Reporter{
		cfg:     cfg,
		version: version,
		acc:     acc,
	}

	if cfg.DBPath != "" {
		st, err := store.Open(cfg.Log, cfg.DBPath)
		if err != nil {
			// A broken side channel must not block reporting.
			cfg.Log.Error("Failed to open result store; continuing without it",
				"path", cfg.DBPath, "err", err)
		} else {
			r.store = st
			acc.WithObserver(st.Save)
		}
	}

	r.collector = adapter.NewCollector(cfg.Log, acc)
	return r, nil
}

// Run executes the session end to end. Only configuration-level problems
// (an unreadable event stream) return an error; reporting failures degrade
// to a smaller report and a log entry, never a failed run.
func (r *Reporter) Run(ctx context.Context) error {
	events, closeEvents, err := r.openEvents()
	if err != nil {
		return NewRuntimeError(fmt.Errorf("failed to open event stream: %w", err))
	}
	defer closeEvents()

	if err := adapter.ReadEvents(r.cfg.Log, events, r.collector.HandleEvent); err != nil {
		r.cfg.Log.Error("Event stream ended with error; reporting what was collected", "err", err)
		metrics.RecordError("event_stream")
	}

	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.cfg.Log.Error("Failed to close result store", "err", err)
		}
	}

	switch r.cfg.Role {
	case RoleWorker:
		r.exportPayload()
	default:
		r.emitReport()
	}
	return nil
}

func (r *Reporter) openEvents() (io.Reader, func(), error) {
	if r.cfg.EventsPath == "" || r.cfg.EventsPath == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(r.cfg.EventsPath)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// exportPayload serializes this worker's records for the coordinator. Any
// failure here means this worker contributes zero records; the coordinator
// proceeds without them.
func (r *Reporter) exportPayload() {
	payload := aggregation.Export(r.cfg.Log, r.cfg.WorkerID, r.acc)
	data, err := payload.Encode()
	if err != nil {
		r.cfg.Log.Error("Failed to encode worker payload", "worker", r.cfg.WorkerID, "err", err)
		metrics.RecordError("payload_encode")
		return
	}

	if err := os.MkdirAll(r.cfg.PayloadDir, 0755); err != nil {
		r.cfg.Log.Error("Failed to create payload directory", "dir", r.cfg.PayloadDir, "err", err)
		metrics.RecordError("payload_write")
		return
	}

	path := WorkerPayloadPath(r.cfg.PayloadDir, r.cfg.WorkerID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		r.cfg.Log.Error("Failed to write worker payload", "path", path, "err", err)
		metrics.RecordError("payload_write")
		return
	}

	r.cfg.Log.Info("Worker payload exported",
		"worker", r.cfg.WorkerID, "path", path, "tests", len(payload.Tests))
}

// importWorkerPayloads merges every payload found in the payload directory.
// A missing or corrupt payload is a logged loss, never a fatal error. Each
// payload is consumed exactly once: imported files are removed so a later run
// sharing the directory cannot merge them again.
func (r *Reporter) importWorkerPayloads() {
	pattern := filepath.Join(r.cfg.PayloadDir, "worker-*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		r.cfg.Log.Error("Failed to scan payload directory", "pattern", pattern, "err", err)
		return
	}

	imported := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			r.cfg.Log.Warn("Failed to read worker payload; proceeding without it", "path", path, "err", err)
			continue
		}
		payload, err := aggregation.Decode(data)
		if err != nil {
			r.cfg.Log.Warn("Failed to decode worker payload; proceeding without it", "path", path, "err", err)
			continue
		}
		added, dropped := aggregation.Import(r.cfg.Log, r.acc, payload)
		metrics.RecordWorkerImport(added, dropped)
		r.cfg.Log.Info("Merged worker results",
			"worker", payload.WorkerID, "added", added, "dropped", dropped)
		imported++

		if err := os.Remove(path); err != nil {
			r.cfg.Log.Warn("Failed to remove imported worker payload; a later run may merge it again",
				"path", path, "err", err)
		}
	}

	if imported > 0 {
		r.acc.SetWorkerCount(imported)
	}
}

// emitReport finalizes the accumulator and delivers the report to every
// configured sink.
func (r *Reporter) emitReport() {
	r.importWorkerPayloads()

	rep := r.acc.Finalize()
	for _, entry := range rep.Tests {
		metrics.RecordResult(entry.Status)
	}

	sinkList := []sinks.Sink{
		sinks.NewFileSink(r.cfg.Log, r.cfg.OutputDir, r.cfg.ReportFile, r.cfg.ReportFormat),
	}
	if r.cfg.RemoteURL != "" {
		sinkList = append(sinkList, sinks.NewRemoteSink(r.cfg.Log, r.cfg.RemoteURL))
	}
	if !r.cfg.NoSummary {
		sinkList = append(sinkList, sinks.NewConsoleSink(nil))
	}
	sinks.Emit(r.cfg.Log, rep, sinkList...)

	if r.store != nil && !r.cfg.KeepDB {
		if err := r.store.Remove(); err != nil {
			r.cfg.Log.Debug("Failed to remove result database", "path", r.cfg.DBPath, "err", err)
		}
	}
}

// WorkerPayloadPath returns the payload file path for a worker ID. Workers
// write here; the coordinator globs the same shape.
func WorkerPayloadPath(dir, workerID string) string {
	return filepath.Join(dir, "worker-"+workerID+".json")
}
