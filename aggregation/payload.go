// Package aggregation bridges the accumulators of subordinate worker
// processes into the coordinator's accumulator. A worker exports its records
// once at session end; the coordinator imports one payload per worker. The
// contract is the payload's schema, not the transport that carries it.
package aggregation

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/testops/test-reporter/report"
	"github.com/testops/test-reporter/types"
)

// WorkerPayload carries one worker's accumulated records to the coordinator.
// It holds plain data only and survives a JSON round trip verbatim.
type WorkerPayload struct {
	WorkerID string            `json:"worker_id"`
	Started  int64             `json:"started"` // Worker session start, epoch milliseconds
	Tests    []json.RawMessage `json:"tests"`   // Records in completion order
}

// Export snapshots every record in the worker's accumulator, preserving
// completion order. A record that cannot be serialized is dropped with a
// warning rather than failing the export.
func Export(logger log.Logger, workerID string, acc *report.Accumulator) *WorkerPayload {
	records := acc.Records()
	payload := &WorkerPayload{
		WorkerID: workerID,
		Started:  acc.StartedAt(),
		Tests:    make([]json.RawMessage, 0, len(records)),
	}
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			logger.Warn("Failed to serialize record; dropping from export", "test_id", rec.TestID, "err", err)
			continue
		}
		payload.Tests = append(payload.Tests, data)
	}
	return payload
}

// Encode serializes the payload for the inter-process channel.
func (p *WorkerPayload) Encode() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode worker payload: %w", err)
	}
	return data, nil
}

// Decode reconstructs a payload read from the inter-process channel.
func Decode(data []byte) (*WorkerPayload, error) {
	var payload WorkerPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode worker payload: %w", err)
	}
	return &payload, nil
}

// Import validates each record in the payload and adds the valid ones to the
// coordinator's accumulator in their original order. A record that fails
// schema validation is dropped with a warning; a partial merge always beats
// failing the aggregation. Returns how many records were added and dropped.
func Import(logger log.Logger, acc *report.Accumulator, payload *WorkerPayload) (added, dropped int) {
	for _, raw := range payload.Tests {
		if err := ValidateRecord(raw); err != nil {
			logger.Warn("Worker record failed validation; dropping",
				"worker", payload.WorkerID, "err", err)
			dropped++
			continue
		}
		var rec types.ResultRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Warn("Worker record failed to decode; dropping",
				"worker", payload.WorkerID, "err", err)
			dropped++
			continue
		}
		acc.Add(rec)
		added++
	}
	logger.Debug("Imported worker payload", "worker", payload.WorkerID, "added", added, "dropped", dropped)
	return added, dropped
}
