// Package store persists raw result records to an embedded DuckDB database
// as an optional side channel next to the report itself. Inserts happen on a
// background goroutine so record handling never blocks on disk.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/testops/test-reporter/types"
)

// queueDepth bounds how many pending inserts Save buffers before blocking.
const queueDepth = 256

const schemaDDL = `CREATE TABLE IF NOT EXISTS test_results (
	test_id VARCHAR NOT NULL,
	name VARCHAR,
	outcome VARCHAR NOT NULL,
	duration DOUBLE NOT NULL,
	message VARCHAR,
	trace VARCHAR,
	recorded_at TIMESTAMP DEFAULT current_timestamp
)`

// ResultStore writes result records to a DuckDB file through an insert queue.
type ResultStore struct {
	log   log.Logger
	db    *sql.DB
	path  string
	queue chan types.ResultRecord
	wg    sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// Open opens (or creates) the database at path, applies the schema and
// starts the background writer.
func Open(logger log.Logger, path string) (*ResultStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result store %s: %w", path, err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create result store schema: %w", err)
	}

	s := &ResultStore{
		log:   logger,
		db:    db,
		path:  path,
		queue: make(chan types.ResultRecord, queueDepth),
	}
	s.wg.Add(1)
	go s.processQueue()
	return s, nil
}

// Save queues a record for insertion. Saving the same test ID again replaces
// the earlier row, so a record rewritten by a teardown merge keeps only its
// final state. Records arriving after Close are dropped with a warning.
func (s *ResultStore) Save(rec types.ResultRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.log.Warn("Result store is closed; dropping record", "test_id", rec.TestID)
		return
	}
	s.queue <- rec
}

// processQueue drains the insert queue in the background. Per-insert errors
// are logged and skipped so one bad row cannot stall the run.
func (s *ResultStore) processQueue() {
	defer s.wg.Done()

	for rec := range s.queue {
		if _, err := s.db.Exec(`DELETE FROM test_results WHERE test_id = ?`, rec.TestID); err != nil {
			s.log.Error("Failed to replace stored test result", "test_id", rec.TestID, "err", err)
			continue
		}
		_, err := s.db.Exec(
			`INSERT INTO test_results (test_id, name, outcome, duration, message, trace) VALUES (?, ?, ?, ?, ?, ?)`,
			rec.TestID, rec.Name, string(rec.Outcome), rec.Duration, rec.Message, rec.Trace,
		)
		if err != nil {
			s.log.Error("Failed to save test result", "test_id", rec.TestID, "err", err)
		}
	}
}

// Close drains pending inserts and closes the database.
func (s *ResultStore) Close() error {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.queue)
	}
	s.mu.Unlock()

	s.wg.Wait()
	return s.db.Close()
}

// Count returns the number of stored records. Used by callers that inspect
// the side channel after a run.
func (s *ResultStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM test_results`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count stored results: %w", err)
	}
	return count, nil
}

// Outcome returns the stored outcome for a test ID.
func (s *ResultStore) Outcome(testID string) (string, error) {
	var outcome string
	if err := s.db.QueryRow(`SELECT outcome FROM test_results WHERE test_id = ?`, testID).Scan(&outcome); err != nil {
		return "", fmt.Errorf("failed to read stored outcome for %s: %w", testID, err)
	}
	return outcome, nil
}

// Remove deletes the database file. The coordinator calls this after the
// report is emitted unless the operator asked to keep it.
func (s *ResultStore) Remove() error {
	return os.Remove(s.path)
}
