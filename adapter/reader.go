package adapter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/ethereum/go-ethereum/log"
)

// maxEventLineSize bounds a single event line; traces are truncated upstream
// but host runners occasionally emit large diagnostic blobs.
const maxEventLineSize = 1024 * 1024

// ReadEvents decodes newline-delimited events from r and passes each to fn.
// Malformed lines are logged and skipped so a single bad event cannot abort
// the stream.
func ReadEvents(logger log.Logger, r io.Reader, fn func(Event)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventLineSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			logger.Debug("Skipping malformed event line", "err", err)
			continue
		}
		fn(event)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return nil
}
