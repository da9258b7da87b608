package sinks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/testops/test-reporter/report"
)

const (
	defaultRemoteTimeout = 30 * time.Second
	remoteUserAgent      = "test-reporter/1.0"
)

// RemoteSink performs a single HTTP POST of the encoded report to a
// configured endpoint.
type RemoteSink struct {
	log    log.Logger
	url    string
	client *http.Client
}

// NewRemoteSink creates a remote sink posting to the given URL.
func NewRemoteSink(logger log.Logger, url string) *RemoteSink {
	return &RemoteSink{
		log:    logger,
		url:    url,
		client: &http.Client{Timeout: defaultRemoteTimeout},
	}
}

func (s *RemoteSink) Name() string { return "remote" }

// Write sends the report as a JSON request body.
func (s *RemoteSink) Write(rep *report.Report) error {
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode report for upload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", remoteUserAgent)

	s.log.Info("Sending report to remote server", "url", s.url, "tests", rep.Summary.Tests)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send report to %s: %w", s.url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote server returned status %d", resp.StatusCode)
	}

	s.log.Info("Report sent to remote server", "url", s.url, "status", resp.StatusCode)
	return nil
}
