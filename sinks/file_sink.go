package sinks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/testops/test-reporter/report"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"

	timestampLayout = "20060102-150405"
)

// FileSink writes the report to a JSON or YAML file under the output
// directory. One report file per run; default names carry a timestamp so
// repeated runs never collide.
type FileSink struct {
	log    log.Logger
	dir    string
	file   string // optional user-specified name or path
	format string
	now    func() time.Time
}

// NewFileSink creates a file sink for the given output directory and format.
// file may be empty (default timestamped name), a bare file name (placed in
// dir with a timestamp inserted), or an explicit path (kept as-is).
func NewFileSink(logger log.Logger, dir, file, format string) *FileSink {
	if format != FormatYAML {
		format = FormatJSON
	}
	return &FileSink{
		log:    logger,
		dir:    dir,
		file:   file,
		format: format,
		now:    time.Now,
	}
}

func (s *FileSink) Name() string { return "file" }

// OutputPath resolves the destination file for this run.
func (s *FileSink) OutputPath() string {
	defaultExt := "." + s.format
	timestamp := s.now().Format(timestampLayout)

	if s.file == "" {
		return filepath.Join(s.dir, fmt.Sprintf("report-%s%s", timestamp, defaultExt))
	}

	// Explicit paths are preserved, only a missing extension is filled in.
	if filepath.IsAbs(s.file) || filepath.Dir(s.file) != "." {
		if filepath.Ext(s.file) == "" {
			return s.file + defaultExt
		}
		return s.file
	}

	// A bare file name lands in the output directory with a timestamp so
	// repeated runs don't overwrite each other.
	ext := filepath.Ext(s.file)
	if ext == "" {
		ext = defaultExt
	}
	base := strings.TrimSuffix(s.file, filepath.Ext(s.file))
	return filepath.Join(s.dir, fmt.Sprintf("%s-%s%s", base, timestamp, ext))
}

// Write encodes the report and writes it to the resolved path.
func (s *FileSink) Write(rep *report.Report) error {
	path := s.OutputPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory %s: %w", filepath.Dir(path), err)
	}

	var data []byte
	var err error
	switch s.format {
	case FormatYAML:
		data, err = yaml.Marshal(rep)
	default:
		data, err = json.MarshalIndent(rep, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode report as %s: %w", s.format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file %s: %w", path, err)
	}

	s.log.Info("Report written", "path", path, "format", s.format, "tests", rep.Summary.Tests)
	return nil
}
