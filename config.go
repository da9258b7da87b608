package reporter

import (
	"fmt"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/testops/test-reporter/flags"
	"github.com/testops/test-reporter/sinks"
)

// Role determines whether this process finalizes the report or forwards its
// records to the coordinator. The role is fixed for the whole session.
type Role string

const (
	RoleCoordinator Role = "coordinator"
	RoleWorker      Role = "worker"
)

// IsValid checks that the role is one of the known values.
func (r Role) IsValid() bool {
	return r == RoleCoordinator || r == RoleWorker
}

// Config holds the application configuration
type Config struct {
	Role         Role
	EventsPath   string // Event stream source; "-" means stdin
	OutputDir    string // Directory for report files
	ReportFile   string // Optional user-specified report file
	ReportFormat string // "json" or "yaml"
	RemoteURL    string // Optional report upload endpoint
	WorkerID     string // Identity of this worker in payload file names
	PayloadDir   string // Directory where worker payloads are exchanged
	DBPath       string // Optional side-channel result database
	KeepDB       bool   // Keep the result database after the run
	NoSummary    bool   // Suppress the console summary table
	Log          log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	role := Role(ctx.String(flags.Role.Name))
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role: %s. Must be one of: %s, %s",
			role, RoleCoordinator, RoleWorker)
	}

	format := ctx.String(flags.ReportFormat.Name)
	if format != sinks.FormatJSON && format != sinks.FormatYAML {
		return nil, fmt.Errorf("invalid report format: %s. Must be one of: %s, %s",
			format, sinks.FormatJSON, sinks.FormatYAML)
	}

	outputDir, err := filepath.Abs(ctx.String(flags.OutputDir.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for output directory '%s': %w",
			ctx.String(flags.OutputDir.Name), err)
	}

	payloadDir := ctx.String(flags.PayloadDir.Name)
	if payloadDir == "" {
		payloadDir = filepath.Join(outputDir, "payloads")
	} else {
		payloadDir, err = filepath.Abs(payloadDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for payload directory '%s': %w",
				ctx.String(flags.PayloadDir.Name), err)
		}
	}

	workerID := ctx.String(flags.WorkerID.Name)
	if workerID == "" {
		workerID = uuid.New().String()[:8]
	}

	return &Config{
		Role:         role,
		EventsPath:   ctx.String(flags.Events.Name),
		OutputDir:    outputDir,
		ReportFile:   ctx.String(flags.ReportFile.Name),
		ReportFormat: format,
		RemoteURL:    ctx.String(flags.RemoteURL.Name),
		WorkerID:     workerID,
		PayloadDir:   payloadDir,
		DBPath:       ctx.String(flags.DBPath.Name),
		KeepDB:       ctx.Bool(flags.KeepDB.Name),
		NoSummary:    ctx.Bool(flags.NoSummary.Name),
		Log:          logger,
	}, nil
}
