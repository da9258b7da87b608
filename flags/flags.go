package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "TEST_REPORTER"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Role = &cli.StringFlag{
		Name:    "role",
		Value:   "coordinator",
		EnvVars: prefixEnvVars("ROLE"),
		Usage:   "Process role: 'coordinator' finalizes the report, 'worker' exports its records",
	}
	Events = &cli.StringFlag{
		Name:    "events",
		Value:   "-",
		EnvVars: prefixEnvVars("EVENTS"),
		Usage:   "Path to the test event stream ('-' reads stdin)",
	}
	OutputDir = &cli.StringFlag{
		Name:    "output-dir",
		Value:   "reports",
		EnvVars: prefixEnvVars("OUTPUT_DIR"),
		Usage:   "Directory for report files and worker payloads",
	}
	ReportFile = &cli.StringFlag{
		Name:    "report-file",
		Value:   "",
		EnvVars: prefixEnvVars("REPORT_FILE"),
		Usage: "Output file for the report (default: report-YYYYMMDD-HHMMSS.<format> in the output directory). " +
			"Bare file names get a timestamp inserted; full paths are preserved as-is.",
	}
	ReportFormat = &cli.StringFlag{
		Name:    "report-format",
		Value:   "json",
		EnvVars: prefixEnvVars("REPORT_FORMAT"),
		Usage:   "Report format: json or yaml",
	}
	RemoteURL = &cli.StringFlag{
		Name:    "remote-url",
		Value:   "",
		EnvVars: prefixEnvVars("REMOTE_URL"),
		Usage:   "Remote server URL to send the report to via HTTP POST",
	}
	WorkerID = &cli.StringFlag{
		Name:    "worker-id",
		Value:   "",
		EnvVars: prefixEnvVars("WORKER_ID"),
		Usage:   "Identifier for this worker process (default: generated)",
	}
	PayloadDir = &cli.StringFlag{
		Name:    "payload-dir",
		Value:   "",
		EnvVars: prefixEnvVars("PAYLOAD_DIR"),
		Usage:   "Directory where worker payloads are exchanged (default: <output-dir>/payloads)",
	}
	DBPath = &cli.StringFlag{
		Name:    "db-path",
		Value:   "",
		EnvVars: prefixEnvVars("DB_PATH"),
		Usage:   "Optional DuckDB file for raw result persistence",
	}
	KeepDB = &cli.BoolFlag{
		Name:    "keep-db",
		Value:   false,
		EnvVars: prefixEnvVars("KEEP_DB"),
		Usage:   "Keep the result database after the report is emitted",
	}
	NoSummary = &cli.BoolFlag{
		Name:    "no-summary",
		Value:   false,
		EnvVars: prefixEnvVars("NO_SUMMARY"),
		Usage:   "Suppress the console summary table",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level: trace, debug, info, warn, error, crit",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	Role,
	Events,
	OutputDir,
	ReportFile,
	ReportFormat,
	RemoteURL,
	WorkerID,
	PayloadDir,
	DBPath,
	KeepDB,
	NoSummary,
	LogLevel,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
