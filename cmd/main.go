package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	reporter "github.com/testops/test-reporter"
	"github.com/testops/test-reporter/exitcodes"
	"github.com/testops/test-reporter/flags"
	"github.com/testops/test-reporter/service"
)

var (
	Version   = "v1.0.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	// Load .env before flag parsing so the env-var fallbacks see it.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Warn("Failed to load .env file", "err", err)
		}
	}

	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "test-reporter"
	app.Usage = "Test Result Reporting Service"
	app.Description = "test-reporter accumulates per-test outcomes and emits a structured summary report"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		if err == nil {
			return
		}
		if reporter.IsRuntimeError(err) {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			return
		}
		cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.Failure))
	}

	ctx := context.Background()

	// Start healthz and metrics servers
	svc := service.New()
	svc.Start()
	defer svc.Shutdown()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx *cli.Context) error {
	logger := setupLogger(ctx)

	cfg, err := reporter.NewConfig(ctx, logger)
	if err != nil {
		return reporter.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	logger.Debug("Config", "role", cfg.Role, "events", cfg.EventsPath, "outputDir", cfg.OutputDir)

	rep, err := reporter.New(cfg, Version)
	if err != nil {
		return reporter.NewRuntimeError(fmt.Errorf("failed to create reporter: %w", err))
	}

	return rep.Run(ctx.Context)
}

func setupLogger(ctx *cli.Context) log.Logger {
	level := log.LevelInfo
	if err := level.UnmarshalText([]byte(ctx.String(flags.LogLevel.Name))); err != nil {
		level = log.LevelInfo
	}
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, level, false)
	logger := log.NewLogger(handler)
	log.SetDefault(logger)
	return logger
}
