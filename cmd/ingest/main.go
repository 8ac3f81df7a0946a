package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sonic "github.com/bytedance/sonic"

	"squad-ingest/internal/app"
	"squad-ingest/internal/config"
	"squad-ingest/internal/observability"
	"squad-ingest/internal/platform/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uptraceShutdown, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() { _ = uptraceShutdown(context.Background()) }()

	pyroscopeStop, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		return 1
	}
	defer func() { _ = pyroscopeStop() }()

	ingestion, err := app.NewIngestion(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap ingestion", "error", err)
		return 1
	}
	defer func() { _ = ingestion.Close(context.Background()) }()

	summary, err := ingestion.Service.SyncTeams(ctx)
	if err != nil {
		logger.Error("roster sync aborted", "error", err)
		return 1
	}

	out, err := sonic.MarshalIndent(summary, "", "  ")
	if err != nil {
		logger.Error("render run summary", "error", err)
		return 1
	}
	fmt.Println(string(out))

	if summary.HasErrors() {
		return 1
	}
	return 0
}
