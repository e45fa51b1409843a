package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tracksync/internal/cli"
	"tracksync/internal/config"
	"tracksync/internal/logging"
	"tracksync/internal/retry"
	"tracksync/internal/services"
	"tracksync/internal/timer"
	"tracksync/internal/tracker"
)

func main() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logOpts := logging.FromEnv()
	if cfg.Application.Verbose {
		logOpts.Level = "debug"
	}
	logging.Init(logOpts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(cfg, newEngine)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newEngine wires the HTTP clients into a reconciliation engine from the
// resolved configuration.
func newEngine(cfg *config.Config) (services.Engine, error) {
	retryCfg := retry.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Delay:       cfg.Retry.Delay,
	}

	trackerClient := tracker.NewClient(tracker.Options{
		BaseURL:  cfg.Tracker.BaseURL,
		APIKey:   cfg.Tracker.APIKey,
		PageSize: cfg.Tracker.PageSize,
		Timeout:  cfg.Application.HTTPTimeout,
		Retry:    retryCfg,
	})

	timerClient := timer.NewClient(timer.Options{
		BaseURL: cfg.Timer.BaseURL,
		APIKey:  cfg.Timer.APIKey,
		Timeout: cfg.Application.HTTPTimeout,
		Retry:   retryCfg,
	})

	return services.NewReconciliationEngine(trackerClient, timerClient, services.Settings{
		WorkspaceName: cfg.Timer.WorkspaceName,
		UserEmail:     cfg.Timer.UserEmail,
		CutoffDays:    cfg.Sync.CutoffDays,
		LookbackDays:  cfg.Sync.LookbackDays,
	}), nil
}
