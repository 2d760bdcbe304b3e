package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"finsight/internal/config"
	"finsight/internal/database"
	"finsight/internal/events"
	"finsight/internal/logger"
	"finsight/internal/pipeline"
	"finsight/internal/plaid"
	"finsight/internal/server"
)

// exitStatus carries a partial-failure code out of a successful command.
var exitStatus int

var rootCmd = &cobra.Command{
	Use:   "syncer",
	Short: "Periodically reconcile every user's linked items with Plaid",
	Long: `syncer runs the transaction sync on SYNC_SCHEDULE until interrupted.
With SYNC_API_URL set it asks a running API to sync; otherwise it talks to the database directly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := run(false)
		exitStatus = code
		return err
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single sync for all users and exit",
	Long:  "Run a single sync and exit with status 2 when any user failed to sync.",
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := run(true)
		exitStatus = code
		return err
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)
}

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	err := rootCmd.Execute()
	code := exitStatus
	if err != nil {
		logger.Get().Errorf("Syncer error: %v", err)
		if code == 0 {
			code = 1
		}
	}
	if code != 0 {
		logger.Sync()
		os.Exit(code)
	}
}

func run(once bool) (int, error) {
	cfg, err := config.Load()
	if err != nil {
		return 1, fmt.Errorf("failed to load configuration: %w", err)
	}

	runner, cleanup, err := newRunner(cfg)
	if err != nil {
		return 1, err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := &syncJob{runner: runner, log: logger.Get()}
	if once {
		result, err := job.Run(ctx)
		if err != nil {
			return 1, err
		}
		return exitCode(result), nil
	}

	c := cron.New(
		cron.WithLogger(cronLogger{logger.Get()}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger.Get()})),
	)
	if _, err := c.AddFunc(cfg.SyncSchedule, func() { _, _ = job.Run(ctx) }); err != nil {
		return 1, fmt.Errorf("invalid SYNC_SCHEDULE %q: %w", cfg.SyncSchedule, err)
	}

	logger.Get().Infow("Syncer started", "schedule", cfg.SyncSchedule, "remote", cfg.SyncAPIURL != "")
	c.Start()
	<-ctx.Done()

	logger.Get().Info("Stopping syncer, waiting for running sync")
	<-c.Stop().Done()
	return 0, nil
}

// newRunner syncs through the API when SYNC_API_URL is set and against the
// database directly otherwise.
func newRunner(cfg *config.Config) (syncRunner, func(), error) {
	if cfg.SyncAPIURL != "" {
		if len(cfg.PipelineAPIKeys) == 0 {
			return nil, nil, fmt.Errorf("PIPELINE_API_KEY is required with SYNC_API_URL")
		}
		// A full sync can take a while; the API bounds each feed call itself.
		client := pipeline.NewClient(cfg.SyncAPIURL, cfg.PipelineAPIKeys[0], &http.Client{Timeout: 30 * time.Minute})
		return client, func() {}, nil
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	clients := plaid.NewClients(cfg, &http.Client{Timeout: cfg.PlaidRequestTimeout})
	svc := server.NewServices(dbManager.DB(), cfg, clients, events.NewLogNotifier(logger.Get()))
	return svc.Sync, func() { _ = dbManager.Close() }, nil
}
