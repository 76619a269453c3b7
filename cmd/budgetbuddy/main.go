package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/cache"
	"budgetbuddy/internal/cli"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/tui"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting budgetbuddy")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	// The mirror pipeline is optional. Without AMQP the app is
	// SQLite-only and fully functional.
	var amqpClient *amqp.Client
	if cfg.MirrorEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, running without the spreadsheet mirror", "error", err)
		} else {
			amqpClient = client
			logger.Info("AMQP mirror enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ledger := services.NewLedgerService(repo, amqpClient)
	defer ledger.Close()

	goals := services.NewGoalService(repo, ledger)
	templates := services.NewTemplateService(repo)
	categories := services.NewCategoryService(repo)
	autoApply := services.NewAutoApplyController(repo, repo, repo, repo)

	app := tui.NewApp(cfg, repo, ledger, goals, templates, categories, autoApply, os.Stdout)

	cacheManager := cache.NewManager()
	for _, c := range app.Caches() {
		cacheManager.Register(c)
	}
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	ctx, _ := cli.GracefulShutdown(logger, 5*time.Second, nil)

	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Dashboard exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Goodbye")
}
