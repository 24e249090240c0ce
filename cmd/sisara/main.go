package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/sisara/internal/cli"
	"github.com/alexanderramin/sisara/internal/config"
	"github.com/alexanderramin/sisara/internal/db"
	"github.com/alexanderramin/sisara/internal/repository"
	"github.com/alexanderramin/sisara/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := cfg.NewLogger(os.Stderr)

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	logger.Debug("database ready", "path", cfg.DBPath)

	// Wire repositories
	lineItemRepo := repository.NewSQLiteLineItemRepo(database)
	masterDataRepo := repository.NewSQLiteMasterDataRepo(database)
	revisionRepo := repository.NewSQLiteRevisionRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// Use-case observers: structured log lines and, when a metrics file is
	// configured, Prometheus counters written out on exit.
	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewSlogUseCaseObserver(logger))
	}
	if cfg.MetricsFile != "" {
		reg := prometheus.NewRegistry()
		observers = append(observers, service.NewMetricsUseCaseObserver(reg))
		defer func() {
			if werr := prometheus.WriteToTextfile(cfg.MetricsFile, reg); werr != nil {
				logger.Warn("writing metrics", "path", cfg.MetricsFile, "error", werr)
			}
		}()
	}
	observer := service.MultiObserver(observers...)

	// Wire services
	budgetSvc := service.NewBudgetService(lineItemRepo, uow, observer)
	syncSvc := service.NewSyncService(uow, observer)

	app := &cli.App{
		Budget:      budgetSvc,
		Sync:        syncSvc,
		MasterData:  service.NewMasterDataService(masterDataRepo, uow, observer),
		Revisions:   service.NewRevisionService(revisionRepo, budgetSvc, syncSvc, observer),
		Maintenance: service.NewMaintenanceService(lineItemRepo, masterDataRepo, revisionRepo, uow, observer),

		ConfirmPrompt: cfg.ConfirmPrompt,
	}

	// Detect interactive terminal for prompts and the tree browser.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}
