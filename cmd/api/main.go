package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/finplan/internal/analysis"
	"github.com/MrJamesThe3rd/finplan/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/finplan/internal/budget/store"
	"github.com/MrJamesThe3rd/finplan/internal/category"
	categoryStore "github.com/MrJamesThe3rd/finplan/internal/category/store"
	"github.com/MrJamesThe3rd/finplan/internal/config"
	"github.com/MrJamesThe3rd/finplan/internal/database"
	"github.com/MrJamesThe3rd/finplan/internal/export"
	"github.com/MrJamesThe3rd/finplan/internal/goal"
	goalStore "github.com/MrJamesThe3rd/finplan/internal/goal/store"
	finplanHttp "github.com/MrJamesThe3rd/finplan/internal/http"
	analysisHandler "github.com/MrJamesThe3rd/finplan/internal/http/analysis"
	categoryHandler "github.com/MrJamesThe3rd/finplan/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/finplan/internal/http/export"
	goalHandler "github.com/MrJamesThe3rd/finplan/internal/http/goal"
	importHandler "github.com/MrJamesThe3rd/finplan/internal/http/importcsv"
	onboardingHandler "github.com/MrJamesThe3rd/finplan/internal/http/onboarding"
	txHandler "github.com/MrJamesThe3rd/finplan/internal/http/transaction"
	"github.com/MrJamesThe3rd/finplan/internal/importer"
	"github.com/MrJamesThe3rd/finplan/internal/logger"
	"github.com/MrJamesThe3rd/finplan/internal/onboarding"
	onboardingStore "github.com/MrJamesThe3rd/finplan/internal/onboarding/store"
	"github.com/MrJamesThe3rd/finplan/internal/provider/plaid"
	"github.com/MrJamesThe3rd/finplan/internal/retry"
	"github.com/MrJamesThe3rd/finplan/internal/transaction"
	txStore "github.com/MrJamesThe3rd/finplan/internal/transaction/store"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log := logger.New("info")
		log.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	txRepo := txStore.New(db)

	var (
		transactionService = transaction.NewService(txRepo)
		budgetService      = budget.NewService(budgetStore.New(db))
		categoryService    = category.NewService(categoryStore.New(db))
		goalService        = goal.NewService(goalStore.New(db))
		onboardingService  = onboarding.NewService(onboardingStore.New(db))
		importService      = importer.NewService(transactionService)
		exportService      = export.NewService(budgetService, goalService)
	)

	plaidClient := plaid.New(plaid.Options{
		BaseURL:  cfg.Plaid.BaseURL,
		ClientID: cfg.Plaid.ClientID,
		Secret:   cfg.Plaid.Secret,
		PageSize: cfg.Plaid.PageSize,
		Timeout:  cfg.Plaid.Timeout,
	})

	reconciler := transaction.NewReconciler(
		txRepo,
		plaidClient,
		retry.Fixed(cfg.Analysis.RetryAttempts, cfg.Analysis.RetryDelay),
		transaction.DetectOptions{
			ToleranceDays:  cfg.Analysis.RecurringToleranceDays,
			MinOccurrences: cfg.Analysis.RecurringMinOccurrence,
		},
	)

	analysisService := analysis.NewService(
		onboardingService,
		budgetService,
		categoryService,
		reconciler,
		goalService,
		analysis.Options{
			WindowDays:    cfg.Analysis.WindowDays,
			GoalWriters:   cfg.Analysis.GoalWriters,
			MaxGoalMonths: cfg.Analysis.MaxGoalMonths,
		},
	)

	handlers := finplanHttp.Handlers{
		Analysis:     analysisHandler.NewHandler(analysisService, budgetService),
		Categories:   categoryHandler.NewHandler(categoryService),
		Onboarding:   onboardingHandler.NewHandler(onboardingService, goalService, budgetService),
		Goals:        goalHandler.NewHandler(goalService),
		Transactions: txHandler.NewHandler(transactionService),
		Import:       importHandler.NewHandler(importService, transactionService),
		Export:       exportHandler.NewHandler(exportService),
	}

	opts := finplanHttp.Options{
		Logger:         log,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
	}
	if cfg.Auth.Disabled {
		log.Warn().Msg("authentication disabled")
		opts.JWTSecret = ""
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           finplanHttp.New(opts, handlers),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("app", cfg.App.Name).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	return nil
}
