package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finplan/cmd/tui/internal/view"
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
	"github.com/MrJamesThe3rd/finplan/internal/importer"
	"github.com/MrJamesThe3rd/finplan/internal/logger"
	"github.com/MrJamesThe3rd/finplan/internal/onboarding"
	onboardingStore "github.com/MrJamesThe3rd/finplan/internal/onboarding/store"
	"github.com/MrJamesThe3rd/finplan/internal/provider/plaid"
	"github.com/MrJamesThe3rd/finplan/internal/retry"
	"github.com/MrJamesThe3rd/finplan/internal/transaction"
	txStore "github.com/MrJamesThe3rd/finplan/internal/transaction/store"
)

type services struct {
	analysis     *analysis.Service
	budgets      *budget.Service
	categories   *category.Service
	goals        *goal.Service
	transactions *transaction.Service
	importer     *importer.Service
	export       *export.Service
}

type model struct {
	svc      services
	budgetID uuid.UUID

	currentView View
	views       map[View]view.View
}

type View int

const (
	ViewMenu View = iota
	ViewAnalysis
	ViewStrategies
	ViewGoals
	ViewTransactions
	ViewImport
	ViewExport
)

func newServices(ctx context.Context, cfg *config.Config) (services, error) {
	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return services{}, fmt.Errorf("connecting to database: %w", err)
	}

	txRepo := txStore.New(db)

	svc := services{
		budgets:      budget.NewService(budgetStore.New(db)),
		categories:   category.NewService(categoryStore.New(db)),
		goals:        goal.NewService(goalStore.New(db)),
		transactions: transaction.NewService(txRepo),
	}
	svc.importer = importer.NewService(svc.transactions)
	svc.export = export.NewService(svc.budgets, svc.goals)

	reconciler := transaction.NewReconciler(
		txRepo,
		plaid.New(plaid.Options{
			BaseURL:  cfg.Plaid.BaseURL,
			ClientID: cfg.Plaid.ClientID,
			Secret:   cfg.Plaid.Secret,
			PageSize: cfg.Plaid.PageSize,
			Timeout:  cfg.Plaid.Timeout,
		}),
		retry.Fixed(cfg.Analysis.RetryAttempts, cfg.Analysis.RetryDelay),
		transaction.DetectOptions{
			ToleranceDays:  cfg.Analysis.RecurringToleranceDays,
			MinOccurrences: cfg.Analysis.RecurringMinOccurrence,
		},
	)

	svc.analysis = analysis.NewService(
		onboarding.NewService(onboardingStore.New(db)),
		svc.budgets,
		svc.categories,
		reconciler,
		svc.goals,
		analysis.Options{
			WindowDays:    cfg.Analysis.WindowDays,
			GoalWriters:   cfg.Analysis.GoalWriters,
			MaxGoalMonths: cfg.Analysis.MaxGoalMonths,
		},
	)

	return svc, nil
}

// askBudgetID prompts for the budget unless FINPLAN_BUDGET_ID is set.
func askBudgetID() (uuid.UUID, error) {
	if env := os.Getenv("FINPLAN_BUDGET_ID"); env != "" {
		return uuid.Parse(env)
	}

	var raw string

	err := huh.NewInput().
		Title("Budget ID").
		Value(&raw).
		Validate(func(s string) error {
			_, err := uuid.Parse(strings.TrimSpace(s))
			return err
		}).
		Run()
	if err != nil {
		return uuid.Nil, err
	}

	return uuid.Parse(strings.TrimSpace(raw))
}

func initialModel(svc services, budgetID uuid.UUID) model {
	return model{
		svc:         svc,
		budgetID:    budgetID,
		currentView: ViewMenu,
		views:       make(map[View]view.View),
	}
}

func (m model) open(v View) (tea.Model, tea.Cmd) {
	var next view.View

	switch v {
	case ViewAnalysis:
		next = view.NewAnalysisModel(m.svc.analysis, m.svc.budgets, m.budgetID)
	case ViewGoals:
		next = view.NewGoalsModel(m.svc.goals, m.budgetID)
	case ViewTransactions:
		next = view.NewTransactionsModel(m.svc.transactions, m.svc.categories, m.budgetID)
	case ViewImport:
		next = view.NewImportModel(m.svc.transactions, m.svc.importer, m.budgetID)
	case ViewExport:
		next = view.NewExportModel(m.svc.export, m.budgetID)
	default:
		return m, nil
	}

	m.views[v] = next
	m.currentView = v

	return m, next.Init()
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				return m.open(ViewAnalysis)
			case "2":
				return m.open(ViewGoals)
			case "3":
				return m.open(ViewTransactions)
			case "4":
				return m.open(ViewImport)
			case "5":
				return m.open(ViewExport)
			}
		}
	case view.ShowPlansMsg:
		m.views[ViewStrategies] = view.NewStrategyModel(msg.Result)
		m.currentView = ViewStrategies

		return m, nil
	case view.BackMsg:
		// The strategy browser returns to the analysis it was opened from.
		if m.currentView == ViewStrategies {
			m.currentView = ViewAnalysis
			return m, nil
		}

		m.currentView = ViewMenu

		return m, nil
	}

	current, ok := m.views[m.currentView]
	if !ok {
		return m, nil
	}

	next, cmd := current.Update(msg)
	m.views[m.currentView] = next.(view.View)

	return m, cmd
}

func (m model) View() string {
	if m.currentView == ViewMenu {
		return lipgloss.NewStyle().Padding(2).Render(
			"Finplan TUI\n" +
				lipgloss.NewStyle().Faint(true).Render("budget "+m.budgetID.String()) + "\n\n" +
				"1. Analysis & Strategies\n" +
				"2. Goals\n" +
				"3. Transactions\n" +
				"4. Import CSV\n" +
				"5. Export\n\n" +
				"q. Quit",
		)
	}

	if current, ok := m.views[m.currentView]; ok {
		return current.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	log := logger.New("info")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	budgetID, err := askBudgetID()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid budget id")
	}

	svc, err := newServices(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}

	p := tea.NewProgram(initialModel(svc, budgetID), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal().Err(err).Msg("failed to run TUI")
	}
}
