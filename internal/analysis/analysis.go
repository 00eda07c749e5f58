// Package analysis runs a budget's spending analysis end to end: reconcile,
// classify, aggregate, recommend, schedule goals and persist, rolling the
// onboarding step back when any stage fails.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/apperror"
	"github.com/MrJamesThe3rd/finplan/internal/budget"
	"github.com/MrJamesThe3rd/finplan/internal/category"
	"github.com/MrJamesThe3rd/finplan/internal/goal"
	"github.com/MrJamesThe3rd/finplan/internal/logger"
	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
	"github.com/MrJamesThe3rd/finplan/internal/spending"
	"github.com/MrJamesThe3rd/finplan/internal/transaction"
)

//go:generate mockgen -source=analysis.go -destination=collaborators_mock.go -package=analysis
type Onboarding interface {
	BeginAnalysis(ctx context.Context, budgetID uuid.UUID) error
	Rollback(ctx context.Context, budgetID uuid.UUID) error
	CompleteAnalysis(ctx context.Context, budgetID uuid.UUID, hasRecommendations, hasTracking bool) error
}

type Budgets interface {
	Accounts(ctx context.Context, budgetID uuid.UUID) (*budget.Accounts, error)
	SaveSpending(ctx context.Context, s *budget.Spending) error
}

type Categories interface {
	Load(ctx context.Context, budgetID uuid.UUID) (*category.Taxonomy, category.Mapping, error)
}

type Reconciler interface {
	Reconcile(ctx context.Context, in transaction.ReconcileInput) (*transaction.Result, error)
	Commit(ctx context.Context, budgetID uuid.UUID, res *transaction.Result) error
}

type Goals interface {
	List(ctx context.Context, budgetID uuid.UUID) ([]*goal.Goal, error)
	SavePlan(ctx context.Context, g *goal.Goal) error
}

type Options struct {
	WindowDays int
	// GoalWriters bounds the concurrent per-goal writes; zero means unbounded.
	GoalWriters int
	// MaxGoalMonths caps recommended goal schedules; zero keeps the engine default.
	MaxGoalMonths int
}

type Service struct {
	onboarding Onboarding
	budgets    Budgets
	categories Categories
	reconciler Reconciler
	goals      Goals
	engine     *recommendation.Engine
	opts       Options
	now        func() time.Time
}

func NewService(ob Onboarding, budgets Budgets, categories Categories, reconciler Reconciler, goals Goals, opts Options) *Service {
	return &Service{
		onboarding: ob,
		budgets:    budgets,
		categories: categories,
		reconciler: reconciler,
		goals:      goals,
		engine:     recommendation.NewEngine().WithMaxGoalMonths(opts.MaxGoalMonths),
		opts:       opts,
		now:        time.Now,
	}
}

// WithClock replaces the clock the run is evaluated against.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SkippedGoal is a goal left out of the run because it failed validation, or
// left without a schedule under Strategy because it could not be funded in time.
type SkippedGoal struct {
	GoalID   uuid.UUID               `json:"goal_id"`
	Name     string                  `json:"name"`
	Strategy recommendation.Strategy `json:"strategy,omitempty"`
	Reason   string                  `json:"reason"`
}

// Report is what a successful run hands back to the caller.
type Report struct {
	BudgetID        uuid.UUID
	AnalyzedAt      time.Time
	Linked          int
	Unlinked        int
	New             int
	Uncategorized   int
	Skipped         []SkippedGoal
	Recommendations recommendation.Result
	Tracking        spending.Tracking
	Goals           []*goal.Goal
}

// Run executes one analysis for budgetID. Accounts are checked before the
// onboarding step is claimed so a budget without accounts is never left
// mid-run; after the claim every failure rolls the step back.
func (s *Service) Run(ctx context.Context, budgetID uuid.UUID) (*Report, error) {
	log := logger.FromContext(ctx).With().Str("budget_id", budgetID.String()).Logger()
	ctx = logger.WithContext(ctx, log)

	accounts, err := s.budgets.Accounts(ctx, budgetID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindPersistence, "load accounts", err)
	}

	if len(accounts.Linked) == 0 {
		return nil, apperror.Validation("budget %s has no linked accounts", budgetID)
	}

	if err := s.onboarding.BeginAnalysis(ctx, budgetID); err != nil {
		return nil, err
	}

	run := newRun(budgetID, s.now(), accounts)

	log.Info().Msg("analysis started")

	if err := s.execute(ctx, run); err != nil {
		log.Error().Err(err).Msg("analysis failed")

		if rbErr := s.onboarding.Rollback(ctx, budgetID); rbErr != nil {
			log.Error().Err(rbErr).Msg("rollback failed")
			return nil, errors.Join(err, rbErr)
		}

		return nil, err
	}

	log.Info().
		Int("linked", len(run.reconciled.Linked)).
		Int("goals", len(run.goals)).
		Int("skipped_goals", len(run.skipped)).
		Msg("analysis finished")

	return run.report(), nil
}

type stage struct {
	name string
	fn   func(ctx context.Context, run *Run) error
}

func (s *Service) stages() []stage {
	return []stage{
		{name: "load categories", fn: s.loadCategories},
		{name: "reconcile", fn: s.reconcile},
		{name: "classify", fn: s.classify},
		{name: "aggregate", fn: s.aggregate},
		{name: "plan goals", fn: s.planGoals},
		{name: "recommend", fn: s.recommend},
		{name: "track goals", fn: s.trackGoals},
		{name: "round", fn: s.round},
		{name: "persist", fn: s.persist},
		{name: "complete", fn: s.complete},
	}
}

func (s *Service) execute(ctx context.Context, run *Run) error {
	log := logger.FromContext(ctx)

	for _, st := range s.stages() {
		started := time.Now()

		if err := st.fn(ctx, run); err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}

		log.Debug().Str("stage", st.name).Dur("took", time.Since(started)).Msg("stage done")
	}

	return nil
}
