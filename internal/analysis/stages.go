package analysis

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/finplan/internal/apperror"
	"github.com/MrJamesThe3rd/finplan/internal/budget"
	"github.com/MrJamesThe3rd/finplan/internal/category"
	"github.com/MrJamesThe3rd/finplan/internal/goal"
	"github.com/MrJamesThe3rd/finplan/internal/logger"
	"github.com/MrJamesThe3rd/finplan/internal/money"
	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
	"github.com/MrJamesThe3rd/finplan/internal/spending"
	"github.com/MrJamesThe3rd/finplan/internal/transaction"
)

func (s *Service) loadCategories(ctx context.Context, run *Run) error {
	taxonomy, mapping, err := s.categories.Load(ctx, run.budgetID)
	if err != nil {
		if errors.Is(err, category.ErrNoMappings) {
			return apperror.Wrap(apperror.KindIntegrity, "load categories", err)
		}

		return apperror.Wrap(apperror.KindPersistence, "load categories", err)
	}

	run.taxonomy = taxonomy
	run.mapping = mapping

	return nil
}

func (s *Service) reconcile(ctx context.Context, run *Run) error {
	itemAccounts := run.accounts.ItemAccounts()

	items := make([]transaction.Item, 0, len(run.accounts.Items))
	for _, it := range run.accounts.Items {
		items = append(items, transaction.Item{
			ID:          it.ID,
			AccessToken: it.AccessToken,
			Cursor:      it.Cursor,
			AccountIDs:  itemAccounts[it.ID],
		})
	}

	res, err := s.reconciler.Reconcile(ctx, transaction.ReconcileInput{
		BudgetID:       run.budgetID,
		Items:          items,
		LinkedAccounts: run.accounts.LinkedIDs(),
		ManualAccounts: run.accounts.ManualIDs(),
	})
	if err != nil {
		return apperror.Wrap(apperror.KindUpstream, "reconcile transactions", err)
	}

	run.reconciled = res

	return nil
}

// classify resolves every linked transaction once. Unmappable transactions are
// counted and left out of the aggregates. New transactions keep the category
// they were given so it is stored with them.
func (s *Service) classify(ctx context.Context, run *Run) error {
	log := logger.FromContext(ctx)

	fresh := make(map[string]bool, len(run.reconciled.New))
	for _, tx := range run.reconciled.New {
		fresh[tx.Key()] = true
	}

	resolved := make(map[string]uuid.UUID)

	for _, tx := range run.reconciled.Linked {
		ref, ok := category.Classify(tx.ClassifyInput(), run.taxonomy, run.mapping)
		if !ok {
			run.uncategorized++

			log.Debug().
				Str("user_tx_id", tx.UserTxID).
				Str("provider_detailed", tx.ProviderDetailed).
				Msg("transaction left uncategorized")

			continue
		}

		resolved[tx.Key()] = ref.CategoryID

		if tx.CategoryID == nil && fresh[tx.Key()] {
			tx.CategoryID = &ref.CategoryID
		}

		run.entries = append(run.entries, spending.Entry{
			Key:    tx.Key(),
			Date:   tx.Date,
			Amount: tx.Amount,
			Ref:    ref,
		})
	}

	changed := make(map[uuid.UUID]bool, len(run.reconciled.RecurringChanged))
	for _, rec := range run.reconciled.RecurringChanged {
		changed[rec.ID] = true
	}

	for _, rec := range run.reconciled.Recurring {
		cat := rec.InheritCategory(resolved)
		if cat == nil {
			if ref, ok := category.Classify(rec.ClassifyInput(), run.taxonomy, run.mapping); ok {
				cat = &ref.CategoryID
			}
		}

		if cat == nil || (rec.CategoryID != nil && *rec.CategoryID == *cat) {
			continue
		}

		rec.CategoryID = cat

		if !changed[rec.ID] {
			changed[rec.ID] = true
			run.reconciled.RecurringChanged = append(run.reconciled.RecurringChanged, rec)
		}
	}

	if run.uncategorized > 0 {
		log.Info().Int("uncategorized", run.uncategorized).Msg("some transactions could not be categorized")
	}

	return nil
}

func (s *Service) aggregate(_ context.Context, run *Run) error {
	run.tracking = spending.Aggregate(run.entries, run.taxonomy)
	run.window = spending.TrailingWindow(run.entries, run.taxonomy, s.opts.WindowDays)

	if run.tracking.Empty() {
		return apperror.Validation("no categorized transactions to analyze")
	}

	return nil
}

// planGoals builds each goal's original schedule. A goal that no longer
// validates is skipped, not fatal.
func (s *Service) planGoals(ctx context.Context, run *Run) error {
	log := logger.FromContext(ctx)

	goals, err := s.goals.List(ctx, run.budgetID)
	if err != nil {
		return apperror.Wrap(apperror.KindPersistence, "list goals", err)
	}

	for _, g := range goals {
		schedule, err := goal.Plan(g, run.now)
		if err != nil {
			if !apperror.IsClient(err) {
				return err
			}

			log.Warn().Err(err).Str("goal_id", g.ID.String()).Msg("goal skipped")
			run.skipped = append(run.skipped, SkippedGoal{GoalID: g.ID, Name: g.Name, Reason: err.Error()})

			continue
		}

		run.goals = append(run.goals, g)
		run.schedules[g.ID] = schedule
	}

	return nil
}

func (s *Service) recommend(ctx context.Context, run *Run) error {
	needs := make([]recommendation.GoalNeed, 0, len(run.goals))
	for _, g := range run.goals {
		needs = append(needs, run.schedules[g.ID].Need(g))
	}

	run.result = s.engine.Recommend(run.window, needs)

	if run.result.Empty() {
		return apperror.Validation("budget has no spending categories")
	}

	log := logger.FromContext(ctx)

	for _, g := range run.goals {
		for _, p := range run.result.Plans {
			if sched, ok := p.Goal(g.ID); !ok || !sched.Unfundable {
				continue
			}

			log.Warn().
				Str("goal_id", g.ID.String()).
				Str("strategy", string(p.Strategy)).
				Msg("goal unfundable within the schedule limit")

			run.skipped = append(run.skipped, SkippedGoal{
				GoalID:   g.ID,
				Name:     g.Name,
				Strategy: p.Strategy,
				Reason:   "too little left over to fund the goal within the schedule limit",
			})
		}
	}

	return nil
}

// trackGoals stores every strategy's schedule on the goal and rebuilds its
// tracking from the goal's own strategy.
func (s *Service) trackGoals(_ context.Context, run *Run) error {
	for _, g := range run.goals {
		g.Recommendations = make(map[recommendation.Strategy][]recommendation.MonthAmount, len(run.result.Plans))

		for _, p := range run.result.Plans {
			sched, _ := p.Goal(g.ID)
			g.Recommendations[p.Strategy] = slices.Clone(sched.Months)
		}

		tracking, err := goal.Rebuild(g.Tracking, g.Recommendations[g.TrackingStrategy()], g.AccountBalance)
		if err != nil {
			return fmt.Errorf("goal %s: %w", g.ID, err)
		}

		g.Tracking = tracking
	}

	return nil
}

// round is the only place amounts are rounded.
func (s *Service) round(_ context.Context, run *Run) error {
	run.result.Round()
	run.tracking.Round()

	for _, g := range run.goals {
		g.Tracking.Round()

		for _, months := range g.Recommendations {
			for i := range months {
				months[i].Amount = money.Round(months[i].Amount)
			}
		}
	}

	return nil
}

// persist writes reconciled transactions, then the spending output, then the
// goals as one concurrent batch. Goal writes are idempotent upserts, so rows
// already written when another fails are safe to repeat.
func (s *Service) persist(ctx context.Context, run *Run) error {
	if err := s.reconciler.Commit(ctx, run.budgetID, run.reconciled); err != nil {
		return apperror.Wrap(apperror.KindPersistence, "commit transactions", err)
	}

	err := s.budgets.SaveSpending(ctx, &budget.Spending{
		BudgetID:        run.budgetID,
		Recommendations: run.result,
		Tracking:        run.tracking,
		AnalyzedAt:      run.now,
	})
	if err != nil {
		return apperror.Wrap(apperror.KindPersistence, "save spending", err)
	}

	var eg errgroup.Group
	if s.opts.GoalWriters > 0 {
		eg.SetLimit(s.opts.GoalWriters)
	}

	for _, g := range run.goals {
		eg.Go(func() error {
			return s.goals.SavePlan(ctx, g)
		})
	}

	if err := eg.Wait(); err != nil {
		return apperror.Wrap(apperror.KindPersistence, "save goals", err)
	}

	return nil
}

func (s *Service) complete(ctx context.Context, run *Run) error {
	return s.onboarding.CompleteAnalysis(ctx, run.budgetID, !run.result.Empty(), !run.tracking.Empty())
}
