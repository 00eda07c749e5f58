package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/budget"
	"github.com/MrJamesThe3rd/finplan/internal/category"
	"github.com/MrJamesThe3rd/finplan/internal/goal"
	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
	"github.com/MrJamesThe3rd/finplan/internal/spending"
	"github.com/MrJamesThe3rd/finplan/internal/transaction"
)

// Run is the state one analysis threads through its stages. Each stage reads
// what earlier stages left and adds its own output; nothing outlives the run.
type Run struct {
	budgetID uuid.UUID
	now      time.Time
	accounts *budget.Accounts

	taxonomy *category.Taxonomy
	mapping  category.Mapping

	reconciled    *transaction.Result
	entries       []spending.Entry
	uncategorized int

	tracking spending.Tracking
	window   spending.Window

	goals     []*goal.Goal
	schedules map[uuid.UUID]goal.Schedule
	skipped   []SkippedGoal

	result recommendation.Result
}

func newRun(budgetID uuid.UUID, now time.Time, accounts *budget.Accounts) *Run {
	return &Run{
		budgetID:  budgetID,
		now:       now,
		accounts:  accounts,
		schedules: make(map[uuid.UUID]goal.Schedule),
	}
}

func (r *Run) report() *Report {
	return &Report{
		BudgetID:        r.budgetID,
		AnalyzedAt:      r.now,
		Linked:          len(r.reconciled.Linked),
		Unlinked:        len(r.reconciled.Unlinked),
		New:             len(r.reconciled.New),
		Uncategorized:   r.uncategorized,
		Skipped:         r.skipped,
		Recommendations: r.result,
		Tracking:        r.tracking,
		Goals:           r.goals,
	}
}
