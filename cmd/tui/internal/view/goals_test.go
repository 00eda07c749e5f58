package view

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finplan/internal/goal"
	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
)

func TestGoalFields_Params(t *testing.T) {
	budgetID := uuid.New()

	t.Run("Savings", func(t *testing.T) {
		f := &goalFields{name: " Trip ", typ: goal.TypeSavings, amount: "1200.50", date: "2030-06-01", strategy: recommendation.Relaxed}

		p := f.params(budgetID)

		assert.Equal(t, budgetID, p.BudgetID)
		assert.Equal(t, "Trip", p.Name)
		assert.Equal(t, "1200.5", p.Amount.String())
		assert.Equal(t, time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC), p.TargetDate)
		assert.Equal(t, recommendation.Relaxed, p.Strategy)
		assert.Nil(t, p.Debt)
	})

	t.Run("Debt", func(t *testing.T) {
		f := &goalFields{name: "Car", typ: goal.TypeDebt, amount: "8000", date: "2030-01-01", lender: "Bank", rate: "4.5", minimum: "150"}

		p := f.params(budgetID)

		require.NotNil(t, p.Debt)
		assert.Equal(t, "Bank", p.Debt.Lender)
		assert.True(t, p.Debt.InterestRate.Equal(decimal.RequireFromString("4.5")))
		assert.True(t, p.Debt.MinimumPayment.Equal(decimal.NewFromInt(150)))
	})
}

func TestGoalInputValidators(t *testing.T) {
	assert.NoError(t, positiveAmount("10.5"))
	assert.Error(t, positiveAmount("0"))
	assert.Error(t, positiveAmount("abc"))

	assert.NoError(t, decimalInput("-1.25"))
	assert.Error(t, decimalInput(""))

	assert.NoError(t, futureDate(time.Now().AddDate(1, 0, 0).Format(time.DateOnly)))
	assert.Error(t, futureDate("2000-01-01"))
	assert.Error(t, futureDate("01/01/2040"))

	assert.Error(t, required("name")("  "))
	assert.NoError(t, required("name")("x"))
}

func TestScheduleRows(t *testing.T) {
	actual := decimal.NewFromInt(90)

	tracking := goal.Tracking{
		"2026-12": {
			StartingBalance: decimal.NewFromInt(100),
			Allocations:     []goal.Allocation{{Date: time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC), Target: decimal.NewFromInt(100)}},
		},
		"2026-11": {
			StartingBalance: decimal.Zero,
			Allocations:     []goal.Allocation{{Date: time.Date(2026, 11, 25, 0, 0, 0, 0, time.UTC), Target: decimal.NewFromInt(100), Actual: &actual}},
		},
	}

	rows := scheduleRows(tracking)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2026-11", "0.00", "2026-11-25", "100.00", "90.00"}, []string(rows[0]))
	assert.Equal(t, []string{"2026-12", "100.00", "2026-12-25", "100.00", "-"}, []string(rows[1]))
}
