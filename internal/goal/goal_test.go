package goal_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/finplan/internal/apperror"
	"github.com/MrJamesThe3rd/finplan/internal/goal"
	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
)

var now = time.Date(2026, 10, 16, 14, 30, 0, 0, time.UTC)

func validGoal() *goal.Goal {
	return &goal.Goal{
		Name:       "Emergency fund",
		Type:       goal.TypeSavings,
		Amount:     decimal.RequireFromString("1000"),
		TargetDate: time.Date(2027, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestGoal_Validate(t *testing.T) {
	type testCase struct {
		name    string
		mutate  func(g *goal.Goal)
		wantErr error
	}

	tests := []testCase{
		{name: "Valid", mutate: func(*goal.Goal) {}},
		{
			name:    "TargetToday",
			mutate:  func(g *goal.Goal) { g.TargetDate = time.Date(2026, 10, 16, 23, 59, 0, 0, time.UTC) },
			wantErr: goal.ErrTargetNotInFuture,
		},
		{
			name:    "TargetInPast",
			mutate:  func(g *goal.Goal) { g.TargetDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
			wantErr: goal.ErrTargetNotInFuture,
		},
		{
			name:   "TargetTomorrow",
			mutate: func(g *goal.Goal) { g.TargetDate = time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC) },
		},
		{
			name:    "DebtWithoutDetails",
			mutate:  func(g *goal.Goal) { g.Type = goal.TypeDebt },
			wantErr: goal.ErrDebtFieldsMismatch,
		},
		{
			name:    "DetailsOnSavings",
			mutate:  func(g *goal.Goal) { g.Debt = &goal.Debt{Lender: "Bank"} },
			wantErr: goal.ErrDebtFieldsMismatch,
		},
		{
			name: "DebtWithDetails",
			mutate: func(g *goal.Goal) {
				g.Type = goal.TypeDebt
				g.Debt = &goal.Debt{Lender: "Bank", InterestRate: decimal.RequireFromString("0.05")}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGoal()
			tt.mutate(g)

			err := g.Validate(now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, apperror.IsClient(err))
		})
	}
}

func TestGoal_ValidateRejectsBadInput(t *testing.T) {
	g := validGoal()
	g.Amount = decimal.Zero
	assert.True(t, apperror.IsClient(g.Validate(now)))

	g = validGoal()
	g.Type = "lottery"
	assert.True(t, apperror.IsClient(g.Validate(now)))
}

func TestGoal_Remaining(t *testing.T) {
	g := validGoal()
	g.AccountBalance = decimal.RequireFromString("400")
	assert.Equal(t, "600", g.Remaining().String())

	g.AccountBalance = decimal.RequireFromString("1500")
	assert.True(t, g.Remaining().IsZero())

	g.Type = goal.TypeDebt
	assert.Equal(t, "1000", g.Remaining().String())
}

func TestGoal_TrackingStrategy(t *testing.T) {
	g := validGoal()
	assert.Equal(t, recommendation.Balanced, g.TrackingStrategy())

	g.Strategy = recommendation.Relaxed
	assert.Equal(t, recommendation.Relaxed, g.TrackingStrategy())
}
