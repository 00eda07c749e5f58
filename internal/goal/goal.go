package goal

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/apperror"
	"github.com/MrJamesThe3rd/finplan/internal/money"
	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
)

var (
	ErrNotFound           = errors.New("goal not found")
	ErrTargetNotInFuture  = errors.New("target date must be after today")
	ErrDebtFieldsMismatch = errors.New("debt details are required for debt goals and only allowed there")
)

type Type string

const (
	TypeSavings    Type = "savings"
	TypeDebt       Type = "debt"
	TypeInvestment Type = "investment"
)

func (t Type) Valid() bool {
	switch t {
	case TypeSavings, TypeDebt, TypeInvestment:
		return true
	default:
		return false
	}
}

// Debt holds the fields only a debt goal carries.
type Debt struct {
	Lender         string          `json:"lender"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MinimumPayment decimal.Decimal `json:"minimum_payment"`
}

// Allocation is one dated contribution target. Actual is set once realized.
type Allocation struct {
	Date   time.Time        `json:"date"`
	Target decimal.Decimal  `json:"target"`
	Actual *decimal.Decimal `json:"actual,omitempty"`
}

type MonthTracking struct {
	StartingBalance decimal.Decimal `json:"starting_balance"`
	Allocations     []Allocation    `json:"allocations"`
}

func (m *MonthTracking) target() decimal.Decimal {
	total := decimal.Zero
	for _, a := range m.Allocations {
		total = total.Add(a.Target)
	}

	return total
}

func (m *MonthTracking) realized() bool {
	for _, a := range m.Allocations {
		if a.Actual != nil {
			return true
		}
	}

	return false
}

// Tracking is a goal's contribution calendar keyed by YYYY-MM.
type Tracking map[string]*MonthTracking

// Total sums every allocation target.
func (t Tracking) Total() decimal.Decimal {
	total := decimal.Zero
	for _, m := range t {
		total = total.Add(m.target())
	}

	return total
}

func (t Tracking) Round() {
	for _, m := range t {
		m.StartingBalance = money.Round(m.StartingBalance)

		for i := range m.Allocations {
			m.Allocations[i].Target = money.Round(m.Allocations[i].Target)
		}
	}
}

type Goal struct {
	ID         uuid.UUID
	BudgetID   uuid.UUID
	Name       string
	Type       Type
	Amount     decimal.Decimal
	TargetDate time.Time
	Debt       *Debt
	AccountID  *string
	// AccountBalance is the linked account's current balance, zero when unlinked.
	AccountBalance  decimal.Decimal
	Strategy        recommendation.Strategy
	Tracking        Tracking
	Recommendations map[recommendation.Strategy][]recommendation.MonthAmount
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// Validate checks the goal against now. Errors are client errors.
func (g *Goal) Validate(now time.Time) error {
	if g.Name == "" {
		return apperror.Validation("goal name is required")
	}

	if !g.Type.Valid() {
		return apperror.Validation("unknown goal type %q", g.Type)
	}

	if !g.Amount.IsPositive() {
		return apperror.Validation("goal amount must be positive")
	}

	if (g.Type == TypeDebt) != (g.Debt != nil) {
		return apperror.Wrap(apperror.KindValidation, "validate goal", ErrDebtFieldsMismatch)
	}

	if !dateOf(g.TargetDate).After(dateOf(now)) {
		return apperror.Wrap(apperror.KindValidation, "validate goal",
			fmt.Errorf("%w: %s", ErrTargetNotInFuture, g.TargetDate.Format(time.DateOnly)))
	}

	return nil
}

// Remaining is what is left to contribute. Savings and investment goals count
// the linked account's balance; a debt goal's amount is the outstanding debt.
func (g *Goal) Remaining() decimal.Decimal {
	if g.Type == TypeDebt {
		return g.Amount
	}

	return money.NonNegative(g.Amount.Sub(g.AccountBalance))
}

// TrackingStrategy is the strategy whose recommendation drives the tracking.
func (g *Goal) TrackingStrategy() recommendation.Strategy {
	if g.Strategy == "" {
		return recommendation.Balanced
	}

	return g.Strategy
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
