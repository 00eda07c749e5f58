// Package onboarding gates a budget's setup flow. Steps only move to an
// adjacent step, and every write is a compare-and-set on the current step.
package onboarding

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/apperror"
	"github.com/MrJamesThe3rd/finplan/internal/goal"
)

type Step string

const (
	StepProfileGoals       Step = "profile_goals"
	StepAnalyzeSpending    Step = "analyze_spending"
	StepAnalysisInProgress Step = "analyze_spending_in_progress"
	StepBudgetSetup        Step = "budget_setup"
	StepEnd                Step = "end"
)

var steps = []Step{StepProfileGoals, StepAnalyzeSpending, StepAnalysisInProgress, StepBudgetSetup, StepEnd}

var (
	ErrNotFound          = errors.New("onboarding state not found")
	ErrInvalidTransition = errors.New("invalid onboarding transition")
	ErrConcurrentRun     = errors.New("an analysis is already running for this budget")
	ErrStaleStep         = errors.New("onboarding step changed concurrently")
	ErrIncompleteProfile = errors.New("financial profile is incomplete")
	ErrNoRecommendations = errors.New("spending recommendations and tracking are required")
)

// ParseStep validates a step name.
func ParseStep(s string) (Step, error) {
	if slices.Contains(steps, Step(s)) {
		return Step(s), nil
	}

	return "", apperror.Validation("unknown onboarding step %q", s)
}

func (s Step) index() int {
	return slices.Index(steps, s)
}

// Adjacent reports whether to is one step away from s in either direction.
func (s Step) Adjacent(to Step) bool {
	from, dest := s.index(), to.index()
	if from < 0 || dest < 0 {
		return false
	}

	return dest-from == 1 || from-dest == 1
}

type State struct {
	BudgetID  uuid.UUID
	Step      Step
	UpdatedAt time.Time
}

// Profile is the financial profile collected in the first step.
type Profile struct {
	BudgetID      uuid.UUID
	MonthlyIncome decimal.Decimal
	Currency      string
	HouseholdSize int
	PayFrequency  string
}

// Complete reports whether analysis can start from this profile.
func (p *Profile) Complete() bool {
	return p != nil &&
		p.MonthlyIncome.IsPositive() &&
		p.Currency != "" &&
		p.HouseholdSize > 0 &&
		p.PayFrequency != ""
}

// Guard carries what the transition guards inspect.
type Guard struct {
	Now     time.Time
	Profile *Profile
	Goals   []*goal.Goal
	// HasRecommendations and HasTracking describe the spending output of the run.
	HasRecommendations bool
	HasTracking        bool
}

// Check returns a client error if entering to is not allowed.
func (g Guard) Check(to Step) error {
	switch to {
	case StepAnalyzeSpending:
		if !g.Profile.Complete() {
			return apperror.Wrap(apperror.KindValidation, "enter "+string(to), ErrIncompleteProfile)
		}

		for _, gl := range g.Goals {
			if err := gl.Validate(g.Now); err != nil {
				return fmt.Errorf("goal %q: %w", gl.Name, err)
			}
		}
	case StepBudgetSetup:
		if !g.HasRecommendations || !g.HasTracking {
			return apperror.Wrap(apperror.KindValidation, "enter "+string(to), ErrNoRecommendations)
		}
	}

	return nil
}
