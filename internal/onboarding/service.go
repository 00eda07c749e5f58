package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/apperror"
	"github.com/MrJamesThe3rd/finplan/internal/logger"
)

type Repository interface {
	GetState(ctx context.Context, budgetID uuid.UUID) (*State, error)
	// CompareAndSetStep moves the budget from one step to another and reports
	// false when the stored step was no longer from.
	CompareAndSetStep(ctx context.Context, budgetID uuid.UUID, from, to Step) (bool, error)
	GetProfile(ctx context.Context, budgetID uuid.UUID) (*Profile, error)
	SaveProfile(ctx context.Context, p *Profile) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the clock guards are evaluated against.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) State(ctx context.Context, budgetID uuid.UUID) (*State, error) {
	return s.repo.GetState(ctx, budgetID)
}

func (s *Service) Profile(ctx context.Context, budgetID uuid.UUID) (*Profile, error) {
	return s.repo.GetProfile(ctx, budgetID)
}

func (s *Service) SaveProfile(ctx context.Context, p *Profile) error {
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	return nil
}

// Transition moves the budget to an adjacent step if the guard allows it.
// Nothing is written when any check fails.
func (s *Service) Transition(ctx context.Context, budgetID uuid.UUID, to Step, guard Guard) error {
	state, err := s.repo.GetState(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("get onboarding state: %w", err)
	}

	if !state.Step.Adjacent(to) {
		return apperror.Wrap(apperror.KindValidation, "transition",
			fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, state.Step, to))
	}

	if guard.Now.IsZero() {
		guard.Now = s.now()
	}

	// Only forward moves are guarded.
	if to.index() > state.Step.index() {
		if err := guard.Check(to); err != nil {
			return err
		}
	}

	return s.swap(ctx, budgetID, state.Step, to)
}

// BeginAnalysis claims the budget for one analysis run.
func (s *Service) BeginAnalysis(ctx context.Context, budgetID uuid.UUID) error {
	state, err := s.repo.GetState(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("get onboarding state: %w", err)
	}

	switch state.Step {
	case StepAnalysisInProgress:
		return apperror.Wrap(apperror.KindValidation, "begin analysis", ErrConcurrentRun)
	case StepAnalyzeSpending:
	default:
		return apperror.Wrap(apperror.KindValidation, "begin analysis",
			fmt.Errorf("%w: analysis cannot start from %s", ErrInvalidTransition, state.Step))
	}

	err = s.swap(ctx, budgetID, StepAnalyzeSpending, StepAnalysisInProgress)
	if errors.Is(err, ErrStaleStep) {
		return apperror.Wrap(apperror.KindValidation, "begin analysis", ErrConcurrentRun)
	}

	return err
}

// Rollback returns an in-progress run to analyze_spending.
func (s *Service) Rollback(ctx context.Context, budgetID uuid.UUID) error {
	if err := s.swap(ctx, budgetID, StepAnalysisInProgress, StepAnalyzeSpending); err != nil {
		return fmt.Errorf("rollback onboarding: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Warn().Str("budget_id", budgetID.String()).Msg("onboarding rolled back to analyze_spending")

	return nil
}

// CompleteAnalysis finishes a run once its output is persisted.
func (s *Service) CompleteAnalysis(ctx context.Context, budgetID uuid.UUID, hasRecommendations, hasTracking bool) error {
	guard := Guard{HasRecommendations: hasRecommendations, HasTracking: hasTracking}
	if err := guard.Check(StepBudgetSetup); err != nil {
		return err
	}

	return s.swap(ctx, budgetID, StepAnalysisInProgress, StepBudgetSetup)
}

func (s *Service) swap(ctx context.Context, budgetID uuid.UUID, from, to Step) error {
	ok, err := s.repo.CompareAndSetStep(ctx, budgetID, from, to)
	if err != nil {
		return apperror.Wrap(apperror.KindPersistence, "set onboarding step", err)
	}

	if !ok {
		return apperror.Wrap(apperror.KindValidation, "set onboarding step",
			fmt.Errorf("%w: expected %s", ErrStaleStep, from))
	}

	return nil
}
