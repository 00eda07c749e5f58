package goal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
)

type Repository interface {
	CreateGoal(ctx context.Context, g *Goal) error
	// ListGoals returns the budget's goals annotated with their account balance.
	ListGoals(ctx context.Context, budgetID uuid.UUID) ([]*Goal, error)
	DeleteGoal(ctx context.Context, budgetID, id uuid.UUID) error
	// SavePlan upserts the tracking and recommendations of one goal.
	SavePlan(ctx context.Context, g *Goal) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the clock used for validation.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type CreateParams struct {
	BudgetID   uuid.UUID
	Name       string
	Type       Type
	Amount     decimal.Decimal
	TargetDate time.Time
	Debt       *Debt
	AccountID  *string
	Strategy   recommendation.Strategy
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Goal, error) {
	g := &Goal{
		BudgetID:   params.BudgetID,
		Name:       params.Name,
		Type:       params.Type,
		Amount:     params.Amount,
		TargetDate: params.TargetDate,
		Debt:       params.Debt,
		AccountID:  params.AccountID,
		Strategy:   params.Strategy,
		Tracking:   Tracking{},
	}

	if err := g.Validate(s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.CreateGoal(ctx, g); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}

	return g, nil
}

func (s *Service) List(ctx context.Context, budgetID uuid.UUID) ([]*Goal, error) {
	return s.repo.ListGoals(ctx, budgetID)
}

func (s *Service) Delete(ctx context.Context, budgetID, id uuid.UUID) error {
	return s.repo.DeleteGoal(ctx, budgetID, id)
}

func (s *Service) SavePlan(ctx context.Context, g *Goal) error {
	if err := s.repo.SavePlan(ctx, g); err != nil {
		return fmt.Errorf("save plan of goal %s: %w", g.ID, err)
	}

	return nil
}
