// Package budget owns a budget's accounts, provider items and the stored
// spending output of the last analysis.
package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
	"github.com/MrJamesThe3rd/finplan/internal/spending"
)

var ErrNoAnalysis = errors.New("no analysis stored for budget")

// Account is a financial account. ItemID is empty for manually entered accounts.
type Account struct {
	ID       string
	BudgetID *uuid.UUID
	ItemID   string
	Name     string
	Type     string
	Balance  decimal.Decimal
}

// Manual reports whether no provider backs the account.
func (a Account) Manual() bool {
	return a.ItemID == ""
}

// Item is a provider connection owned by a budget.
type Item struct {
	ID          string
	BudgetID    uuid.UUID
	AccessToken string
	Cursor      string
}

// Accounts groups what a reconciliation of one budget needs.
type Accounts struct {
	Linked []Account
	Items  []Item
}

// LinkedIDs returns the set of linked account ids.
func (a *Accounts) LinkedIDs() map[string]bool {
	out := make(map[string]bool, len(a.Linked))
	for _, acc := range a.Linked {
		out[acc.ID] = true
	}

	return out
}

// ManualIDs returns the set of linked manual account ids.
func (a *Accounts) ManualIDs() map[string]bool {
	out := make(map[string]bool)

	for _, acc := range a.Linked {
		if acc.Manual() {
			out[acc.ID] = true
		}
	}

	return out
}

// ItemAccounts returns the linked account ids per item.
func (a *Accounts) ItemAccounts() map[string][]string {
	out := make(map[string][]string)

	for _, acc := range a.Linked {
		if !acc.Manual() {
			out[acc.ItemID] = append(out[acc.ItemID], acc.ID)
		}
	}

	return out
}

// Spending is the stored spending output of an analysis run.
type Spending struct {
	BudgetID        uuid.UUID
	Recommendations recommendation.Result
	Tracking        spending.Tracking
	AnalyzedAt      time.Time
}

type Repository interface {
	ListLinkedAccounts(ctx context.Context, budgetID uuid.UUID) ([]Account, error)
	ListItems(ctx context.Context, budgetID uuid.UUID) ([]Item, error)
	// SaveSpending replaces the stored spending output of the budget.
	SaveSpending(ctx context.Context, s *Spending) error
	LoadSpending(ctx context.Context, budgetID uuid.UUID) (*Spending, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Accounts(ctx context.Context, budgetID uuid.UUID) (*Accounts, error) {
	linked, err := s.repo.ListLinkedAccounts(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list linked accounts: %w", err)
	}

	items, err := s.repo.ListItems(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list provider items: %w", err)
	}

	return &Accounts{Linked: linked, Items: items}, nil
}

func (s *Service) SaveSpending(ctx context.Context, sp *Spending) error {
	if err := s.repo.SaveSpending(ctx, sp); err != nil {
		return fmt.Errorf("save spending: %w", err)
	}

	return nil
}

func (s *Service) LoadSpending(ctx context.Context, budgetID uuid.UUID) (*Spending, error) {
	return s.repo.LoadSpending(ctx, budgetID)
}
