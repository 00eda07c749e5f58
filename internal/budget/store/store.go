package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/budget"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListLinkedAccounts(ctx context.Context, budgetID uuid.UUID) ([]budget.Account, error) {
	query := `
		SELECT id, budget_id, item_id, name, type, balance
		FROM accounts
		WHERE budget_id = $1
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []budget.Account

	for rows.Next() {
		var (
			a      budget.Account
			itemID sql.NullString
		)

		if err := rows.Scan(&a.ID, &a.BudgetID, &itemID, &a.Name, &a.Type, &a.Balance); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		a.ItemID = itemID.String
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}

	return accounts, nil
}

func (s *Store) ListItems(ctx context.Context, budgetID uuid.UUID) ([]budget.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, budget_id, access_token, COALESCE(cursor, '') FROM provider_items WHERE budget_id = $1 ORDER BY id`,
		budgetID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing provider items: %w", err)
	}
	defer rows.Close()

	var items []budget.Item

	for rows.Next() {
		var it budget.Item
		if err := rows.Scan(&it.ID, &it.BudgetID, &it.AccessToken, &it.Cursor); err != nil {
			return nil, fmt.Errorf("scanning provider item: %w", err)
		}

		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating provider item rows: %w", err)
	}

	return items, nil
}

func (s *Store) SaveSpending(ctx context.Context, sp *budget.Spending) error {
	recs, err := json.Marshal(sp.Recommendations)
	if err != nil {
		return fmt.Errorf("encoding recommendations: %w", err)
	}

	tracking, err := json.Marshal(sp.Tracking)
	if err != nil {
		return fmt.Errorf("encoding tracking: %w", err)
	}

	query := `
		INSERT INTO spending_analyses (budget_id, recommendations, tracking, analyzed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (budget_id) DO UPDATE SET
			recommendations = EXCLUDED.recommendations,
			tracking = EXCLUDED.tracking,
			analyzed_at = EXCLUDED.analyzed_at
	`

	if _, err := s.db.ExecContext(ctx, query, sp.BudgetID, recs, tracking, sp.AnalyzedAt); err != nil {
		return fmt.Errorf("saving spending analysis: %w", err)
	}

	return nil
}

func (s *Store) LoadSpending(ctx context.Context, budgetID uuid.UUID) (*budget.Spending, error) {
	var (
		sp             budget.Spending
		recs, tracking []byte
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT budget_id, recommendations, tracking, analyzed_at FROM spending_analyses WHERE budget_id = $1`,
		budgetID,
	).Scan(&sp.BudgetID, &recs, &tracking, &sp.AnalyzedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, budget.ErrNoAnalysis
		}

		return nil, fmt.Errorf("loading spending analysis: %w", err)
	}

	if err := json.Unmarshal(recs, &sp.Recommendations); err != nil {
		return nil, fmt.Errorf("decoding recommendations: %w", err)
	}

	if err := json.Unmarshal(tracking, &sp.Tracking); err != nil {
		return nil, fmt.Errorf("decoding tracking: %w", err)
	}

	return &sp, nil
}
