package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/goal"
	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateGoal(ctx context.Context, g *goal.Goal) error {
	debt, err := encode(g.Debt)
	if err != nil {
		return fmt.Errorf("encoding debt details: %w", err)
	}

	tracking, err := encode(g.Tracking)
	if err != nil {
		return fmt.Errorf("encoding tracking: %w", err)
	}

	query := `
		INSERT INTO goals (budget_id, name, type, amount, target_date, debt, account_id, strategy, tracking, recommendations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '{}'::jsonb, NOW())
		RETURNING id, created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		g.BudgetID,
		g.Name,
		g.Type,
		g.Amount,
		g.TargetDate,
		debt,
		g.AccountID,
		g.TrackingStrategy(),
		tracking,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating goal: %w", err)
	}

	return nil
}

func (s *Store) ListGoals(ctx context.Context, budgetID uuid.UUID) ([]*goal.Goal, error) {
	query := `
		SELECT g.id, g.budget_id, g.name, g.type, g.amount, g.target_date, g.debt, g.account_id,
			COALESCE(a.balance, 0), g.strategy, g.tracking, g.recommendations, g.created_at, g.updated_at
		FROM goals g
		LEFT JOIN accounts a ON a.id = g.account_id
		WHERE g.budget_id = $1
		ORDER BY g.target_date ASC, g.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	defer rows.Close()

	var goals []*goal.Goal

	for rows.Next() {
		var (
			g                    goal.Goal
			typ, strategy        string
			debt, tracking, recs []byte
			balance              decimal.Decimal
		)

		if err := rows.Scan(
			&g.ID, &g.BudgetID, &g.Name, &typ, &g.Amount, &g.TargetDate, &debt, &g.AccountID,
			&balance, &strategy, &tracking, &recs, &g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}

		g.Type = goal.Type(typ)
		g.Strategy = recommendation.Strategy(strategy)
		g.AccountBalance = balance

		if err := decode(debt, &g.Debt); err != nil {
			return nil, fmt.Errorf("decoding debt of goal %s: %w", g.ID, err)
		}

		if err := decode(tracking, &g.Tracking); err != nil {
			return nil, fmt.Errorf("decoding tracking of goal %s: %w", g.ID, err)
		}

		if err := decode(recs, &g.Recommendations); err != nil {
			return nil, fmt.Errorf("decoding recommendations of goal %s: %w", g.ID, err)
		}

		if g.Tracking == nil {
			g.Tracking = goal.Tracking{}
		}

		goals = append(goals, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating goal rows: %w", err)
	}

	return goals, nil
}

func (s *Store) DeleteGoal(ctx context.Context, budgetID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND budget_id = $2`, id, budgetID)
	if err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return goal.ErrNotFound
	}

	return nil
}

// SavePlan is keyed by goal id so repeating it after a partial failure is safe.
func (s *Store) SavePlan(ctx context.Context, g *goal.Goal) error {
	tracking, err := encode(g.Tracking)
	if err != nil {
		return fmt.Errorf("encoding tracking: %w", err)
	}

	recs, err := encode(g.Recommendations)
	if err != nil {
		return fmt.Errorf("encoding recommendations: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE goals SET tracking = $1, recommendations = $2, updated_at = NOW() WHERE id = $3`,
		tracking, recs, g.ID,
	)
	if err != nil {
		return fmt.Errorf("saving goal plan: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return goal.ErrNotFound
	}

	return nil
}

// encode renders v as JSON, or SQL NULL for a nil pointer.
func encode(v any) ([]byte, error) {
	if d, ok := v.(*goal.Debt); ok && d == nil {
		return nil, nil
	}

	return json.Marshal(v)
}

func decode(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}

	return json.Unmarshal(raw, v)
}
