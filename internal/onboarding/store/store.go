package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/onboarding"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetState(ctx context.Context, budgetID uuid.UUID) (*onboarding.State, error) {
	var (
		state onboarding.State
		step  string
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT budget_id, step, updated_at FROM onboarding_states WHERE budget_id = $1`,
		budgetID,
	).Scan(&state.BudgetID, &step, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, onboarding.ErrNotFound
		}

		return nil, fmt.Errorf("getting onboarding state: %w", err)
	}

	state.Step = onboarding.Step(step)

	return &state, nil
}

// CompareAndSetStep relies on the WHERE clause for atomicity: only one of two
// concurrent callers sees its row updated.
func (s *Store) CompareAndSetStep(ctx context.Context, budgetID uuid.UUID, from, to onboarding.Step) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE onboarding_states SET step = $1, updated_at = NOW() WHERE budget_id = $2 AND step = $3`,
		to, budgetID, from,
	)
	if err != nil {
		return false, fmt.Errorf("updating onboarding step: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}

	return n == 1, nil
}

func (s *Store) GetProfile(ctx context.Context, budgetID uuid.UUID) (*onboarding.Profile, error) {
	var (
		p             onboarding.Profile
		currency, pay sql.NullString
		household     sql.NullInt64
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT budget_id, monthly_income, currency, household_size, pay_frequency
		FROM financial_profiles WHERE budget_id = $1`,
		budgetID,
	).Scan(&p.BudgetID, &p.MonthlyIncome, &currency, &household, &pay)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("getting financial profile: %w", err)
	}

	p.Currency = currency.String
	p.HouseholdSize = int(household.Int64)
	p.PayFrequency = pay.String

	return &p, nil
}

func (s *Store) SaveProfile(ctx context.Context, p *onboarding.Profile) error {
	query := `
		INSERT INTO financial_profiles (budget_id, monthly_income, currency, household_size, pay_frequency, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (budget_id) DO UPDATE SET
			monthly_income = EXCLUDED.monthly_income,
			currency = EXCLUDED.currency,
			household_size = EXCLUDED.household_size,
			pay_frequency = EXCLUDED.pay_frequency,
			updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, p.BudgetID, p.MonthlyIncome, p.Currency, p.HouseholdSize, p.PayFrequency); err != nil {
		return fmt.Errorf("saving financial profile: %w", err)
	}

	return nil
}
