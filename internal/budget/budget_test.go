package budget_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finplan/internal/budget"
)

type fakeRepo struct {
	accounts []budget.Account
	items    []budget.Item
	err      error
}

func (f *fakeRepo) ListLinkedAccounts(context.Context, uuid.UUID) ([]budget.Account, error) {
	return f.accounts, f.err
}

func (f *fakeRepo) ListItems(context.Context, uuid.UUID) ([]budget.Item, error) {
	return f.items, nil
}

func (f *fakeRepo) SaveSpending(context.Context, *budget.Spending) error { return f.err }

func (f *fakeRepo) LoadSpending(context.Context, uuid.UUID) (*budget.Spending, error) {
	return nil, budget.ErrNoAnalysis
}

func TestService_Accounts(t *testing.T) {
	repo := &fakeRepo{
		accounts: []budget.Account{
			{ID: "chk", ItemID: "item-1"},
			{ID: "sav", ItemID: "item-1"},
			{ID: "cash"},
		},
		items: []budget.Item{{ID: "item-1", AccessToken: "tok"}},
	}

	got, err := budget.NewService(repo).Accounts(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"chk": true, "sav": true, "cash": true}, got.LinkedIDs())
	assert.Equal(t, map[string]bool{"cash": true}, got.ManualIDs())
	assert.Equal(t, map[string][]string{"item-1": {"chk", "sav"}}, got.ItemAccounts())
	assert.Len(t, got.Items, 1)
}

func TestService_Errors(t *testing.T) {
	repo := &fakeRepo{err: errors.New("db down")}
	svc := budget.NewService(repo)

	_, err := svc.Accounts(context.Background(), uuid.New())
	assert.Error(t, err)

	assert.Error(t, svc.SaveSpending(context.Background(), &budget.Spending{}))

	_, err = svc.LoadSpending(context.Background(), uuid.New())
	assert.ErrorIs(t, err, budget.ErrNoAnalysis)
}
