package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	UpdateDetails(ctx context.Context, tx *Transaction) error
	ListRecurring(ctx context.Context, budgetID uuid.UUID) ([]*Recurring, error)
	ExistingUserTxIDs(ctx context.Context, budgetID uuid.UUID, candidates []string) ([]string, error)

	BeginImport(ctx context.Context, budgetID uuid.UUID) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Transaction, error)
	UpsertTransactions(ctx context.Context, txs []*Transaction) error
	UpsertRecurring(ctx context.Context, recs []*Recurring) error
	UpdateCursor(ctx context.Context, itemID, cursor string) error
	// MarkRemoved tombstones pending transactions the provider dropped. Marked
	// rows are no longer returned by reads.
	MarkRemoved(ctx context.Context, ids []uuid.UUID) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateParams describes a manually entered or CSV-imported transaction.
type CreateParams struct {
	BudgetID   uuid.UUID
	AccountID  string
	Date       time.Time
	Amount     decimal.Decimal
	Currency   string
	Merchant   string
	Name       string
	CategoryID *uuid.UUID
	Note       string
}

type ListFilter struct {
	BudgetID  uuid.UUID
	AccountID *string
	StartDate *time.Time
	EndDate   *time.Time
}

// Details are the fields a user may edit on a posted transaction.
type Details struct {
	CategoryID *uuid.UUID
	Merchant   *string
	Note       *string
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// UpdateDetails applies user edits. Amount, date and status are never touched.
func (s *Service) UpdateDetails(ctx context.Context, id uuid.UUID, d Details) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if d.CategoryID != nil {
		tx.CategoryID = d.CategoryID
	}

	if d.Merchant != nil {
		tx.Merchant = *d.Merchant
	}

	if d.Note != nil {
		tx.Note = *d.Note
	}

	if err := s.repo.UpdateDetails(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

type ImportResult struct {
	Imported  []*Transaction
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

// ImportManual stores manual transactions unless some of them look like
// duplicates of stored ones, in which case nothing is written and the caller
// decides via CreateBatch.
func (s *Service) ImportManual(ctx context.Context, budgetID uuid.UUID, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	itx, err := s.repo.BeginImport(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d.AccountID, d.Date, d.Amount, d.Merchant)] = d
	}

	var (
		newParams []CreateParams
		conflicts []Conflict
	)

	for _, p := range params {
		existing, found := lookup[keyOf(p.AccountID, p.Date, p.Amount, p.Merchant)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	txs, err := s.toTransactions(ctx, budgetID, newParams)
	if err != nil {
		return nil, err
	}

	if err := itx.UpsertTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: txs}, nil
}

// CreateBatch stores manual transactions without duplicate detection.
func (s *Service) CreateBatch(ctx context.Context, budgetID uuid.UUID, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	itx, err := s.repo.BeginImport(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	txs, err := s.toTransactions(ctx, budgetID, params)
	if err != nil {
		return nil, err
	}

	if err := itx.UpsertTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return txs, nil
}

type dupKey struct {
	AccountID string
	Date      string
	Amount    string
	Merchant  string
}

func keyOf(accountID string, date time.Time, amount decimal.Decimal, merchant string) dupKey {
	return dupKey{
		AccountID: accountID,
		Date:      date.Format(time.DateOnly),
		Amount:    amount.StringFixed(2),
		Merchant:  merchant,
	}
}

func (s *Service) toTransactions(ctx context.Context, budgetID uuid.UUID, params []CreateParams) ([]*Transaction, error) {
	txs := make([]*Transaction, len(params))
	ids := NewIDGenerator(s.repo)

	for i, p := range params {
		userTxID, err := ids.Generate(ctx, budgetID, p.Date, p.AccountID)
		if err != nil {
			return nil, err
		}

		txs[i] = &Transaction{
			ID:         uuid.New(),
			BudgetID:   budgetID,
			UserTxID:   userTxID,
			AccountID:  p.AccountID,
			Source:     SourceManual,
			Date:       p.Date,
			Amount:     p.Amount,
			Status:     StatusPosted,
			Currency:   p.Currency,
			Merchant:   p.Merchant,
			Name:       p.Name,
			CategoryID: p.CategoryID,
			Note:       p.Note,
		}
	}

	return txs, nil
}
