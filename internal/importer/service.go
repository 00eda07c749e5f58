package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/apperror"
	"github.com/MrJamesThe3rd/finplan/internal/logger"
	"github.com/MrJamesThe3rd/finplan/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=transactions_mock.go -package=importer
type Transactions interface {
	ImportManual(ctx context.Context, budgetID uuid.UUID, params []transaction.CreateParams) (*transaction.ImportResult, error)
}

// Request selects where imported rows go and how the file is read. A custom
// Layout wins over Preset.
type Request struct {
	BudgetID  uuid.UUID
	AccountID string
	Currency  string
	Preset    string
	Layout    *Layout
}

type Service struct {
	transactions Transactions
}

func NewService(transactions Transactions) *Service {
	return &Service{transactions: transactions}
}

// Layouts resolves the layouts a request is parsed against.
func (req Request) Layouts() ([]Layout, error) {
	if req.Layout != nil {
		if err := req.Layout.Validate(); err != nil {
			return nil, apperror.Wrap(apperror.KindValidation, "custom layout", err)
		}

		return []Layout{*req.Layout}, nil
	}

	layouts, ok := Presets[req.Preset]
	if !ok {
		return nil, apperror.Validation("unknown preset %q", req.Preset)
	}

	return layouts, nil
}

// Parse reads the file into transaction params for the request's account.
func (s *Service) Parse(req Request, r io.Reader) ([]transaction.CreateParams, error) {
	if req.AccountID == "" {
		return nil, apperror.Validation("account id is required")
	}

	layouts, err := req.Layouts()
	if err != nil {
		return nil, err
	}

	params, err := Parse(r, layouts...)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "parse csv", err)
	}

	for i := range params {
		params[i].BudgetID = req.BudgetID
		params[i].AccountID = req.AccountID
		params[i].Currency = req.Currency
	}

	return params, nil
}

// Import parses the file and stores its rows as manual transactions. Likely
// duplicates are returned as conflicts and nothing is stored.
func (s *Service) Import(ctx context.Context, req Request, r io.Reader) (*transaction.ImportResult, error) {
	params, err := s.Parse(req, r)
	if err != nil {
		return nil, err
	}

	res, err := s.transactions.ImportManual(ctx, req.BudgetID, params)
	if err != nil {
		return nil, fmt.Errorf("import transactions: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("budget_id", req.BudgetID.String()).
		Str("account_id", req.AccountID).
		Int("parsed", len(params)).
		Int("imported", len(res.Imported)).
		Int("conflicts", len(res.Conflicts)).
		Msg("csv import finished")

	return res, nil
}
