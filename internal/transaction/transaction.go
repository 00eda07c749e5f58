package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/category"
)

var ErrNotFound = errors.New("transaction not found")

// Status represents the settlement state of a transaction.
type Status string

const (
	StatusPending Status = "pending"
	StatusPosted  Status = "posted"
)

// Source tells where a transaction came from.
type Source string

const (
	SourceProvider Source = "provider"
	SourceManual   Source = "manual"
)

// Transaction is a single financial movement. Amount is positive for outflows;
// income is stored negative.
type Transaction struct {
	ID               uuid.UUID
	BudgetID         uuid.UUID
	UserTxID         string
	ProviderTxID     string
	AccountID        string
	Source           Source
	Date             time.Time
	Amount           decimal.Decimal
	Status           Status
	Currency         string
	Merchant         string
	Name             string
	ProviderPrimary  string
	ProviderDetailed string
	CategoryID       *uuid.UUID
	Note             string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// Key is the reconciliation matching key: the provider id when known, else the user-facing id.
func (t *Transaction) Key() string {
	if t.ProviderTxID != "" {
		return "p:" + t.ProviderTxID
	}

	return "u:" + t.UserTxID
}

// ClassifyInput returns what the category classifier needs from t.
func (t *Transaction) ClassifyInput() category.Input {
	return category.Input{
		CategoryID:       t.CategoryID,
		ProviderDetailed: t.ProviderDetailed,
		ProviderPrimary:  t.ProviderPrimary,
	}
}

// Direction of a recurring stream.
type Direction string

const (
	DirectionInflow  Direction = "inflow"
	DirectionOutflow Direction = "outflow"
)

// Recurring is a repeating pattern over one or more transactions. InstanceKeys
// hold the Key of each underlying transaction.
type Recurring struct {
	ID               uuid.UUID
	BudgetID         uuid.UUID
	StreamID         string
	AccountID        string
	Source           Source
	Direction        Direction
	Description      string
	Merchant         string
	ProviderPrimary  string
	ProviderDetailed string
	InstanceKeys     []string
	AverageAmount    decimal.Decimal
	Frequency        string
	Active           bool
	CategoryID       *uuid.UUID
	LastDate         time.Time
	UpdatedAt        time.Time
}

// ClassifyInput is used when no instance carries a resolved category.
func (r *Recurring) ClassifyInput() category.Input {
	return category.Input{
		CategoryID:       r.CategoryID,
		ProviderDetailed: r.ProviderDetailed,
		ProviderPrimary:  r.ProviderPrimary,
	}
}

// InheritCategory resolves the category of r from its instances. resolved maps
// transaction keys to their classified category. Precedence: a category all
// classified instances agree on, then the category stored on r, then none.
func (r *Recurring) InheritCategory(resolved map[string]uuid.UUID) *uuid.UUID {
	var found *uuid.UUID

	agree := true

	for _, key := range r.InstanceKeys {
		id, ok := resolved[key]
		if !ok {
			continue
		}

		if found == nil {
			found = &id
			continue
		}

		if *found != id {
			agree = false
			break
		}
	}

	if found != nil && agree {
		return found
	}

	return r.CategoryID
}
