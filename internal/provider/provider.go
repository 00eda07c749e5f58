// Package provider describes the external transaction source the reconciler pulls from.
package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a record as reported by the provider. Amount is positive for outflows.
type Transaction struct {
	ID               string
	AccountID        string
	Amount           decimal.Decimal
	Currency         string
	Date             time.Time
	Name             string
	MerchantName     string
	Pending          bool
	PrimaryCategory  string
	DetailedCategory string
}

// SyncPage is one page of a cursor-based sync.
type SyncPage struct {
	Added      []Transaction
	Modified   []Transaction
	Removed    []string
	NextCursor string
	HasMore    bool
}

type Direction string

const (
	Inflow  Direction = "inflow"
	Outflow Direction = "outflow"
)

// Stream is a recurring pattern the provider detected.
type Stream struct {
	ID               string
	AccountID        string
	Direction        Direction
	Description      string
	MerchantName     string
	PrimaryCategory  string
	DetailedCategory string
	TransactionIDs   []string
	AverageAmount    decimal.Decimal
	Frequency        string
	Active           bool
	LastDate         time.Time
}

// Streams holds both stream directions.
type Streams struct {
	Inflow  []Stream
	Outflow []Stream
}

//go:generate mockgen -source=provider.go -destination=provider_mock.go -package=provider
type Client interface {
	SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncPage, error)
	RecurringStreams(ctx context.Context, accessToken string, accountIDs []string) (*Streams, error)
}
