package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/transaction"
)

type transactionResponse struct {
	ID               uuid.UUID          `json:"id"`
	UserTxID         string             `json:"user_tx_id"`
	AccountID        string             `json:"account_id"`
	Source           transaction.Source `json:"source"`
	Date             string             `json:"date"`
	Amount           decimal.Decimal    `json:"amount"`
	Status           transaction.Status `json:"status"`
	Currency         string             `json:"currency,omitempty"`
	Merchant         string             `json:"merchant"`
	Name             string             `json:"name,omitempty"`
	ProviderCategory string             `json:"provider_category,omitempty"`
	CategoryID       *uuid.UUID         `json:"category_id,omitempty"`
	Note             string             `json:"note,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        *time.Time         `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:               tx.ID,
		UserTxID:         tx.UserTxID,
		AccountID:        tx.AccountID,
		Source:           tx.Source,
		Date:             tx.Date.Format(time.DateOnly),
		Amount:           tx.Amount,
		Status:           tx.Status,
		Currency:         tx.Currency,
		Merchant:         tx.Merchant,
		Name:             tx.Name,
		ProviderCategory: tx.ProviderDetailed,
		CategoryID:       tx.CategoryID,
		Note:             tx.Note,
		CreatedAt:        tx.CreatedAt,
		UpdatedAt:        tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
