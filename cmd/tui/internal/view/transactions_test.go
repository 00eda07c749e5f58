package view

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/finplan/internal/transaction"
)

func TestTxFields_Details(t *testing.T) {
	current := uuid.New()
	other := uuid.New()

	type testCase struct {
		name         string
		tx           *transaction.Transaction
		fields       txFields
		wantMerchant *string
		wantNote     *string
		wantCategory *uuid.UUID
	}

	tests := []testCase{
		{
			name:   "Unchanged",
			tx:     &transaction.Transaction{Merchant: "Lidl", Note: "weekly", CategoryID: &current},
			fields: txFields{merchant: "Lidl", note: "weekly", categoryID: current},
		},
		{
			name:         "MerchantTrimmedAndChanged",
			tx:           &transaction.Transaction{Merchant: "LIDL 123"},
			fields:       txFields{merchant: " Lidl "},
			wantMerchant: new("Lidl"),
			wantNote:     nil,
		},
		{
			name:         "CategoryAssigned",
			tx:           &transaction.Transaction{Merchant: "Lidl", CategoryID: &current},
			fields:       txFields{merchant: "Lidl", categoryID: other},
			wantCategory: &other,
		},
		{
			name:     "NoteCleared",
			tx:       &transaction.Transaction{Merchant: "Lidl", Note: "old"},
			fields:   txFields{merchant: "Lidl"},
			wantNote: new(""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.fields.details(tt.tx)

			assert.Equal(t, tt.wantMerchant, d.Merchant)
			assert.Equal(t, tt.wantNote, d.Note)
			assert.Equal(t, tt.wantCategory, d.CategoryID)
		})
	}
}
