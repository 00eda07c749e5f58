package transaction_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	handler "github.com/MrJamesThe3rd/finplan/internal/http/transaction"
	"github.com/MrJamesThe3rd/finplan/internal/transaction"
)

func router(repo transaction.Repository) http.Handler {
	r := chi.NewRouter()
	r.Route("/budgets/{budgetID}/transactions", handler.NewHandler(transaction.NewService(repo)).Routes)

	return r
}

func TestHandler_List(t *testing.T) {
	budgetID := uuid.New()

	type testCase struct {
		name       string
		query      string
		wantFilter transaction.ListFilter
	}

	tests := []testCase{
		{
			name:       "NoFilter",
			wantFilter: transaction.ListFilter{BudgetID: budgetID},
		},
		{
			name:  "AccountAndDates",
			query: "?account_id=acc-1&start_date=2026-09-01&end_date=2026-09-30",
			wantFilter: transaction.ListFilter{
				BudgetID:  budgetID,
				AccountID: new("acc-1"),
				StartDate: new(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
				EndDate:   new(time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)),
			},
		},
		{
			name:       "MalformedDateIgnored",
			query:      "?start_date=09/01/2026",
			wantFilter: transaction.ListFilter{BudgetID: budgetID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := transaction.NewMockRepository(ctrl)
			repo.EXPECT().ListTransactions(gomock.Any(), tt.wantFilter).Return([]*transaction.Transaction{
				{ID: uuid.New(), BudgetID: budgetID, UserTxID: "P20260903000001abc123", Amount: decimal.RequireFromString("-12.40")},
			}, nil)

			req := httptest.NewRequest(http.MethodGet, "/budgets/"+budgetID.String()+"/transactions"+tt.query, nil)
			rec := httptest.NewRecorder()
			router(repo).ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)

			var resp []map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Len(t, resp, 1)
			assert.Equal(t, "P20260903000001abc123", resp[0]["user_tx_id"])
		})
	}
}

func TestHandler_Get(t *testing.T) {
	budgetID := uuid.New()
	id := uuid.New()

	type testCase struct {
		name       string
		path       string
		setupMock  func(m *transaction.MockRepository)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "Found",
			path: "/budgets/" + budgetID.String() + "/transactions/" + id.String(),
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(&transaction.Transaction{ID: id, BudgetID: budgetID}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "OtherBudget",
			path: "/budgets/" + budgetID.String() + "/transactions/" + id.String(),
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(&transaction.Transaction{ID: id, BudgetID: uuid.New()}, nil)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "Missing",
			path: "/budgets/" + budgetID.String() + "/transactions/" + id.String(),
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(nil, transaction.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "InvalidID",
			path:       "/budgets/" + budgetID.String() + "/transactions/abc",
			setupMock:  func(*transaction.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			rec := httptest.NewRecorder()
			router(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_Update(t *testing.T) {
	budgetID := uuid.New()
	id := uuid.New()

	stored := func() *transaction.Transaction {
		return &transaction.Transaction{
			ID:       id,
			BudgetID: budgetID,
			Merchant: "Old",
			Amount:   decimal.RequireFromString("-30.00"),
		}
	}

	type testCase struct {
		name       string
		body       string
		setupMock  func(m *transaction.MockRepository)
		wantStatus int
		check      func(t *testing.T, body []byte)
	}

	tests := []testCase{
		{
			name: "MerchantAndNote",
			body: `{"merchant":"Lidl","note":"groceries"}`,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(stored(), nil).Times(2)
				m.EXPECT().UpdateDetails(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, tx *transaction.Transaction) error {
						assert.Equal(t, "Lidl", tx.Merchant)
						assert.True(t, decimal.RequireFromString("-30").Equal(tx.Amount))
						return nil
					})
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "Lidl", resp["merchant"])
				assert.Equal(t, "groceries", resp["note"])
			},
		},
		{
			name: "EmptyMerchant",
			body: `{"merchant":""}`,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(stored(), nil)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "MalformedBody",
			body: `{"merchant":`,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(stored(), nil)
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			req := httptest.NewRequest(http.MethodPatch,
				"/budgets/"+budgetID.String()+"/transactions/"+id.String(), strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router(repo).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.check != nil {
				tt.check(t, rec.Body.Bytes())
			}
		})
	}
}
