package plaid_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finplan/internal/provider"
	"github.com/MrJamesThe3rd/finplan/internal/provider/plaid"
)

func newClient(t *testing.T, handler http.HandlerFunc) *plaid.Client {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	return plaid.New(plaid.Options{
		BaseURL:  ts.URL,
		ClientID: "client",
		Secret:   "secret",
		PageSize: 100,
		Timeout:  5 * time.Second,
	})
}

func TestClient_SyncTransactions(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions/sync", r.URL.Path)
		assert.Equal(t, "client", r.Header.Get("PLAID-CLIENT-ID"))
		assert.Equal(t, "secret", r.Header.Get("PLAID-SECRET"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "access-1", body["access_token"])
		assert.Equal(t, "cursor-1", body["cursor"])
		assert.EqualValues(t, 100, body["count"])

		w.Write([]byte(`{
			"added": [{
				"transaction_id": "tx-abcdef123456",
				"account_id": "acc-1",
				"amount": 12.5,
				"iso_currency_code": "USD",
				"date": "2026-09-30",
				"name": "STARBUCKS 123",
				"merchant_name": "Starbucks",
				"pending": false,
				"personal_finance_category": {"primary": "FOOD_AND_DRINK", "detailed": "FOOD_AND_DRINK_COFFEE"}
			}],
			"modified": [],
			"removed": [{"transaction_id": "tx-gone"}],
			"next_cursor": "cursor-2",
			"has_more": true,
			"request_id": "req-sync"
		}`))
	})

	page, err := c.SyncTransactions(context.Background(), "access-1", "cursor-1")
	require.NoError(t, err)

	require.Len(t, page.Added, 1)
	tx := page.Added[0]
	assert.Equal(t, "tx-abcdef123456", tx.ID)
	assert.Equal(t, "12.5", tx.Amount.String())
	assert.Equal(t, time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, "FOOD_AND_DRINK_COFFEE", tx.DetailedCategory)
	assert.Equal(t, []string{"tx-gone"}, page.Removed)
	assert.Equal(t, "cursor-2", page.NextCursor)
	assert.True(t, page.HasMore)
}

func TestClient_SyncTransactions_APIError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_type":"TRANSACTIONS_ERROR","error_code":"TRANSACTIONS_SYNC_MUTATION_DURING_PAGINATION","error_message":"retry","request_id":"req-1"}`))
	})

	_, err := c.SyncTransactions(context.Background(), "access-1", "")
	require.Error(t, err)

	var apiErr *plaid.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "TRANSACTIONS_SYNC_MUTATION_DURING_PAGINATION", apiErr.ErrorCode)
	assert.Equal(t, "req-1", apiErr.RequestID)
}

func TestClient_RecurringStreams(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions/recurring/get", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{"acc-1"}, body["account_ids"])

		w.Write([]byte(`{
			"inflow_streams": [{
				"stream_id": "s-in", "account_id": "acc-1", "description": "PAYROLL",
				"transaction_ids": ["tx-1", "tx-2"], "average_amount": {"amount": -2500},
				"frequency": "SEMI_MONTHLY", "is_active": true, "last_date": "2026-09-30"
			}],
			"outflow_streams": [{
				"stream_id": "s-out", "account_id": "acc-1", "description": "NETFLIX",
				"merchant_name": "Netflix",
				"personal_finance_category": {"primary": "ENTERTAINMENT", "detailed": "ENTERTAINMENT_TV_AND_MOVIES"},
				"transaction_ids": ["tx-3"], "average_amount": {"amount": 15.49},
				"frequency": "MONTHLY", "is_active": true
			}]
		}`))
	})

	streams, err := c.RecurringStreams(context.Background(), "access-1", []string{"acc-1"})
	require.NoError(t, err)

	require.Len(t, streams.Inflow, 1)
	assert.Equal(t, provider.Inflow, streams.Inflow[0].Direction)
	assert.Equal(t, "-2500", streams.Inflow[0].AverageAmount.String())
	assert.Equal(t, []string{"tx-1", "tx-2"}, streams.Inflow[0].TransactionIDs)

	require.Len(t, streams.Outflow, 1)
	assert.Equal(t, provider.Outflow, streams.Outflow[0].Direction)
	assert.Equal(t, "ENTERTAINMENT_TV_AND_MOVIES", streams.Outflow[0].DetailedCategory)
	assert.True(t, streams.Outflow[0].LastDate.IsZero())
}

func TestClient_SyncTransactions_FirstPageOmitsCursor(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "cursor")

		w.Write([]byte(`{"added": [], "modified": [], "removed": [], "next_cursor": "cursor-1", "has_more": false}`))
	})

	page, err := c.SyncTransactions(context.Background(), "access-1", "")
	require.NoError(t, err)
	assert.Empty(t, page.Added)
	assert.Equal(t, "cursor-1", page.NextCursor)
}
