// Package plaid adapts the Plaid SDK to provider.Client for transaction sync and recurring streams.
package plaid

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/plaid/plaid-go/v29/plaid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/provider"
)

type Client struct {
	api      *sdk.APIClient
	pageSize int32
}

type Options struct {
	// BaseURL is the Plaid environment, e.g. https://sandbox.plaid.com.
	BaseURL  string
	ClientID string
	Secret   string
	PageSize int
	Timeout  time.Duration
}

func New(opts Options) *Client {
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 500
	}

	cfg := sdk.NewConfiguration()
	cfg.AddDefaultHeader("PLAID-CLIENT-ID", opts.ClientID)
	cfg.AddDefaultHeader("PLAID-SECRET", opts.Secret)
	cfg.UseEnvironment(sdk.Environment(strings.TrimRight(opts.BaseURL, "/")))
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}

	return &Client{
		api:      sdk.NewAPIClient(cfg),
		pageSize: int32(pageSize),
	}
}

// APIError is the error body Plaid returns with non-2xx responses.
type APIError struct {
	Status       int
	ErrorType    string
	ErrorCode    string
	ErrorMessage string
	RequestID    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid %d %s/%s: %s (request %s)", e.Status, e.ErrorType, e.ErrorCode, e.ErrorMessage, e.RequestID)
}

func (c *Client) SyncTransactions(ctx context.Context, accessToken, cursor string) (*provider.SyncPage, error) {
	req := sdk.TransactionsSyncRequest{AccessToken: accessToken}
	if cursor != "" {
		req.SetCursor(cursor)
	}

	req.SetCount(c.pageSize)

	resp, httpResp, err := c.api.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(req).Execute()
	if err != nil {
		return nil, toError("/transactions/sync", httpResp, err)
	}

	page := &provider.SyncPage{
		NextCursor: resp.GetNextCursor(),
		HasMore:    resp.GetHasMore(),
	}

	if page.Added, err = toTransactions(resp.GetAdded()); err != nil {
		return nil, err
	}

	if page.Modified, err = toTransactions(resp.GetModified()); err != nil {
		return nil, err
	}

	for _, r := range resp.GetRemoved() {
		page.Removed = append(page.Removed, r.GetTransactionId())
	}

	return page, nil
}

func (c *Client) RecurringStreams(ctx context.Context, accessToken string, accountIDs []string) (*provider.Streams, error) {
	req := sdk.TransactionsRecurringGetRequest{AccessToken: accessToken}
	if len(accountIDs) > 0 {
		req.SetAccountIds(accountIDs)
	}

	resp, httpResp, err := c.api.PlaidApi.TransactionsRecurringGet(ctx).TransactionsRecurringGetRequest(req).Execute()
	if err != nil {
		return nil, toError("/transactions/recurring/get", httpResp, err)
	}

	inflow, err := toStreams(resp.GetInflowStreams(), provider.Inflow)
	if err != nil {
		return nil, err
	}

	outflow, err := toStreams(resp.GetOutflowStreams(), provider.Outflow)
	if err != nil {
		return nil, err
	}

	return &provider.Streams{Inflow: inflow, Outflow: outflow}, nil
}

// toError turns an SDK failure into *APIError when Plaid answered with an error body.
func toError(path string, httpResp *http.Response, err error) error {
	if httpResp == nil || httpResp.StatusCode < http.StatusBadRequest {
		return fmt.Errorf("executing %s: %w", path, err)
	}

	apiErr := &APIError{Status: httpResp.StatusCode}

	plaidErr, perr := sdk.ToPlaidError(err)
	if perr != nil {
		apiErr.ErrorMessage = "unreadable error body"
		return apiErr
	}

	apiErr.ErrorType = string(plaidErr.GetErrorType())
	apiErr.ErrorCode = plaidErr.GetErrorCode()
	apiErr.ErrorMessage = plaidErr.GetErrorMessage()
	apiErr.RequestID = plaidErr.GetRequestId()

	return apiErr
}

type categorized interface {
	GetPersonalFinanceCategory() sdk.PersonalFinanceCategory
}

func categories(v categorized) (primary, detailed string) {
	pfc := v.GetPersonalFinanceCategory()
	return pfc.GetPrimary(), pfc.GetDetailed()
}

func toTransactions(in []sdk.Transaction) ([]provider.Transaction, error) {
	txs := make([]provider.Transaction, 0, len(in))

	for _, t := range in {
		date, err := time.Parse(time.DateOnly, t.GetDate())
		if err != nil {
			return nil, fmt.Errorf("transaction %s: parsing date %q: %w", t.GetTransactionId(), t.GetDate(), err)
		}

		tx := provider.Transaction{
			ID:           t.GetTransactionId(),
			AccountID:    t.GetAccountId(),
			Amount:       decimal.NewFromFloat(t.GetAmount()),
			Currency:     t.GetIsoCurrencyCode(),
			Date:         date,
			Name:         t.GetName(),
			MerchantName: t.GetMerchantName(),
			Pending:      t.GetPending(),
		}

		tx.PrimaryCategory, tx.DetailedCategory = categories(&t)

		txs = append(txs, tx)
	}

	return txs, nil
}

func toStreams(in []sdk.TransactionStream, dir provider.Direction) ([]provider.Stream, error) {
	streams := make([]provider.Stream, 0, len(in))

	for _, st := range in {
		avg := st.GetAverageAmount()

		s := provider.Stream{
			ID:             st.GetStreamId(),
			AccountID:      st.GetAccountId(),
			Direction:      dir,
			Description:    st.GetDescription(),
			MerchantName:   st.GetMerchantName(),
			TransactionIDs: st.GetTransactionIds(),
			AverageAmount:  decimal.NewFromFloat(avg.GetAmount()),
			Frequency:      string(st.GetFrequency()),
			Active:         st.GetIsActive(),
		}

		s.PrimaryCategory, s.DetailedCategory = categories(&st)

		if last := st.GetLastDate(); last != "" {
			parsed, err := time.Parse(time.DateOnly, last)
			if err != nil {
				return nil, fmt.Errorf("stream %s: parsing last date %q: %w", s.ID, last, err)
			}

			s.LastDate = parsed
		}

		streams = append(streams, s)
	}

	return streams, nil
}
