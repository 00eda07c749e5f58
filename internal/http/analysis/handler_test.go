package analysis_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finplan/internal/analysis"
	"github.com/MrJamesThe3rd/finplan/internal/apperror"
	"github.com/MrJamesThe3rd/finplan/internal/budget"
	handler "github.com/MrJamesThe3rd/finplan/internal/http/analysis"
	"github.com/MrJamesThe3rd/finplan/internal/onboarding"
	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
)

type fakeRunner struct {
	report *analysis.Report
	err    error
}

func (f *fakeRunner) Run(_ context.Context, budgetID uuid.UUID) (*analysis.Report, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.report.BudgetID = budgetID

	return f.report, nil
}

type fakeSpending struct {
	sp *budget.Spending
}

func (f *fakeSpending) LoadSpending(context.Context, uuid.UUID) (*budget.Spending, error) {
	if f.sp == nil {
		return nil, budget.ErrNoAnalysis
	}

	return f.sp, nil
}

func router(h *handler.Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/budgets/{budgetID}/analysis", h.Routes)

	return r
}

func plans() recommendation.Result {
	return recommendation.Result{Plans: []recommendation.Plan{
		{Strategy: recommendation.Balanced, Income: decimal.RequireFromString("4000")},
		{Strategy: recommendation.Relaxed, Income: decimal.RequireFromString("4000")},
	}}
}

func TestHandler_Run(t *testing.T) {
	budgetID := uuid.New()

	type testCase struct {
		name       string
		runner     *fakeRunner
		path       string
		wantStatus int
	}

	tests := []testCase{
		{
			name:       "Success",
			runner:     &fakeRunner{report: &analysis.Report{Linked: 4, Uncategorized: 1, Recommendations: plans()}},
			path:       "/budgets/" + budgetID.String() + "/analysis",
			wantStatus: http.StatusOK,
		},
		{
			name:       "AlreadyRunning",
			runner:     &fakeRunner{err: apperror.Wrap(apperror.KindValidation, "begin analysis", onboarding.ErrConcurrentRun)},
			path:       "/budgets/" + budgetID.String() + "/analysis",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "NoAccounts",
			runner:     &fakeRunner{err: apperror.Validation("budget has no linked accounts")},
			path:       "/budgets/" + budgetID.String() + "/analysis",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "ProviderDown",
			runner:     &fakeRunner{err: apperror.Wrap(apperror.KindUpstream, "reconcile transactions", assert.AnError)},
			path:       "/budgets/" + budgetID.String() + "/analysis",
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "InvalidBudgetID",
			runner:     &fakeRunner{},
			path:       "/budgets/nope/analysis",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router(handler.NewHandler(tt.runner, &fakeSpending{})).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	t.Run("Body", func(t *testing.T) {
		runner := &fakeRunner{report: &analysis.Report{Linked: 4, Uncategorized: 1, Recommendations: plans()}}

		rec := httptest.NewRecorder()
		router(handler.NewHandler(runner, &fakeSpending{})).
			ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/budgets/"+budgetID.String()+"/analysis", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			BudgetID        uuid.UUID              `json:"budget_id"`
			Linked          int                    `json:"linked"`
			Uncategorized   int                    `json:"uncategorized"`
			Skipped         []analysis.SkippedGoal `json:"skipped_goals"`
			Recommendations []map[string]any       `json:"recommendations"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

		assert.Equal(t, budgetID, body.BudgetID)
		assert.Equal(t, 4, body.Linked)
		assert.Equal(t, 1, body.Uncategorized)
		assert.NotNil(t, body.Skipped)
		require.Len(t, body.Recommendations, 2)
		assert.Equal(t, "4000", body.Recommendations[0]["income"])
	})
}

func TestHandler_Get(t *testing.T) {
	budgetID := uuid.New()
	stored := &budget.Spending{BudgetID: budgetID, AnalyzedAt: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), Recommendations: plans()}

	type testCase struct {
		name       string
		spending   *budget.Spending
		query      string
		wantStatus int
		wantPlans  int
	}

	tests := []testCase{
		{name: "AllStrategies", spending: stored, wantStatus: http.StatusOK, wantPlans: 2},
		{name: "OneStrategy", spending: stored, query: "?strategy=relaxed", wantStatus: http.StatusOK, wantPlans: 1},
		{name: "UnknownStrategy", spending: stored, query: "?strategy=yolo", wantStatus: http.StatusBadRequest},
		{name: "StrategyNotStored", spending: stored, query: "?strategy=conservative", wantStatus: http.StatusNotFound},
		{name: "NeverAnalyzed", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/budgets/"+budgetID.String()+"/analysis"+tt.query, nil)
			router(handler.NewHandler(&fakeRunner{}, &fakeSpending{sp: tt.spending})).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}

			var body struct {
				Recommendations []json.RawMessage `json:"recommendations"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Len(t, body.Recommendations, tt.wantPlans)
		})
	}
}
