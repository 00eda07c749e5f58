package export_test

import (
	"archive/zip"
	"bytes"
	"context"
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

	"github.com/MrJamesThe3rd/finplan/internal/budget"
	"github.com/MrJamesThe3rd/finplan/internal/export"
	"github.com/MrJamesThe3rd/finplan/internal/goal"
	handler "github.com/MrJamesThe3rd/finplan/internal/http/export"
	"github.com/MrJamesThe3rd/finplan/internal/spending"
)

type fakeSpending struct {
	sp *budget.Spending
}

func (f *fakeSpending) LoadSpending(context.Context, uuid.UUID) (*budget.Spending, error) {
	if f.sp == nil {
		return nil, budget.ErrNoAnalysis
	}

	return f.sp, nil
}

type fakeGoals struct{}

func (fakeGoals) List(context.Context, uuid.UUID) ([]*goal.Goal, error) { return nil, nil }

func router(sp *budget.Spending) http.Handler {
	svc := export.NewService(&fakeSpending{sp: sp}, fakeGoals{})

	r := chi.NewRouter()
	r.Route("/budgets/{budgetID}/export", handler.NewHandler(svc).Routes)

	return r
}

func stored() *budget.Spending {
	return &budget.Spending{
		AnalyzedAt: time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC),
		Tracking: spending.Tracking{Months: []spending.MonthTotals{{
			Month: "2026-10",
			Groups: []spending.GroupTotal{{
				Name:       "Fun",
				Total:      decimal.NewFromInt(300),
				Categories: []spending.CategoryTotal{{Name: "Dining", Discretionary: true, Amount: decimal.NewFromInt(300)}},
			}},
		}}},
	}
}

func TestHandler_CSV(t *testing.T) {
	type testCase struct {
		name       string
		spending   *budget.Spending
		file       string
		wantStatus int
		wantBody   string
	}

	tests := []testCase{
		{
			name:       "Tracking",
			spending:   stored(),
			file:       "tracking.csv",
			wantStatus: http.StatusOK,
			wantBody:   "month,group,category,discretionary,amount\n2026-10,Fun,Dining,true,300.00\n",
		},
		{
			name:       "UnknownFile",
			spending:   stored(),
			file:       "secrets.csv",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "NoAnalysis",
			file:       "tracking.csv",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/budgets/"+uuid.NewString()+"/export/"+tt.file, nil)
			rec := httptest.NewRecorder()
			router(tt.spending).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != "" {
				assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHandler_Download(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/budgets/"+uuid.NewString()+"/export", nil)
	rec := httptest.NewRecorder()
	router(stored()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(rec.Header().Get("Content-Disposition"), "analysis_20261016.zip"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}

	assert.Contains(t, names, "tracking.csv")
	assert.Contains(t, names, "summary.txt")
}
