package goal_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finplan/internal/goal"
	handler "github.com/MrJamesThe3rd/finplan/internal/http/goal"
)

type fakeRepo struct {
	goals   []*goal.Goal
	deleted []uuid.UUID
}

func (f *fakeRepo) CreateGoal(_ context.Context, g *goal.Goal) error {
	g.ID = uuid.New()
	f.goals = append(f.goals, g)

	return nil
}

func (f *fakeRepo) ListGoals(context.Context, uuid.UUID) ([]*goal.Goal, error) {
	return f.goals, nil
}

func (f *fakeRepo) DeleteGoal(_ context.Context, _, id uuid.UUID) error {
	for _, g := range f.goals {
		if g.ID == id {
			f.deleted = append(f.deleted, id)
			return nil
		}
	}

	return goal.ErrNotFound
}

func (f *fakeRepo) SavePlan(context.Context, *goal.Goal) error { return nil }

func router(repo *fakeRepo) http.Handler {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	svc := goal.NewService(repo).WithClock(func() time.Time { return now })

	r := chi.NewRouter()
	r.Route("/budgets/{budgetID}/goals", handler.NewHandler(svc).Routes)

	return r
}

func TestHandler_Create(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		wantStatus int
		wantStored int
	}

	tests := []testCase{
		{
			name:       "Savings",
			body:       `{"name":"Trip","type":"savings","amount":"1200","target_date":"2027-06-01","strategy":"relaxed"}`,
			wantStatus: http.StatusCreated,
			wantStored: 1,
		},
		{
			name:       "Debt",
			body:       `{"name":"Car","type":"debt","amount":"8000","target_date":"2028-01-01","debt":{"lender":"Bank","interest_rate":"4.5","minimum_payment":"150"}}`,
			wantStatus: http.StatusCreated,
			wantStored: 1,
		},
		{
			name:       "TargetDateToday",
			body:       `{"name":"Trip","type":"savings","amount":"1200","target_date":"2026-10-16"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "DebtFieldsOnSavings",
			body:       `{"name":"Trip","type":"savings","amount":"1200","target_date":"2027-06-01","debt":{"lender":"Bank"}}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnknownType",
			body:       `{"name":"Trip","type":"crypto","amount":"1200","target_date":"2027-06-01"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MalformedDate",
			body:       `{"name":"Trip","type":"savings","amount":"1200","target_date":"01/06/2027"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnknownStrategy",
			body:       `{"name":"Trip","type":"savings","amount":"1200","target_date":"2027-06-01","strategy":"yolo"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}

			req := httptest.NewRequest(http.MethodPost, "/budgets/"+uuid.NewString()+"/goals", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router(repo).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Len(t, repo.goals, tt.wantStored)
		})
	}
}

func TestHandler_CreateResponse(t *testing.T) {
	repo := &fakeRepo{}

	body := `{"name":"Trip","type":"savings","amount":"1200","target_date":"2027-06-01"}`
	req := httptest.NewRequest(http.MethodPost, "/budgets/"+uuid.NewString()+"/goals", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router(repo).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "Trip", resp["name"])
	assert.Equal(t, "2027-06-01", resp["target_date"])
	assert.Equal(t, "balanced", resp["strategy"])
	assert.Equal(t, "1200", resp["amount"])
}

func TestHandler_Delete(t *testing.T) {
	existing := &goal.Goal{ID: uuid.New(), Name: "Trip"}

	type testCase struct {
		name       string
		goalID     string
		wantStatus int
	}

	tests := []testCase{
		{name: "Existing", goalID: existing.ID.String(), wantStatus: http.StatusNoContent},
		{name: "Missing", goalID: uuid.NewString(), wantStatus: http.StatusNotFound},
		{name: "InvalidID", goalID: "nope", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{goals: []*goal.Goal{existing}}

			req := httptest.NewRequest(http.MethodDelete, "/budgets/"+uuid.NewString()+"/goals/"+tt.goalID, nil)
			rec := httptest.NewRecorder()
			router(repo).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
