package category_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finplan/internal/category"
	handler "github.com/MrJamesThe3rd/finplan/internal/http/category"
)

type learned struct {
	provider string
	name     string
	detailed bool
}

type fakeRepo struct {
	groups  []category.Group
	learned []learned
}

func (f *fakeRepo) ListGroups(context.Context, uuid.UUID) ([]category.Group, error) {
	return f.groups, nil
}

func (f *fakeRepo) LoadMapping(context.Context) (category.Mapping, error) {
	return category.Mapping{}, nil
}

func (f *fakeRepo) CreateMapping(_ context.Context, providerCategory, categoryName string, detailed bool) error {
	f.learned = append(f.learned, learned{provider: providerCategory, name: categoryName, detailed: detailed})
	return nil
}

func router(repo *fakeRepo) http.Handler {
	r := chi.NewRouter()
	r.Route("/budgets/{budgetID}/categories", handler.NewHandler(category.NewService(repo)).Routes)

	return r
}

func TestHandler_List(t *testing.T) {
	repo := &fakeRepo{groups: []category.Group{
		{ID: uuid.New(), Name: "Income", Categories: []category.Category{{ID: uuid.New(), Name: "Salary"}}},
		{ID: uuid.New(), Name: "Fun", Categories: []category.Category{{ID: uuid.New(), Name: "Dining", Discretionary: true}}},
	}}

	req := httptest.NewRequest(http.MethodGet, "/budgets/"+uuid.NewString()+"/categories", nil)
	rec := httptest.NewRecorder()
	router(repo).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body []struct {
		Name       string `json:"name"`
		Income     bool   `json:"income"`
		Categories []struct {
			Name          string `json:"name"`
			Discretionary bool   `json:"discretionary"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Len(t, body, 2)
	assert.True(t, body[0].Income)
	assert.False(t, body[1].Income)
	assert.Equal(t, "Dining", body[1].Categories[0].Name)
	assert.True(t, body[1].Categories[0].Discretionary)
}

func TestHandler_Learn(t *testing.T) {
	type testCase struct {
		name        string
		body        string
		wantStatus  int
		wantLearned []learned
	}

	tests := []testCase{
		{
			name:        "Detailed",
			body:        `{"provider_category":"FOOD_AND_DRINK_RESTAURANT","category_name":"Dining","detailed":true}`,
			wantStatus:  http.StatusNoContent,
			wantLearned: []learned{{provider: "FOOD_AND_DRINK_RESTAURANT", name: "Dining", detailed: true}},
		},
		{
			name:       "MissingCategoryName",
			body:       `{"provider_category":"FOOD_AND_DRINK"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MalformedBody",
			body:       `{"provider_category":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}

			req := httptest.NewRequest(http.MethodPost, "/budgets/"+uuid.NewString()+"/categories/mappings", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router(repo).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLearned, repo.learned)
		})
	}
}
