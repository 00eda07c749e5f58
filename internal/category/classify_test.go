package category_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/finplan/internal/category"
)

var (
	groceriesID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	diningID    = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	salaryID    = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	foodGroupID = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	incomeID    = uuid.MustParse("00000000-0000-0000-0000-0000000000a2")
)

func testTaxonomy() *category.Taxonomy {
	return category.NewTaxonomy([]category.Group{
		{
			ID:   foodGroupID,
			Name: "Food",
			Categories: []category.Category{
				{ID: groceriesID, GroupID: foodGroupID, Name: "Groceries"},
				{ID: diningID, GroupID: foodGroupID, Name: "Dining Out", Discretionary: true},
			},
		},
		{
			ID:         incomeID,
			Name:       "Income",
			Categories: []category.Category{{ID: salaryID, GroupID: incomeID, Name: "Salary"}},
		},
	})
}

func TestClassify(t *testing.T) {
	mapping := category.Mapping{
		Detailed: map[string]string{
			"FOOD_AND_DRINK_GROCERIES":  "groceries",
			"FOOD_AND_DRINK_RESTAURANT": "Dining Out",
			"FOOD_AND_DRINK_UNKNOWN":    "Not A Category",
		},
		Primary: map[string]string{"INCOME": "Salary"},
	}

	type testCase struct {
		name   string
		in     category.Input
		wantOK bool
		wantID uuid.UUID
	}

	tests := []testCase{
		{
			name:   "UserCategoryWins",
			in:     category.Input{CategoryID: &diningID, ProviderDetailed: "FOOD_AND_DRINK_GROCERIES"},
			wantOK: true,
			wantID: diningID,
		},
		{
			name:   "DetailedMappingCaseInsensitive",
			in:     category.Input{ProviderDetailed: "FOOD_AND_DRINK_GROCERIES"},
			wantOK: true,
			wantID: groceriesID,
		},
		{
			name:   "PrimaryFallback",
			in:     category.Input{ProviderDetailed: "INCOME_WAGES", ProviderPrimary: "INCOME"},
			wantOK: true,
			wantID: salaryID,
		},
		{
			name: "MappedNameMissingFromTaxonomy",
			in:   category.Input{ProviderDetailed: "FOOD_AND_DRINK_UNKNOWN"},
		},
		{
			name: "Unmapped",
			in:   category.Input{ProviderDetailed: "TRAVEL_FLIGHTS"},
		},
		{
			name: "UnknownUserCategory",
			in:   category.Input{CategoryID: new(uuid.New())},
		},
	}

	taxonomy := testTaxonomy()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := category.Classify(tt.in, taxonomy, mapping)

			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.Equal(t, tt.wantID, ref.CategoryID)
			}
		})
	}
}

func TestClassify_GroupBackReference(t *testing.T) {
	ref, ok := category.Classify(category.Input{CategoryID: &diningID}, testTaxonomy(), category.Mapping{})

	assert.True(t, ok)
	assert.Equal(t, foodGroupID, ref.GroupID)
	assert.Equal(t, "Food", ref.GroupName)
	assert.True(t, ref.Discretionary)
	assert.False(t, ref.IsIncome())
}

func TestMapping_Empty(t *testing.T) {
	assert.True(t, category.Mapping{}.Empty())
	assert.False(t, category.Mapping{Primary: map[string]string{}}.Empty())
}
