package spending_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finplan/internal/category"
	"github.com/MrJamesThe3rd/finplan/internal/spending"
)

var (
	housingGroup = uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
	funGroup     = uuid.MustParse("00000000-0000-0000-0000-0000000000b2")
	incomeGroup  = uuid.MustParse("00000000-0000-0000-0000-0000000000b3")

	rentID   = uuid.MustParse("00000000-0000-0000-0000-000000000011")
	diningID = uuid.MustParse("00000000-0000-0000-0000-000000000012")
	gamesID  = uuid.MustParse("00000000-0000-0000-0000-000000000013")
	salaryID = uuid.MustParse("00000000-0000-0000-0000-000000000014")
)

func taxonomy() *category.Taxonomy {
	return category.NewTaxonomy([]category.Group{
		{ID: housingGroup, Name: "Housing", Categories: []category.Category{{ID: rentID, Name: "Rent"}}},
		{ID: funGroup, Name: "Fun", Categories: []category.Category{
			{ID: diningID, Name: "Dining", Discretionary: true},
			{ID: gamesID, Name: "Games", Discretionary: true},
		}},
		{ID: incomeGroup, Name: "Income", Categories: []category.Category{{ID: salaryID, Name: "Salary"}}},
	})
}

func entry(tax *category.Taxonomy, id uuid.UUID, date time.Time, amount string) spending.Entry {
	ref, _ := tax.ByID(id)

	return spending.Entry{Date: date, Amount: decimal.RequireFromString(amount), Ref: ref}
}

func day(m time.Month, d int) time.Time {
	return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregate(t *testing.T) {
	tax := taxonomy()

	entries := []spending.Entry{
		entry(tax, rentID, day(2, 1), "1000"),
		entry(tax, diningID, day(2, 10), "45.50"),
		entry(tax, diningID, day(2, 20), "30"),
		entry(tax, salaryID, day(2, 25), "3000"),
		entry(tax, salaryID, day(1, 25), "-2900"),
		entry(tax, rentID, day(1, 1), "1000"),
	}

	got := spending.Aggregate(entries, tax)

	require.Len(t, got.Months, 2)
	assert.Equal(t, "2026-01", got.Months[0].Month)
	assert.Equal(t, "2026-02", got.Months[1].Month)

	feb := got.Months[1]
	require.Len(t, feb.Groups, 3)

	assert.Equal(t, "Fun", feb.Groups[1].Name)
	assert.Equal(t, "75.5", feb.Groups[1].Total.String())
	assert.Equal(t, "75.5", feb.Groups[1].Categories[0].Amount.String())
	assert.True(t, feb.Groups[1].Categories[1].Amount.IsZero())

	// Income always counts negative regardless of the stored sign.
	assert.Equal(t, "-3000", feb.Groups[2].Total.String())
	assert.Equal(t, "-2900", got.Months[0].Groups[2].Total.String())
}

func TestAggregate_Idempotent(t *testing.T) {
	tax := taxonomy()

	entries := []spending.Entry{
		entry(tax, rentID, day(3, 1), "1000"),
		entry(tax, gamesID, day(3, 4), "60"),
		entry(tax, salaryID, day(3, 25), "-3000"),
	}

	first := spending.Aggregate(entries, tax)
	second := spending.Aggregate(entries, tax)
	assert.Equal(t, first, second)

	w1 := spending.TrailingWindow(entries, tax, 30)
	w2 := spending.TrailingWindow(entries, tax, 30)
	assert.Equal(t, w1, w2)
}

func TestTrailingWindow(t *testing.T) {
	tax := taxonomy()

	entries := []spending.Entry{
		entry(tax, rentID, day(1, 1), "999"),
		// Day 31 counting back from March 3 falls outside.
		entry(tax, rentID, day(2, 1), "500"),
		// Day 30 is the first day inside.
		entry(tax, rentID, day(2, 2), "1000"),
		entry(tax, diningID, day(2, 10), "200"),
		entry(tax, gamesID, day(2, 12), "-20"),
		entry(tax, salaryID, day(2, 25), "-3000"),
		entry(tax, diningID, day(3, 3), "100"),
	}

	w := spending.TrailingWindow(entries, tax, 30)

	assert.Equal(t, day(3, 3), w.End)
	assert.Equal(t, day(2, 2), w.Start)
	assert.Equal(t, 29, int(w.End.Sub(w.Start).Hours()/24))
	assert.Equal(t, "3000", w.Income.String())
	assert.Equal(t, "1000", w.NonDiscretionary.String())
	assert.Equal(t, "320", w.Discretionary.String())
	assert.Equal(t, "1320", w.Desired().String())

	require.Len(t, w.Baselines, 3)
	assert.Equal(t, "Rent", w.Baselines[0].Ref.CategoryName)
	assert.Equal(t, "Housing", w.Baselines[0].Ref.GroupName)
	assert.Equal(t, "300", w.Baselines[1].Amount.String())
	assert.Equal(t, "20", w.Baselines[2].Amount.String())
}

func TestTracking_Round(t *testing.T) {
	tax := taxonomy()

	got := spending.Aggregate([]spending.Entry{
		entry(tax, diningID, day(4, 1), "10.005"),
	}, tax)
	got.Round()

	assert.Equal(t, "10.01", got.Months[0].Groups[1].Categories[0].Amount.String())
}
