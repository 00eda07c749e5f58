package recommendation_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
)

func amounts(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}

	return out
}

func assertAmounts(t *testing.T, want, got []decimal.Decimal) {
	t.Helper()

	require.Len(t, got, len(want))

	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "index %d: want %s, got %s", i, want[i], got[i])
	}
}

func TestAllocate(t *testing.T) {
	type testCase struct {
		name  string
		total string
		n     int
		want  []decimal.Decimal
	}

	tests := []testCase{
		{name: "ThirdsOfHundred", total: "100.00", n: 3, want: amounts("33.34", "33.34", "33.32")},
		{name: "SingleMonth", total: "10", n: 1, want: amounts("10")},
		{name: "EvenSplit", total: "1", n: 4, want: amounts("0.25", "0.25", "0.25", "0.25")},
		{name: "CentsOnly", total: "0.05", n: 3, want: amounts("0.02", "0.02", "0.01")},
		{name: "ZeroMonths", total: "10", n: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recommendation.Allocate(decimal.RequireFromString(tt.total), tt.n)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}

			assertAmounts(t, tt.want, got)
		})
	}
}

func TestAllocate_SumsExactly(t *testing.T) {
	totals := []string{"0.01", "1", "99.99", "100", "1234.56", "5000", "77777.77"}

	for _, total := range totals {
		for n := 1; n <= 36; n++ {
			t.Run(fmt.Sprintf("%s/%d", total, n), func(t *testing.T) {
				want := decimal.RequireFromString(total)
				got := recommendation.Allocate(want, n)

				sum := decimal.Zero
				for _, a := range got {
					sum = sum.Add(a)
				}

				assert.True(t, want.Equal(sum), "sum %s != %s", sum, want)

				for i := 1; i < n-1; i++ {
					assert.True(t, got[0].Equal(got[i]))
				}
			})
		}
	}
}
