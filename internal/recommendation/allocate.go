package recommendation

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/money"
)

// Allocate splits total over n months. The first n-1 months get total/n rounded
// up to the cent; the last month takes what is left so the sum is exactly total.
func Allocate(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}

	count := decimal.NewFromInt(int64(n))
	base := money.CeilCents(total.Div(count))

	out := make([]decimal.Decimal, n)
	for i := range n - 1 {
		out[i] = base
	}

	out[n-1] = money.Round(total.Sub(base.Mul(count.Sub(decimal.NewFromInt(1)))))

	return out
}
