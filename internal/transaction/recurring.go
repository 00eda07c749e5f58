package transaction

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// recurringNamespace seeds the deterministic ids of locally detected recurring entries.
var recurringNamespace = uuid.MustParse("6f1c2a8e-4b7d-4f0e-9a51-3c2d8e7b1a90")

type DetectOptions struct {
	ToleranceDays  int
	MinOccurrences int
}

type cadence struct {
	name string
	days int
}

var cadences = []cadence{
	{name: "WEEKLY", days: 7},
	{name: "BIWEEKLY", days: 14},
	{name: "MONTHLY", days: 30},
}

// DetectRecurring finds repeating manual transactions. Transactions sharing a
// category and a normalized merchant form a candidate group; the group is
// recurring when it has enough instances and every gap between consecutive
// instances is within ToleranceDays of one cadence.
func DetectRecurring(budgetID uuid.UUID, txs []*Transaction, opts DetectOptions) []*Recurring {
	minOcc := max(opts.MinOccurrences, 2)

	type groupKey struct {
		category string
		merchant string
	}

	groups := make(map[groupKey][]*Transaction)

	var (
		keys   []groupKey
		newest time.Time
	)

	for _, tx := range txs {
		merchant := normalizeMerchant(tx.Merchant)
		if merchant == "" {
			merchant = normalizeMerchant(tx.Name)
		}

		if merchant == "" {
			continue
		}

		cat := ""
		if tx.CategoryID != nil {
			cat = tx.CategoryID.String()
		}

		k := groupKey{category: cat, merchant: merchant}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}

		groups[k] = append(groups[k], tx)

		if tx.Date.After(newest) {
			newest = tx.Date
		}
	}

	var out []*Recurring

	for _, k := range keys {
		members := groups[k]
		if len(members) < minOcc {
			continue
		}

		sort.SliceStable(members, func(i, j int) bool { return members[i].Date.Before(members[j].Date) })

		c, ok := matchCadence(members, opts.ToleranceDays)
		if !ok {
			continue
		}

		instanceKeys := make([]string, len(members))
		total := decimal.Zero

		for i, m := range members {
			instanceKeys[i] = m.Key()
			total = total.Add(m.Amount)
		}

		last := members[len(members)-1]

		dir := DirectionOutflow
		if total.IsNegative() {
			dir = DirectionInflow
		}

		out = append(out, &Recurring{
			ID:            uuid.NewSHA1(recurringNamespace, []byte(budgetID.String()+"|"+k.category+"|"+k.merchant)),
			BudgetID:      budgetID,
			AccountID:     last.AccountID,
			Source:        SourceManual,
			Direction:     dir,
			Description:   last.Name,
			Merchant:      last.Merchant,
			InstanceKeys:  instanceKeys,
			AverageAmount: total.Div(decimal.NewFromInt(int64(len(members)))).Round(2),
			Frequency:     c.name,
			Active:        daysBetween(last.Date, newest) <= 2*c.days,
			CategoryID:    last.CategoryID,
			LastDate:      last.Date,
		})
	}

	return out
}

func matchCadence(sorted []*Transaction, tolerance int) (cadence, bool) {
	for _, c := range cadences {
		ok := true

		for i := 1; i < len(sorted); i++ {
			gap := daysBetween(sorted[i-1].Date, sorted[i].Date)
			if gap < c.days-tolerance || gap > c.days+tolerance {
				ok = false
				break
			}
		}

		if ok {
			return c, true
		}
	}

	return cadence{}, false
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func normalizeMerchant(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
