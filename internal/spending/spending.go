// Package spending rolls classified transactions up into monthly actuals and
// the trailing window recommendations start from.
package spending

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/category"
	"github.com/MrJamesThe3rd/finplan/internal/money"
)

const monthLayout = "2006-01"

// DefaultWindowDays is the length of the trailing window.
const DefaultWindowDays = 30

// Entry is a transaction with its resolved category.
type Entry struct {
	Key    string
	Date   time.Time
	Amount decimal.Decimal
	Ref    category.Ref
}

// signed returns the amount as it enters the totals: income always counts negative.
func (e Entry) signed() decimal.Decimal {
	if e.Ref.IsIncome() {
		return e.Amount.Abs().Neg()
	}

	return e.Amount
}

type CategoryTotal struct {
	CategoryID    uuid.UUID       `json:"category_id"`
	Name          string          `json:"name"`
	Discretionary bool            `json:"discretionary"`
	Amount        decimal.Decimal `json:"amount"`
}

type GroupTotal struct {
	GroupID    uuid.UUID       `json:"group_id"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
	Categories []CategoryTotal `json:"categories"`
}

// MonthTotals holds the actuals of one calendar month, groups in taxonomy order.
type MonthTotals struct {
	Month  string       `json:"month"`
	Groups []GroupTotal `json:"groups"`
}

// Tracking is the historical actuals, months in ascending order.
type Tracking struct {
	Months []MonthTotals `json:"months"`
}

// Month returns the totals of month (YYYY-MM).
func (t Tracking) Month(month string) (MonthTotals, bool) {
	for _, m := range t.Months {
		if m.Month == month {
			return m, true
		}
	}

	return MonthTotals{}, false
}

// Empty reports whether no month was tracked.
func (t Tracking) Empty() bool {
	return len(t.Months) == 0
}

// Round rounds every amount to cents.
func (t *Tracking) Round() {
	for i := range t.Months {
		for j := range t.Months[i].Groups {
			g := &t.Months[i].Groups[j]
			g.Total = money.Round(g.Total)

			for k := range g.Categories {
				g.Categories[k].Amount = money.Round(g.Categories[k].Amount)
			}
		}
	}
}

// Aggregate builds the tracking for every month present in entries. Every
// group and category of the taxonomy appears in every month, zero when unused.
func Aggregate(entries []Entry, taxonomy *category.Taxonomy) Tracking {
	sums := make(map[string]map[uuid.UUID]decimal.Decimal)

	for _, e := range entries {
		month := e.Date.Format(monthLayout)

		bucket, ok := sums[month]
		if !ok {
			bucket = make(map[uuid.UUID]decimal.Decimal)
			sums[month] = bucket
		}

		bucket[e.Ref.CategoryID] = bucket[e.Ref.CategoryID].Add(e.signed())
	}

	months := make([]string, 0, len(sums))
	for m := range sums {
		months = append(months, m)
	}

	sort.Strings(months)

	tracking := Tracking{Months: make([]MonthTotals, 0, len(months))}

	for _, m := range months {
		tracking.Months = append(tracking.Months, MonthTotals{
			Month:  m,
			Groups: groupTotals(taxonomy, sums[m]),
		})
	}

	return tracking
}

func groupTotals(taxonomy *category.Taxonomy, sums map[uuid.UUID]decimal.Decimal) []GroupTotal {
	groups := taxonomy.Groups()
	out := make([]GroupTotal, 0, len(groups))

	for _, g := range groups {
		gt := GroupTotal{
			GroupID:    g.ID,
			Name:       g.Name,
			Total:      decimal.Zero,
			Categories: make([]CategoryTotal, 0, len(g.Categories)),
		}

		for _, c := range g.Categories {
			amount := sums[c.ID]
			gt.Total = gt.Total.Add(amount)
			gt.Categories = append(gt.Categories, CategoryTotal{
				CategoryID:    c.ID,
				Name:          c.Name,
				Discretionary: c.Discretionary,
				Amount:        amount,
			})
		}

		out = append(out, gt)
	}

	return out
}

// Baseline is the trailing actual of one spending category.
type Baseline struct {
	Ref    category.Ref
	Amount decimal.Decimal
}

// Window summarizes the trailing period ending on the latest transaction.
type Window struct {
	Start            time.Time
	End              time.Time
	Income           decimal.Decimal
	Discretionary    decimal.Decimal
	NonDiscretionary decimal.Decimal
	// Baselines covers every non-income category, in taxonomy order.
	Baselines []Baseline
}

// Desired is the spending the window implies.
func (w Window) Desired() decimal.Decimal {
	return w.Discretionary.Add(w.NonDiscretionary)
}

// TrailingWindow keeps the entries of the last days calendar days, counting the
// date of the most recent entry as the first. Start is inclusive, so a 30 day
// window ending March 3 starts February 2. The anchor is the data, never the wall clock.
func TrailingWindow(entries []Entry, taxonomy *category.Taxonomy, days int) Window {
	if days <= 0 {
		days = DefaultWindowDays
	}

	w := Window{
		Income:           decimal.Zero,
		Discretionary:    decimal.Zero,
		NonDiscretionary: decimal.Zero,
	}

	for _, e := range entries {
		if e.Date.After(w.End) {
			w.End = e.Date
		}
	}

	w.Start = w.End.AddDate(0, 0, 1-days)

	sums := make(map[uuid.UUID]decimal.Decimal)
	income := decimal.Zero

	for _, e := range entries {
		if e.Date.Before(w.Start) {
			continue
		}

		if e.Ref.IsIncome() {
			income = income.Add(e.signed())
			continue
		}

		sums[e.Ref.CategoryID] = sums[e.Ref.CategoryID].Add(e.Amount)
	}

	w.Income = income.Abs()

	for _, g := range taxonomy.Groups() {
		if g.IsIncome() {
			continue
		}

		for _, c := range g.Categories {
			ref, _ := taxonomy.ByID(c.ID)
			amount := sums[c.ID].Abs()

			if c.Discretionary {
				w.Discretionary = w.Discretionary.Add(amount)
			} else {
				w.NonDiscretionary = w.NonDiscretionary.Add(amount)
			}

			w.Baselines = append(w.Baselines, Baseline{Ref: ref, Amount: amount})
		}
	}

	return w
}
