package goal

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/apperror"
	"github.com/MrJamesThe3rd/finplan/internal/money"
	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
)

const (
	monthLayout = "2006-01"
	// fallbackDay dates allocations of months that had none.
	fallbackDay = 25
)

// Schedule is the original contribution calendar of a goal.
type Schedule struct {
	Start       time.Time
	Day         int
	Allocations []Allocation
}

func (s Schedule) Months() int {
	return len(s.Allocations)
}

// Need is what the schedule asks of the recommendation engine.
func (s Schedule) Need(g *Goal) recommendation.GoalNeed {
	need := recommendation.GoalNeed{
		GoalID:  g.ID,
		Start:   s.Start,
		Months:  s.Months(),
		Total:   decimal.Zero,
		Monthly: decimal.Zero,
	}

	for _, a := range s.Allocations {
		need.Total = need.Total.Add(a.Target)
	}

	if len(s.Allocations) > 0 {
		need.Monthly = s.Allocations[0].Target
	}

	return need
}

// Plan lays out one allocation per month from the first contribution month
// through the target month. Contributions start this month unless the target
// day has already passed, then next month.
func Plan(g *Goal, now time.Time) (Schedule, error) {
	if err := g.Validate(now); err != nil {
		return Schedule{}, err
	}

	day := g.TargetDate.Day()

	start := firstOfMonth(now)
	if now.Day() > day {
		start = start.AddDate(0, 1, 0)
	}

	end := firstOfMonth(g.TargetDate)

	n := monthsBetween(start, end) + 1
	if n < 1 {
		n = 1
	}

	amount := g.Remaining()
	count := decimal.NewFromInt(int64(n))
	base := money.Round(amount.Div(count))

	s := Schedule{Start: start, Day: day, Allocations: make([]Allocation, n)}

	for i := range n {
		month := start.AddDate(0, i, 0)

		target := base
		if i == n-1 {
			target = amount.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))
		}

		s.Allocations[i] = Allocation{
			Date:   time.Date(month.Year(), month.Month(), min(day, lastDay(month)), 0, 0, 0, 0, time.UTC),
			Target: target,
		}
	}

	return s, nil
}

// Rebuild derives a goal's tracking from the recommended monthly amounts.
// Months that already hold allocations keep their dates and have the targets
// rescaled to the new amount; other months get one allocation on the 25th.
// Months no longer recommended survive only if something was realized in them.
// A recommended month that is not a YYYY-MM key is an integrity error.
func Rebuild(existing Tracking, recommended []recommendation.MonthAmount, startingBalance decimal.Decimal) (Tracking, error) {
	out := make(Tracking, len(recommended))

	for _, m := range recommended {
		if prev, ok := existing[m.Month]; ok && len(prev.Allocations) > 0 {
			out[m.Month] = &MonthTracking{
				StartingBalance: prev.StartingBalance,
				Allocations:     rescale(prev, m.Amount),
			}

			continue
		}

		month, err := time.Parse(monthLayout, m.Month)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindIntegrity, "rebuild goal tracking",
				fmt.Errorf("recommended month %q: %w", m.Month, err))
		}

		out[m.Month] = &MonthTracking{
			StartingBalance: startingBalance,
			Allocations: []Allocation{{
				Date:   time.Date(month.Year(), month.Month(), fallbackDay, 0, 0, 0, 0, time.UTC),
				Target: m.Amount,
			}},
		}
	}

	for month, prev := range existing {
		if _, ok := out[month]; ok || !prev.realized() {
			continue
		}

		out[month] = prev
	}

	return out, nil
}

// rescale multiplies every target by amount/old total. The last allocation
// absorbs rounding; a month whose old total is zero puts everything on the first.
func rescale(prev *MonthTracking, amount decimal.Decimal) []Allocation {
	allocs := make([]Allocation, len(prev.Allocations))
	copy(allocs, prev.Allocations)

	old := prev.target()

	if old.IsZero() {
		for i := range allocs {
			allocs[i].Target = decimal.Zero
		}

		allocs[0].Target = amount

		return allocs
	}

	applied := decimal.Zero

	for i := range allocs {
		if i == len(allocs)-1 {
			allocs[i].Target = amount.Sub(applied)
			break
		}

		allocs[i].Target = money.Round(allocs[i].Target.Mul(amount).Div(old))
		applied = applied.Add(allocs[i].Target)
	}

	return allocs
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func lastDay(month time.Time) int {
	return firstOfMonth(month).AddDate(0, 1, -1).Day()
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
