// Package recommendation turns the trailing spending window and goal needs into
// the balanced, conservative and relaxed monthly plans.
package recommendation

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/category"
	"github.com/MrJamesThe3rd/finplan/internal/money"
	"github.com/MrJamesThe3rd/finplan/internal/spending"
)

type Strategy string

const (
	Balanced     Strategy = "balanced"
	Conservative Strategy = "conservative"
	Relaxed      Strategy = "relaxed"
)

// Strategies lists every strategy in presentation order.
var Strategies = []Strategy{Balanced, Conservative, Relaxed}

// ParseStrategy accepts a strategy name; empty means balanced.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return Balanced, nil
	case Balanced, Conservative, Relaxed:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown strategy %q", s)
	}
}

const monthLayout = "2006-01"

// GoalNeed is what one goal asks for under its original schedule.
type GoalNeed struct {
	GoalID uuid.UUID
	// Start is the first month of the schedule.
	Start time.Time
	// Months is the original number of monthly contributions.
	Months int
	// Total is the amount still to be contributed.
	Total decimal.Decimal
	// Monthly is the original first-month contribution.
	Monthly decimal.Decimal
}

type CategoryTarget struct {
	CategoryID    uuid.UUID       `json:"category_id"`
	Name          string          `json:"name"`
	Discretionary bool            `json:"discretionary"`
	Baseline      decimal.Decimal `json:"baseline"`
	Amount        decimal.Decimal `json:"amount"`
}

type GroupTarget struct {
	GroupID    uuid.UUID        `json:"group_id"`
	Name       string           `json:"name"`
	Amount     decimal.Decimal  `json:"amount"`
	Categories []CategoryTarget `json:"categories"`
}

type MonthAmount struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// GoalSchedule is a goal's recommended contribution per month. An empty
// schedule means nothing is left over for the goal, or, when Unfundable is
// set, that the goal would take longer than the engine's month limit.
type GoalSchedule struct {
	GoalID     uuid.UUID     `json:"goal_id"`
	Months     []MonthAmount `json:"months"`
	Unfundable bool          `json:"unfundable,omitempty"`
}

// ByMonth indexes the schedule by YYYY-MM.
func (s GoalSchedule) ByMonth() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(s.Months))
	for _, m := range s.Months {
		out[m.Month] = m.Amount
	}

	return out
}

// Plan is one strategy's output.
type Plan struct {
	Strategy         Strategy        `json:"strategy"`
	Income           decimal.Decimal `json:"income"`
	Discretionary    decimal.Decimal `json:"discretionary"`
	NonDiscretionary decimal.Decimal `json:"non_discretionary"`
	// Change is the signed adjustment applied to discretionary spending.
	Change    decimal.Decimal `json:"change"`
	Available decimal.Decimal `json:"available"`
	Groups    []GroupTarget   `json:"groups"`
	Goals     []GoalSchedule  `json:"goals"`
}

// Goal returns the schedule of goalID.
func (p Plan) Goal(goalID uuid.UUID) (GoalSchedule, bool) {
	for _, g := range p.Goals {
		if g.GoalID == goalID {
			return g, true
		}
	}

	return GoalSchedule{}, false
}

// Spending is the total recommended spending of the plan.
func (p Plan) Spending() decimal.Decimal {
	return p.Discretionary.Add(p.NonDiscretionary)
}

type Result struct {
	Plans []Plan `json:"plans"`
}

// Plan returns the plan computed for s.
func (r Result) Plan(s Strategy) (Plan, bool) {
	for _, p := range r.Plans {
		if p.Strategy == s {
			return p, true
		}
	}

	return Plan{}, false
}

// Empty reports whether no category targets were produced.
func (r Result) Empty() bool {
	for _, p := range r.Plans {
		if len(p.Groups) > 0 {
			return false
		}
	}

	return true
}

// Round is the single rounding pass over every amount of the result.
func (r *Result) Round() {
	for i := range r.Plans {
		p := &r.Plans[i]
		p.Income = money.Round(p.Income)
		p.Discretionary = money.Round(p.Discretionary)
		p.NonDiscretionary = money.Round(p.NonDiscretionary)
		p.Change = money.Round(p.Change)
		p.Available = money.Round(p.Available)

		for j := range p.Groups {
			g := &p.Groups[j]
			g.Amount = money.Round(g.Amount)

			for k := range g.Categories {
				g.Categories[k].Baseline = money.Round(g.Categories[k].Baseline)
				g.Categories[k].Amount = money.Round(g.Categories[k].Amount)
			}
		}

		for j := range p.Goals {
			for k := range p.Goals[j].Months {
				p.Goals[j].Months[k].Amount = money.Round(p.Goals[j].Months[k].Amount)
			}
		}
	}
}

var (
	one       = decimal.NewFromInt(1)
	twentyPct = decimal.RequireFromString("0.2")
	fiftyPct  = decimal.RequireFromString("0.5")
)

// DefaultMaxGoalMonths is the longest goal schedule the engine will produce.
const DefaultMaxGoalMonths = 600

// Engine computes recommendation plans. It holds no state between calls.
type Engine struct {
	maxGoalMonths int
}

func NewEngine() *Engine {
	return &Engine{maxGoalMonths: DefaultMaxGoalMonths}
}

// WithMaxGoalMonths replaces the schedule length past which a goal is
// reported unfundable. Non-positive values keep the current limit.
func (e *Engine) WithMaxGoalMonths(n int) *Engine {
	if n > 0 {
		e.maxGoalMonths = n
	}

	return e
}

// Recommend computes one plan per strategy from the trailing window and the
// open goals' needs. Amounts are left unrounded; call Result.Round once the
// whole run is done.
func (e *Engine) Recommend(w spending.Window, needs []GoalNeed) Result {
	res := Result{Plans: make([]Plan, 0, len(Strategies))}

	for _, s := range Strategies {
		res.Plans = append(res.Plans, e.plan(s, w, needs))
	}

	return res
}

func (e *Engine) plan(s Strategy, w spending.Window, needs []GoalNeed) Plan {
	change := discretionaryChange(s, w)

	targets := adjust(w.Baselines, w.Discretionary, change)

	disc := decimal.Zero
	for _, b := range targets {
		if b.Ref.Discretionary {
			disc = disc.Add(b.Amount)
		}
	}

	p := Plan{
		Strategy:         s,
		Income:           w.Income,
		Discretionary:    disc,
		NonDiscretionary: w.NonDiscretionary,
		Change:           change,
		Groups:           groupTargets(w.Baselines, targets),
	}
	p.Available = w.Income.Sub(p.Spending())
	p.Goals = goalSchedules(s, p.Available, needs, e.maxGoalMonths)

	return p
}

// discretionaryChange is the signed adjustment to total discretionary spending.
func discretionaryChange(s Strategy, w spending.Window) decimal.Decimal {
	disc := w.Discretionary
	if !disc.IsPositive() {
		return decimal.Zero
	}

	gap := w.Desired().Sub(w.Income)
	deficit := money.NonNegative(gap)
	limit := disc.Mul(fiftyPct)

	switch s {
	case Conservative:
		ratio := twentyPct
		if deficit.IsPositive() {
			ratio = decimal.Max(twentyPct, deficit.Div(disc))
		}

		return decimal.Min(ratio, fiftyPct).Mul(disc).Neg()
	case Relaxed:
		if surplus := gap.Neg(); surplus.IsPositive() {
			return decimal.Min(disc.Mul(twentyPct), surplus)
		}

		return decimal.Min(deficit, limit).Neg()
	default:
		return decimal.Min(deficit, limit).Neg()
	}
}

type adjusted struct {
	Ref    category.Ref
	Amount decimal.Decimal
}

// adjust spreads change over the discretionary baselines by their share of
// the discretionary total. Categories are visited by descending amount and the
// last one absorbs the rounding remainder.
func adjust(baselines []spending.Baseline, discTotal, change decimal.Decimal) []adjusted {
	out := make([]adjusted, len(baselines))

	var disc []int

	for i, b := range baselines {
		out[i] = adjusted{Ref: b.Ref, Amount: b.Amount}

		if b.Ref.Discretionary && b.Amount.IsPositive() {
			disc = append(disc, i)
		}
	}

	if change.IsZero() || len(disc) == 0 || !discTotal.IsPositive() {
		return out
	}

	sort.SliceStable(disc, func(a, b int) bool {
		return baselines[disc[a]].Amount.GreaterThan(baselines[disc[b]].Amount)
	})

	applied := decimal.Zero

	for n, i := range disc {
		delta := money.Round(change.Mul(baselines[i].Amount).Div(discTotal))
		if n == len(disc)-1 {
			delta = change.Sub(applied)
		}

		applied = applied.Add(delta)
		out[i].Amount = money.NonNegative(baselines[i].Amount.Add(delta))
	}

	return out
}

func groupTargets(baselines []spending.Baseline, targets []adjusted) []GroupTarget {
	var groups []GroupTarget

	index := make(map[uuid.UUID]int)

	for i, t := range targets {
		gi, ok := index[t.Ref.GroupID]
		if !ok {
			groups = append(groups, GroupTarget{GroupID: t.Ref.GroupID, Name: t.Ref.GroupName, Amount: decimal.Zero})
			gi = len(groups) - 1
			index[t.Ref.GroupID] = gi
		}

		g := &groups[gi]
		g.Amount = g.Amount.Add(t.Amount)
		g.Categories = append(g.Categories, CategoryTarget{
			CategoryID:    t.Ref.CategoryID,
			Name:          t.Ref.CategoryName,
			Discretionary: t.Ref.Discretionary,
			Baseline:      baselines[i].Amount,
			Amount:        t.Amount,
		})
	}

	return groups
}

func goalSchedules(s Strategy, available decimal.Decimal, needs []GoalNeed, maxMonths int) []GoalSchedule {
	out := make([]GoalSchedule, 0, len(needs))

	original := decimal.Zero
	for _, n := range needs {
		original = original.Add(n.Monthly)
	}

	for _, n := range needs {
		sched := GoalSchedule{GoalID: n.GoalID}

		if available.IsPositive() && n.Months > 0 {
			months := goalMonths(s, available, original, n, share(n, original, len(needs)))
			if months > maxMonths && months > n.Months {
				sched.Unfundable = true
				out = append(out, sched)

				continue
			}

			sched.Months = monthly(n.Start, Allocate(n.Total, months))
		}

		out = append(out, sched)
	}

	return out
}

// goalMonths is the contribution count of one goal under s. available is positive.
func goalMonths(s Strategy, available, original decimal.Decimal, n GoalNeed, share decimal.Decimal) int {
	switch s {
	case Conservative:
		if available.GreaterThan(original) {
			increased := available.Mul(share)
			if !increased.IsPositive() {
				return n.Months
			}

			return max(ceilInt(n.Total.Div(increased)), 1)
		}

		return extend(available, original, n.Months)
	case Relaxed:
		if original.LessThanOrEqual(available) {
			return n.Months
		}

		perGoal := available.Mul(share)
		if !perGoal.IsPositive() {
			return n.Months
		}

		return max(n.Months, ceilInt(n.Total.Div(perGoal)))
	default:
		return extend(available, original, n.Months)
	}
}

// extend stretches months by original/available when available falls short.
func extend(available, original decimal.Decimal, months int) int {
	if available.GreaterThanOrEqual(original) {
		return months
	}

	return ceilInt(decimal.NewFromInt(int64(months)).Mul(original).Div(available))
}

// share is the goal's part of the original monthly total; equal parts when
// nothing was asked for.
func share(n GoalNeed, original decimal.Decimal, count int) decimal.Decimal {
	if original.IsPositive() {
		return n.Monthly.Div(original)
	}

	return one.Div(decimal.NewFromInt(int64(count)))
}

var monthCeiling = decimal.NewFromInt(math.MaxInt32)

// ceilInt saturates at MaxInt32 so a near-zero divisor cannot overflow.
func ceilInt(d decimal.Decimal) int {
	if d.GreaterThan(monthCeiling) {
		return math.MaxInt32
	}

	return int(d.Ceil().IntPart())
}

func monthly(start time.Time, amounts []decimal.Decimal) []MonthAmount {
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]MonthAmount, len(amounts))

	for i, a := range amounts {
		out[i] = MonthAmount{Month: first.AddDate(0, i, 0).Format(monthLayout), Amount: a}
	}

	return out
}
