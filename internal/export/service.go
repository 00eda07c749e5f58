package export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/budget"
	"github.com/MrJamesThe3rd/finplan/internal/goal"
	"github.com/MrJamesThe3rd/finplan/internal/money"
	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
	"github.com/MrJamesThe3rd/finplan/internal/spending"
)

// Kind names one CSV file of an export.
type Kind string

const (
	KindTracking        Kind = "tracking"
	KindRecommendations Kind = "recommendations"
	KindGoals           Kind = "goals"
)

// Kinds lists every CSV in the order they are bundled.
var Kinds = []Kind{KindTracking, KindRecommendations, KindGoals}

type SpendingLoader interface {
	LoadSpending(ctx context.Context, budgetID uuid.UUID) (*budget.Spending, error)
}

type GoalLister interface {
	List(ctx context.Context, budgetID uuid.UUID) ([]*goal.Goal, error)
}

// Bundle is everything a budget's last analysis left behind.
type Bundle struct {
	Spending *budget.Spending
	Goals    []*goal.Goal
}

// Service turns stored analysis output into CSV files.
type Service struct {
	spending SpendingLoader
	goals    GoalLister
}

// NewService creates a new export Service.
func NewService(spending SpendingLoader, goals GoalLister) *Service {
	return &Service{spending: spending, goals: goals}
}

// Load reads the stored analysis of budgetID. It returns budget.ErrNoAnalysis
// when the budget was never analyzed.
func (s *Service) Load(ctx context.Context, budgetID uuid.UUID) (*Bundle, error) {
	sp, err := s.spending.LoadSpending(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("loading spending: %w", err)
	}

	goals, err := s.goals.List(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}

	return &Bundle{Spending: sp, Goals: goals}, nil
}

// WriteCSV writes one kind of the bundle as CSV.
func (b *Bundle) WriteCSV(w io.Writer, kind Kind) error {
	cw := csv.NewWriter(w)

	var rows [][]string

	switch kind {
	case KindTracking:
		rows = trackingRows(b.Spending.Tracking)
	case KindRecommendations:
		rows = recommendationRows(b.Spending.Recommendations)
	case KindGoals:
		rows = goalRows(b.Goals)
	default:
		return fmt.Errorf("unknown export kind %q", kind)
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s csv: %w", kind, err)
	}

	return nil
}

// WriteZip writes every CSV plus a plain-text summary into one archive.
func (b *Bundle) WriteZip(w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, kind := range Kinds {
		f, err := zw.Create(string(kind) + ".csv")
		if err != nil {
			return fmt.Errorf("creating %s entry: %w", kind, err)
		}

		if err := b.WriteCSV(f, kind); err != nil {
			return err
		}
	}

	f, err := zw.Create("summary.txt")
	if err != nil {
		return fmt.Errorf("creating summary entry: %w", err)
	}

	if _, err := io.WriteString(f, b.Summary()); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	return zw.Close()
}

// Summary renders one line per strategy and one per goal.
func (b *Bundle) Summary() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Analyzed at %s\n", b.Spending.AnalyzedAt.Format(time.RFC3339))

	for _, p := range b.Spending.Recommendations.Plans {
		fmt.Fprintf(&sb, "* %s | income %s | spending %s | available %s\n",
			p.Strategy, money.Format(p.Income), money.Format(p.Spending()), money.Format(p.Available))
	}

	for _, g := range b.Goals {
		months := sortedMonths(g.Tracking)

		status := "not scheduled"
		if len(months) > 0 {
			status = fmt.Sprintf("%s to %s", months[0], months[len(months)-1])
		}

		fmt.Fprintf(&sb, "* goal %s | %s | %s | %s\n",
			g.Name, g.TrackingStrategy(), money.Format(g.Tracking.Total()), status)
	}

	return sb.String()
}

func trackingRows(t spending.Tracking) [][]string {
	rows := [][]string{{"month", "group", "category", "discretionary", "amount"}}

	for _, m := range t.Months {
		for _, g := range m.Groups {
			for _, c := range g.Categories {
				rows = append(rows, []string{m.Month, g.Name, c.Name, fmt.Sprint(c.Discretionary), money.Format(c.Amount)})
			}
		}
	}

	return rows
}

func recommendationRows(r recommendation.Result) [][]string {
	rows := [][]string{{"strategy", "group", "category", "discretionary", "baseline", "amount"}}

	for _, p := range r.Plans {
		for _, g := range p.Groups {
			for _, c := range g.Categories {
				rows = append(rows, []string{
					string(p.Strategy), g.Name, c.Name, fmt.Sprint(c.Discretionary),
					money.Format(c.Baseline), money.Format(c.Amount),
				})
			}
		}
	}

	return rows
}

func goalRows(goals []*goal.Goal) [][]string {
	rows := [][]string{{"goal", "type", "month", "date", "target", "actual"}}

	for _, g := range goals {
		for _, month := range sortedMonths(g.Tracking) {
			for _, a := range g.Tracking[month].Allocations {
				actual := ""
				if a.Actual != nil {
					actual = money.Format(*a.Actual)
				}

				rows = append(rows, []string{
					g.Name, string(g.Type), month, a.Date.Format(time.DateOnly), money.Format(a.Target), actual,
				})
			}
		}
	}

	return rows
}

func sortedMonths(t goal.Tracking) []string {
	months := make([]string, 0, len(t))
	for m := range t {
		months = append(months, m)
	}

	slices.Sort(months)

	return months
}
