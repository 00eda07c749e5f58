package analysis

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/analysis"
	"github.com/MrJamesThe3rd/finplan/internal/budget"
	"github.com/MrJamesThe3rd/finplan/internal/goal"
	"github.com/MrJamesThe3rd/finplan/internal/http/respond"
	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
	"github.com/MrJamesThe3rd/finplan/internal/spending"
)

type Runner interface {
	Run(ctx context.Context, budgetID uuid.UUID) (*analysis.Report, error)
}

type SpendingLoader interface {
	LoadSpending(ctx context.Context, budgetID uuid.UUID) (*budget.Spending, error)
}

type Handler struct {
	runner   Runner
	spending SpendingLoader
}

func NewHandler(runner Runner, spending SpendingLoader) *Handler {
	return &Handler{runner: runner, spending: spending}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.run)
	r.Get("/", h.get)
}

type goalPlanResponse struct {
	ID              uuid.UUID                                                `json:"id"`
	Name            string                                                   `json:"name"`
	Strategy        recommendation.Strategy                                  `json:"strategy"`
	Tracking        goal.Tracking                                            `json:"tracking"`
	Recommendations map[recommendation.Strategy][]recommendation.MonthAmount `json:"recommendations"`
}

type reportResponse struct {
	BudgetID        uuid.UUID              `json:"budget_id"`
	AnalyzedAt      time.Time              `json:"analyzed_at"`
	Linked          int                    `json:"linked"`
	Unlinked        int                    `json:"unlinked"`
	New             int                    `json:"new"`
	Uncategorized   int                    `json:"uncategorized"`
	Skipped         []analysis.SkippedGoal `json:"skipped_goals"`
	Recommendations []recommendation.Plan  `json:"recommendations"`
	Tracking        spending.Tracking      `json:"tracking"`
	Goals           []goalPlanResponse     `json:"goals"`
}

type spendingResponse struct {
	BudgetID        uuid.UUID             `json:"budget_id"`
	AnalyzedAt      time.Time             `json:"analyzed_at"`
	Recommendations []recommendation.Plan `json:"recommendations"`
	Tracking        spending.Tracking     `json:"tracking"`
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	budgetID, ok := respond.BudgetID(r)
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid budget id")
		return
	}

	report, err := h.runner.Run(r.Context(), budgetID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	goals := make([]goalPlanResponse, 0, len(report.Goals))
	for _, g := range report.Goals {
		goals = append(goals, goalPlanResponse{
			ID:              g.ID,
			Name:            g.Name,
			Strategy:        g.TrackingStrategy(),
			Tracking:        g.Tracking,
			Recommendations: g.Recommendations,
		})
	}

	skipped := report.Skipped
	if skipped == nil {
		skipped = []analysis.SkippedGoal{}
	}

	respond.JSON(w, r, http.StatusOK, reportResponse{
		BudgetID:        report.BudgetID,
		AnalyzedAt:      report.AnalyzedAt,
		Linked:          report.Linked,
		Unlinked:        report.Unlinked,
		New:             report.New,
		Uncategorized:   report.Uncategorized,
		Skipped:         skipped,
		Recommendations: report.Recommendations.Plans,
		Tracking:        report.Tracking,
		Goals:           goals,
	})
}

// get returns the stored output of the last run. ?strategy= narrows the plans to one.
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	budgetID, ok := respond.BudgetID(r)
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid budget id")
		return
	}

	sp, err := h.spending.LoadSpending(r.Context(), budgetID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	plans := sp.Recommendations.Plans

	if s := r.URL.Query().Get("strategy"); s != "" {
		strategy, err := recommendation.ParseStrategy(s)
		if err != nil {
			respond.Message(w, r, http.StatusBadRequest, err.Error())
			return
		}

		plan, found := sp.Recommendations.Plan(strategy)
		if !found {
			respond.Message(w, r, http.StatusNotFound, "strategy not in stored analysis")
			return
		}

		plans = []recommendation.Plan{plan}
	}

	respond.JSON(w, r, http.StatusOK, spendingResponse{
		BudgetID:        sp.BudgetID,
		AnalyzedAt:      sp.AnalyzedAt,
		Recommendations: plans,
		Tracking:        sp.Tracking,
	})
}
