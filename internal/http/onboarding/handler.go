package onboarding

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/budget"
	"github.com/MrJamesThe3rd/finplan/internal/goal"
	"github.com/MrJamesThe3rd/finplan/internal/http/respond"
	"github.com/MrJamesThe3rd/finplan/internal/onboarding"
)

type Handler struct {
	svc     *onboarding.Service
	goals   *goal.Service
	budgets *budget.Service
}

func NewHandler(svc *onboarding.Service, goals *goal.Service, budgets *budget.Service) *Handler {
	return &Handler{svc: svc, goals: goals, budgets: budgets}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Post("/", h.transition)
	r.Put("/profile", h.saveProfile)
}

type profileDTO struct {
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	Currency      string          `json:"currency" validate:"omitempty,iso4217"`
	HouseholdSize int             `json:"household_size" validate:"gte=0,lte=50"`
	PayFrequency  string          `json:"pay_frequency" validate:"omitempty,oneof=weekly biweekly semimonthly monthly"`
}

type stateResponse struct {
	BudgetID  uuid.UUID       `json:"budget_id"`
	Step      onboarding.Step `json:"step"`
	UpdatedAt time.Time       `json:"updated_at"`
	Profile   *profileDTO     `json:"profile,omitempty"`
	Complete  bool            `json:"profile_complete"`
}

type transitionRequest struct {
	Step string `json:"step" validate:"required"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	budgetID, ok := respond.BudgetID(r)
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid budget id")
		return
	}

	state, err := h.svc.State(r.Context(), budgetID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	profile, err := h.svc.Profile(r.Context(), budgetID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := stateResponse{
		BudgetID:  state.BudgetID,
		Step:      state.Step,
		UpdatedAt: state.UpdatedAt,
		Complete:  profile.Complete(),
	}

	if profile != nil {
		resp.Profile = &profileDTO{
			MonthlyIncome: profile.MonthlyIncome,
			Currency:      profile.Currency,
			HouseholdSize: profile.HouseholdSize,
			PayFrequency:  profile.PayFrequency,
		}
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

// transition moves the budget one step. The in-progress step belongs to the
// analysis run and cannot be entered or left from here.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	budgetID, ok := respond.BudgetID(r)
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid budget id")
		return
	}

	var req transitionRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	to, err := onboarding.ParseStep(req.Step)
	if err != nil {
		respond.Message(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if to == onboarding.StepAnalysisInProgress {
		respond.Message(w, r, http.StatusBadRequest, "start an analysis to enter "+string(to))
		return
	}

	state, err := h.svc.State(r.Context(), budgetID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if state.Step == onboarding.StepAnalysisInProgress {
		respond.Error(w, r, onboarding.ErrConcurrentRun)
		return
	}

	guard, err := h.guard(r, budgetID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Transition(r.Context(), budgetID, to, guard); err != nil {
		respond.Error(w, r, err)
		return
	}

	h.get(w, r)
}

func (h *Handler) guard(r *http.Request, budgetID uuid.UUID) (onboarding.Guard, error) {
	profile, err := h.svc.Profile(r.Context(), budgetID)
	if err != nil {
		return onboarding.Guard{}, err
	}

	goals, err := h.goals.List(r.Context(), budgetID)
	if err != nil {
		return onboarding.Guard{}, err
	}

	guard := onboarding.Guard{Profile: profile, Goals: goals}

	sp, err := h.budgets.LoadSpending(r.Context(), budgetID)
	switch {
	case errors.Is(err, budget.ErrNoAnalysis):
	case err != nil:
		return onboarding.Guard{}, err
	default:
		guard.HasRecommendations = !sp.Recommendations.Empty()
		guard.HasTracking = !sp.Tracking.Empty()
	}

	return guard, nil
}

func (h *Handler) saveProfile(w http.ResponseWriter, r *http.Request) {
	budgetID, ok := respond.BudgetID(r)
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid budget id")
		return
	}

	var req profileDTO
	if !respond.Decode(w, r, &req) {
		return
	}

	err := h.svc.SaveProfile(r.Context(), &onboarding.Profile{
		BudgetID:      budgetID,
		MonthlyIncome: req.MonthlyIncome,
		Currency:      req.Currency,
		HouseholdSize: req.HouseholdSize,
		PayFrequency:  req.PayFrequency,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
