package goal

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/goal"
	"github.com/MrJamesThe3rd/finplan/internal/http/respond"
	"github.com/MrJamesThe3rd/finplan/internal/recommendation"
)

type Handler struct {
	svc *goal.Service
}

func NewHandler(svc *goal.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/{goalID}", h.delete)
}

type createGoalRequest struct {
	Name       string                  `json:"name" validate:"required,max=120"`
	Type       goal.Type               `json:"type" validate:"required,oneof=savings debt investment"`
	Amount     decimal.Decimal         `json:"amount"`
	TargetDate string                  `json:"target_date" validate:"required,datetime=2006-01-02"`
	Debt       *goal.Debt              `json:"debt,omitempty"`
	AccountID  *string                 `json:"account_id,omitempty"`
	Strategy   recommendation.Strategy `json:"strategy,omitempty" validate:"omitempty,oneof=balanced conservative relaxed"`
}

type goalResponse struct {
	ID              uuid.UUID                                                `json:"id"`
	Name            string                                                   `json:"name"`
	Type            goal.Type                                                `json:"type"`
	Amount          decimal.Decimal                                          `json:"amount"`
	TargetDate      string                                                   `json:"target_date"`
	Debt            *goal.Debt                                               `json:"debt,omitempty"`
	AccountID       *string                                                  `json:"account_id,omitempty"`
	Strategy        recommendation.Strategy                                  `json:"strategy"`
	Tracking        goal.Tracking                                            `json:"tracking"`
	Recommendations map[recommendation.Strategy][]recommendation.MonthAmount `json:"recommendations,omitempty"`
	CreatedAt       time.Time                                                `json:"created_at"`
}

func toResponse(g *goal.Goal) goalResponse {
	return goalResponse{
		ID:              g.ID,
		Name:            g.Name,
		Type:            g.Type,
		Amount:          g.Amount,
		TargetDate:      g.TargetDate.Format(time.DateOnly),
		Debt:            g.Debt,
		AccountID:       g.AccountID,
		Strategy:        g.TrackingStrategy(),
		Tracking:        g.Tracking,
		Recommendations: g.Recommendations,
		CreatedAt:       g.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	budgetID, ok := respond.BudgetID(r)
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid budget id")
		return
	}

	goals, err := h.svc.List(r.Context(), budgetID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]goalResponse, len(goals))
	for i, g := range goals {
		resp[i] = toResponse(g)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	budgetID, ok := respond.BudgetID(r)
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid budget id")
		return
	}

	var req createGoalRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	target, err := time.Parse(time.DateOnly, req.TargetDate)
	if err != nil {
		respond.Message(w, r, http.StatusBadRequest, "target_date must be YYYY-MM-DD")
		return
	}

	g, err := h.svc.Create(r.Context(), goal.CreateParams{
		BudgetID:   budgetID,
		Name:       req.Name,
		Type:       req.Type,
		Amount:     req.Amount,
		TargetDate: target,
		Debt:       req.Debt,
		AccountID:  req.AccountID,
		Strategy:   req.Strategy,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(g))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	budgetID, ok := respond.BudgetID(r)
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid budget id")
		return
	}

	id, ok := respond.PathID(r, "goalID")
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid goal id")
		return
	}

	if err := h.svc.Delete(r.Context(), budgetID, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
