package category

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/category"
	"github.com/MrJamesThe3rd/finplan/internal/http/respond"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/mappings", h.learn)
}

type categoryResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Discretionary bool      `json:"discretionary"`
}

type groupResponse struct {
	ID         uuid.UUID          `json:"id"`
	Name       string             `json:"name"`
	Income     bool               `json:"income"`
	Categories []categoryResponse `json:"categories"`
}

type learnRequest struct {
	ProviderCategory string `json:"provider_category" validate:"required"`
	CategoryName     string `json:"category_name" validate:"required"`
	Detailed         bool   `json:"detailed"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	budgetID, ok := respond.BudgetID(r)
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid budget id")
		return
	}

	groups, err := h.svc.Groups(r.Context(), budgetID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		cats := make([]categoryResponse, 0, len(g.Categories))
		for _, c := range g.Categories {
			cats = append(cats, categoryResponse{ID: c.ID, Name: c.Name, Discretionary: c.Discretionary})
		}

		resp = append(resp, groupResponse{ID: g.ID, Name: g.Name, Income: g.IsIncome(), Categories: cats})
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

// learn maps a provider category onto a taxonomy category name. The mapping
// applies from the next analysis on.
func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	if err := h.svc.Learn(r.Context(), req.ProviderCategory, req.CategoryName, req.Detailed); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
