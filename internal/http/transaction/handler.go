package transaction

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/http/respond"
	"github.com/MrJamesThe3rd/finplan/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	budgetID, ok := respond.BudgetID(r)
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid budget id")
		return
	}

	filter := transaction.ListFilter{BudgetID: budgetID}

	if s := r.URL.Query().Get("account_id"); s != "" {
		filter.AccountID = new(s)
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = new(t)
		}
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponseList(txs))
}

// lookup loads the {id} transaction and hides transactions of other budgets.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*transaction.Transaction, bool) {
	budgetID, ok := respond.BudgetID(r)
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid budget id")
		return nil, false
	}

	id, ok := respond.PathID(r, "id")
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	if tx.BudgetID != budgetID {
		respond.Error(w, r, transaction.ErrNotFound)
		return nil, false
	}

	return tx, true
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.lookup(w, r)
	if !ok {
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(tx))
}

type updateTransactionRequest struct {
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Merchant   *string    `json:"merchant,omitempty" validate:"omitempty,min=1,max=200"`
	Note       *string    `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// update edits category, merchant and note. Amount, date and status are
// owned by the provider or the import and are not editable.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req updateTransactionRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	updated, err := h.svc.UpdateDetails(r.Context(), tx.ID, transaction.Details{
		CategoryID: req.CategoryID,
		Merchant:   req.Merchant,
		Note:       req.Note,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(updated))
}
