package importcsv

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/http/respond"
	"github.com/MrJamesThe3rd/finplan/internal/importer"
	"github.com/MrJamesThe3rd/finplan/internal/transaction"
)

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
	r.Get("/presets", h.presets)
}

type transactionResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserTxID  string          `json:"user_tx_id"`
	AccountID string          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Merchant  string          `json:"merchant"`
	Date      string          `json:"date"`
}

type importSuccessResponse struct {
	Imported     int                   `json:"imported"`
	Transactions []transactionResponse `json:"transactions"`
}

type createParamsDTO struct {
	AccountID string          `json:"account_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency,omitempty" validate:"omitempty,iso4217"`
	Merchant  string          `json:"merchant" validate:"required"`
	Name      string          `json:"name,omitempty"`
	Date      string          `json:"date" validate:"required,datetime=2006-01-02"`
}

type conflictDTO struct {
	Incoming createParamsDTO     `json:"incoming"`
	Existing transactionResponse `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params" validate:"required,min=1,dive"`
}

// importCSV takes a multipart form: file, account_id, currency and either a
// preset name or a JSON column mapping in "mapping".
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	budgetID, ok := respond.BudgetID(r)
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid budget id")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.Message(w, r, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	req := importer.Request{
		BudgetID:  budgetID,
		AccountID: r.FormValue("account_id"),
		Currency:  r.FormValue("currency"),
		Preset:    r.FormValue("preset"),
	}

	if raw := r.FormValue("mapping"); raw != "" {
		var layout importer.Layout
		if err := json.Unmarshal([]byte(raw), &layout); err != nil {
			respond.Message(w, r, http.StatusBadRequest, "invalid mapping: "+err.Error())
			return
		}

		req.Layout = &layout
	}

	if req.Preset == "" && req.Layout == nil {
		respond.Message(w, r, http.StatusBadRequest, "preset or mapping field is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Message(w, r, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	result, err := h.importSvc.Import(r.Context(), req, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toTxResponse(c.Existing),
			})
		}

		respond.JSON(w, r, http.StatusConflict, resp)

		return
	}

	respond.JSON(w, r, http.StatusCreated, toSuccessResponse(result.Imported))
}

// confirmImport stores rows the client reviewed after a conflict, without
// duplicate detection.
func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	budgetID, ok := respond.BudgetID(r)
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid budget id")
		return
	}

	var req confirmRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	params := make([]transaction.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		date, _ := time.Parse(time.DateOnly, p.Date)

		params = append(params, transaction.CreateParams{
			BudgetID:  budgetID,
			AccountID: p.AccountID,
			Date:      date,
			Amount:    p.Amount,
			Currency:  p.Currency,
			Merchant:  p.Merchant,
			Name:      p.Name,
		})
	}

	txs, err := h.txSvc.CreateBatch(r.Context(), budgetID, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toSuccessResponse(txs))
}

func (h *Handler) presets(w http.ResponseWriter, r *http.Request) {
	out := make(map[string][]importer.Layout, len(importer.Presets))
	for _, name := range importer.PresetNames() {
		out[name] = importer.Presets[name]
	}

	respond.JSON(w, r, http.StatusOK, out)
}

func toSuccessResponse(txs []*transaction.Transaction) importSuccessResponse {
	responses := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, toTxResponse(tx))
	}

	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: responses,
	}
}

func toTxResponse(tx *transaction.Transaction) transactionResponse {
	if tx == nil {
		return transactionResponse{}
	}

	return transactionResponse{
		ID:        tx.ID,
		UserTxID:  tx.UserTxID,
		AccountID: tx.AccountID,
		Amount:    tx.Amount,
		Merchant:  tx.Merchant,
		Date:      tx.Date.Format(time.DateOnly),
	}
}

func toParamsDTO(p transaction.CreateParams) createParamsDTO {
	return createParamsDTO{
		AccountID: p.AccountID,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Merchant:  p.Merchant,
		Name:      p.Name,
		Date:      p.Date.Format(time.DateOnly),
	}
}
