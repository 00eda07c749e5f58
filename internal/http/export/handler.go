package export

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finplan/internal/export"
	"github.com/MrJamesThe3rd/finplan/internal/http/respond"
	"github.com/MrJamesThe3rd/finplan/internal/logger"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
	r.Get("/{file}", h.csv)
}

// download streams every CSV of the last analysis as one zip archive.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	bundle, ok := h.load(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"analysis_%s.zip\"", bundle.Spending.AnalyzedAt.Format("20060102")))

	if err := bundle.WriteZip(w); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("failed to write zip")
	}
}

// csv serves one file, e.g. /export/tracking.csv.
func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	kind := export.Kind(strings.TrimSuffix(chi.URLParam(r, "file"), ".csv"))
	if !slices.Contains(export.Kinds, kind) {
		respond.Message(w, r, http.StatusNotFound, "unknown export file")
		return
	}

	bundle, ok := h.load(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", kind))

	if err := bundle.WriteCSV(w, kind); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("kind", string(kind)).Msg("failed to write csv")
	}
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*export.Bundle, bool) {
	budgetID, ok := respond.BudgetID(r)
	if !ok {
		respond.Message(w, r, http.StatusBadRequest, "invalid budget id")
		return nil, false
	}

	bundle, err := h.svc.Load(r.Context(), budgetID)
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	return bundle, true
}
