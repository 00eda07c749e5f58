package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/finplan/internal/http/analysis"
	"github.com/MrJamesThe3rd/finplan/internal/http/category"
	"github.com/MrJamesThe3rd/finplan/internal/http/export"
	"github.com/MrJamesThe3rd/finplan/internal/http/goal"
	"github.com/MrJamesThe3rd/finplan/internal/http/importcsv"
	mw "github.com/MrJamesThe3rd/finplan/internal/http/middleware"
	"github.com/MrJamesThe3rd/finplan/internal/http/onboarding"
	"github.com/MrJamesThe3rd/finplan/internal/http/transaction"
)

type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	// JWTSecret signs bearer tokens; an empty secret disables authentication.
	JWTSecret string
}

type Handlers struct {
	Analysis     *analysis.Handler
	Categories   *category.Handler
	Onboarding   *onboarding.Handler
	Goals        *goal.Handler
	Transactions *transaction.Handler
	Import       *importcsv.Handler
	Export       *export.Handler
}

func New(opts Options, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mw.Logger(opts.Logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1/budgets/{budgetID}", func(r chi.Router) {
		if opts.JWTSecret != "" {
			r.Use(mw.Auth([]byte(opts.JWTSecret)))
		}

		r.Route("/analysis", h.Analysis.Routes)

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Categories.Routes(r)
		})

		r.Route("/onboarding", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Onboarding.Routes(r)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Goals.Routes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/import", h.Import.Routes)
		r.Route("/export", h.Export.Routes)
	})

	return router
}
