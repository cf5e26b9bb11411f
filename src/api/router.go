package api

import (
	"net/http"

	"cashlytic-server/src/handlers"
	"cashlytic-server/src/ledger"
	"cashlytic-server/src/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Options struct {
	JWTSecret      string
	CronSecret     string
	AllowedOrigins []string
	DemoMode       bool
	Logger         zerolog.Logger
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

func NewRouter(svc *ledger.Service, scanner handlers.ReceiptScanner, opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.CORSMiddleware(opts.AllowedOrigins))
	r.Use(middleware.DemoModeMiddleware(opts.DemoMode))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		// Scheduled jobs
		r.With(middleware.CronSecretMiddleware(opts.CronSecret)).Group(func(r chi.Router) {
			r.Post("/cron/recurring", handlers.ProcessRecurring(svc))
			r.Post("/cron/budget-alerts", handlers.CheckBudgetAlerts(svc))
		})

		// Protected routes
		r.With(middleware.JWTAuthMiddleware(opts.JWTSecret, svc)).Group(func(r chi.Router) {
			r.Get("/me", handlers.GetMe(svc))

			// Accounts
			r.Post("/accounts", handlers.CreateAccount(svc))
			r.Get("/accounts", handlers.GetAccounts(svc))
			r.Get("/accounts/{account_id}", handlers.GetAccount(svc))
			r.Put("/accounts/{account_id}/default", handlers.SetDefaultAccount(svc))

			// Transactions
			r.Post("/transactions", handlers.CreateTransaction(svc))
			r.Get("/transactions", handlers.GetTransactions(svc))
			r.Post("/transactions/bulk-delete", handlers.BulkDeleteTransactions(svc))
			r.Get("/transactions/{transaction_id}", handlers.GetTransaction(svc))
			r.Put("/transactions/{transaction_id}", handlers.UpdateTransaction(svc))
			r.Delete("/transactions/{transaction_id}", handlers.DeleteTransaction(svc))

			// Receipts
			r.Post("/receipts/scan", handlers.ScanReceipt(scanner))

			// Dashboard
			r.Get("/dashboard", handlers.GetDashboard(svc))
			r.Get("/dashboard/overview", handlers.GetMonthlyOverview(svc))

			// Budget
			r.Get("/budget", handlers.GetBudget(svc))
			r.Put("/budget", handlers.UpdateBudget(svc))
		})
	})

	return r
}
