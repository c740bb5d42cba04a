package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tresorier-server/src/handlers"
	"tresorier-server/src/middleware"
)

func NewRouter(pool *pgxpool.Pool, isDemo bool) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.DemoModeMiddleware(isDemo))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(pool))
		r.Post("/register", handlers.Register(pool))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			// Bank accounts
			r.Post("/accounts", handlers.CreateBankAccount(pool))
			r.Get("/accounts", handlers.GetAllBankAccounts(pool))
			r.Get("/accounts/{account_id}", handlers.GetBankAccountByID(pool))
			r.Get("/accounts/{account_id}/balance", handlers.GetBankAccountBalance(pool))
			r.Put("/accounts/{account_id}/balance", handlers.UpdateBankAccountBalance(pool))
			r.Put("/accounts/{account_id}", handlers.UpdateBankAccount(pool))
			r.Delete("/accounts/{account_id}", handlers.DeleteBankAccount(pool))

			// Categories
			r.Post("/categories", handlers.CreateCategory(pool))
			r.Get("/categories", handlers.GetAllCategories(pool))
			r.Put("/categories/{category_id}", handlers.UpdateCategory(pool))
			r.Delete("/categories/{category_id}", handlers.DeleteCategory(pool))
			r.Post("/subcategories", handlers.CreateSubcategory(pool))
			r.Put("/subcategories/{subcategory_id}", handlers.UpdateSubcategory(pool))
			r.Delete("/subcategories/{subcategory_id}", handlers.DeleteSubcategory(pool))

			// Rules
			r.Post("/rules", handlers.CreateRule(pool))
			r.Get("/rules", handlers.GetAllRules(pool))
			r.Get("/rules/{rule_id}", handlers.GetRuleByID(pool))
			r.Put("/rules/{rule_id}", handlers.UpdateRule(pool))
			r.Delete("/rules/{rule_id}", handlers.DeleteRule(pool))

			// Transactions
			r.Get("/transactions", handlers.GetAllTransactions(pool))
			r.Delete("/transactions/unassigned", handlers.DeleteUnassigned(pool))
			r.Get("/transactions/{transaction_id}", handlers.GetTransactionByID(pool))
			r.Put("/transactions/{transaction_id}", handlers.UpdateTransaction(pool))

			// Import
			r.Post("/import", handlers.ImportCSV(pool))
			r.Post("/import/confirm", handlers.ConfirmImport(pool))
			r.Post("/import/preset", handlers.ImportPreset(pool))

			// Stats
			r.Get("/stats", handlers.GetStats(pool))
			r.Get("/stats/categories", handlers.GetCategoryStats(pool))
			r.Get("/stats/sankey", handlers.GetSankeyStats(pool))
			r.Get("/stats/recurrents", handlers.GetRecurrents(pool))
			r.Get("/stats/recurrents/summary", handlers.RecurrentsSummary(pool))
			r.Get("/stats/recurrents/categories", handlers.RecurrentsCategories(pool))

			// Projection
			r.Get("/projection", handlers.Projection(pool))
			r.Get("/projection/categories/average", handlers.CategoryAverage(pool))
			r.Get("/projection/categories/forecast", handlers.CategoryForecast(pool))

			// Maintenance
			r.Post("/reset", handlers.Reset(pool))
		})
	})

	return r
}
