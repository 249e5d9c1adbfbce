// Package http exposes the JSON API over stdlib net/http. Routing uses the
// method-and-pattern syntax of http.ServeMux.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/middleware/cors"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/reports"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type Server struct {
	http.Server

	store        storage.Store
	transactions *services.TransactionService
	reports      *reports.Engine
	rateLimiter  *ratelimit.Limiter

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(cfg *config.Config, store storage.Store, txService *services.TransactionService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		store:        store,
		transactions: txService,
		reports:      reports.NewEngine(store),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}),
		started: time.Now(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("GET /api/users/search", s.handleSearchUsers)
	mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)
	mux.HandleFunc("GET /api/users/{id}/with-accounts", s.handleGetUserWithAccounts)
	mux.HandleFunc("GET /api/users/{id}/with-categories", s.handleGetUserWithCategories)
	mux.HandleFunc("PUT /api/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /api/users/{id}", s.handleDeleteUser)

	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("GET /api/accounts/{id}", s.handleGetAccount)
	// /user/{userId} and /{id}/with-transactions would conflict as separate
	// patterns; one handler splits them.
	mux.HandleFunc("GET /api/accounts/{first}/{second}", s.handleAccountSubpath)
	mux.HandleFunc("GET /api/accounts/user/{userId}/search", s.handleSearchAccounts)
	mux.HandleFunc("GET /api/accounts/user/{userId}/currency/{currency}", s.handleListAccountsByCurrency)
	mux.HandleFunc("GET /api/accounts/user/{userId}/low-balance", s.handleLowBalanceAccounts)
	mux.HandleFunc("GET /api/accounts/user/{userId}/high-balance", s.handleHighBalanceAccounts)
	mux.HandleFunc("GET /api/accounts/user/{userId}/total-balance", s.handleTotalBalance)
	mux.HandleFunc("PUT /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("GET /api/categories/{first}/{second}", s.handleCategorySubpath)
	mux.HandleFunc("GET /api/categories/user/{userId}/income", s.handleListIncomeCategories)
	mux.HandleFunc("GET /api/categories/user/{userId}/expense", s.handleListExpenseCategories)
	mux.HandleFunc("GET /api/categories/user/{userId}/type/{type}", s.handleListCategoriesByType)
	mux.HandleFunc("GET /api/categories/user/{userId}/search", s.handleSearchCategories)
	mux.HandleFunc("GET /api/categories/user/{userId}/count/{type}", s.handleCountCategoriesByType)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions", s.handleListAllTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("GET /api/transactions/search", s.handleSearchTransactions)
	mux.HandleFunc("GET /api/transactions/user/{userId}", s.handleListTransactions)
	mux.HandleFunc("GET /api/transactions/user/{userId}/recent", s.handleRecentTransactions)
	mux.HandleFunc("GET /api/transactions/user/{userId}/count", s.handleCountTransactions)
	mux.HandleFunc("GET /api/transactions/account/{accountId}", s.handleListTransactionsByAccount)
	mux.HandleFunc("GET /api/transactions/category/{categoryId}", s.handleListTransactionsByCategory)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/reports/monthly", s.handleMonthlyReport)
	mux.HandleFunc("GET /api/reports/yearly", s.handleYearlyReport)
	mux.HandleFunc("GET /api/reports/category", s.handleCategoryReport)
	mux.HandleFunc("GET /api/reports/dashboard", s.handleDashboardReport)

	handler := trace.Middleware(
		cors.Middleware(cfg.AllowedOrigins)(
			s.rateLimiter.Middleware(trace.ClientIP)(mux)))

	s.Server = http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{
		"rate_limiter": map[string]any{
			"active_clients": s.rateLimiter.ActiveClients(),
		},
	}

	// A cheap query proves the database file is reachable.
	if _, err := s.store.ListUsers(ctx); err != nil {
		checks["database"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Shutdown stops the listener and the rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
