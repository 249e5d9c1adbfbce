package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "fintrack-test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		Port:               "0",
		SQLiteDBPath:       "unused",
		AllowedOrigins:     []string{"*"},
		RateLimitPerMinute: 10000,
	}
	return NewServer(cfg, store, services.NewTransactionService(store, nil))
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func createTestUser(t *testing.T, s *Server) core.User {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/users", map[string]string{
		"email":     "ada@example.com",
		"password":  "hunter2hunter2",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user status = %d: %s", rec.Code, rec.Body.String())
	}
	return decodeResponse[core.User](t, rec)
}

func createTestAccount(t *testing.T, s *Server, userID int64) core.Account {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/accounts", map[string]any{
		"userId":   userID,
		"name":     "Checking",
		"currency": "EUR",
		"balance":  "100.00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account status = %d: %s", rec.Code, rec.Body.String())
	}
	return decodeResponse[core.Account](t, rec)
}

func TestCreateUser(t *testing.T) {
	s := newTestServer(t)
	u := createTestUser(t, s)

	if u.ID == 0 {
		t.Error("user ID should be assigned")
	}
	if u.Email != "ada@example.com" {
		t.Errorf("email = %q", u.Email)
	}

	// The hash must never leak through the JSON surface.
	rec := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/users/%d", u.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get user status = %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("password")) {
		t.Errorf("response leaks password material: %s", rec.Body.String())
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	createTestUser(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/users", map[string]string{
		"email":    "ada@example.com",
		"password": "hunter2hunter2",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate email status = %d, want 409", rec.Code)
	}
}

func TestCreateUserMissingEmail(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/users", map[string]string{
		"password": "hunter2hunter2",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/users/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateUserPartial(t *testing.T) {
	s := newTestServer(t)
	u := createTestUser(t, s)

	rec := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/users/%d", u.ID), map[string]string{
		"firstName": "Augusta",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeResponse[core.User](t, rec)
	if updated.FirstName != "Augusta" || updated.LastName != "Lovelace" {
		t.Errorf("partial update produced %q %q", updated.FirstName, updated.LastName)
	}
}

func TestCreateAccountForMissingUser(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/accounts", map[string]any{
		"userId":   999,
		"name":     "Checking",
		"currency": "EUR",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing owner", rec.Code)
	}
}

func TestAccountBalanceEndpoints(t *testing.T) {
	s := newTestServer(t)
	u := createTestUser(t, s)
	createTestAccount(t, s, u.ID)

	rec := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/accounts/user/%d/total-balance", u.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("total-balance status = %d", rec.Code)
	}
	body := decodeResponse[map[string]string](t, rec)
	if body["totalBalance"] != "100" {
		t.Errorf("totalBalance = %q, want 100", body["totalBalance"])
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/accounts/user/%d/low-balance?threshold=500", u.ID), nil)
	accounts := decodeResponse[[]core.Account](t, rec)
	if len(accounts) != 1 {
		t.Errorf("low-balance returned %d accounts, want 1", len(accounts))
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/accounts/user/%d/high-balance?threshold=500", u.ID), nil)
	accounts = decodeResponse[[]core.Account](t, rec)
	if len(accounts) != 0 {
		t.Errorf("high-balance returned %d accounts, want 0", len(accounts))
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/accounts/user/%d/low-balance", u.ID), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing threshold status = %d, want 400", rec.Code)
	}
}

func TestAccountSubpathRoutes(t *testing.T) {
	s := newTestServer(t)
	u := createTestUser(t, s)
	a := createTestAccount(t, s, u.ID)

	rec := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/accounts/user/%d", u.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list by user status = %d: %s", rec.Code, rec.Body.String())
	}
	accounts := decodeResponse[[]core.Account](t, rec)
	if len(accounts) != 1 {
		t.Errorf("list by user returned %d accounts, want 1", len(accounts))
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/accounts/%d/with-transactions", a.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("with-transactions status = %d: %s", rec.Code, rec.Body.String())
	}

	// The path both patterns would claim: "user" wins, and the second
	// segment is not a valid user ID.
	rec = doJSON(t, s, http.MethodGet, "/api/accounts/user/with-transactions", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("ambiguous path status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/accounts/%d/bogus", a.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown subpath status = %d, want 404", rec.Code)
	}
}

func TestCategorySubpathRoutes(t *testing.T) {
	s := newTestServer(t)
	u := createTestUser(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/categories", map[string]any{
		"userId": u.ID,
		"name":   "Salary",
		"type":   "INCOME",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category status = %d: %s", rec.Code, rec.Body.String())
	}
	c := decodeResponse[core.Category](t, rec)

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/categories/user/%d", u.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list by user status = %d: %s", rec.Code, rec.Body.String())
	}
	categories := decodeResponse[[]core.Category](t, rec)
	if len(categories) != 1 {
		t.Errorf("list by user returned %d categories, want 1", len(categories))
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/categories/%d/with-transactions", c.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("with-transactions status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCategoryLifecycle(t *testing.T) {
	s := newTestServer(t)
	u := createTestUser(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/categories", map[string]any{
		"userId": u.ID,
		"name":   "Groceries",
		"type":   "expense",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category status = %d: %s", rec.Code, rec.Body.String())
	}
	c := decodeResponse[core.Category](t, rec)
	if c.Type != core.CategoryExpense {
		t.Errorf("type = %q, want EXPENSE (parsed case-insensitively)", c.Type)
	}
	if c.Color != "#6B7280" || c.Icon != "folder" {
		t.Errorf("defaults not applied: color=%q icon=%q", c.Color, c.Icon)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/categories", map[string]any{
		"userId": u.ID,
		"name":   "Weird",
		"type":   "INVESTMENT",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown type status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/categories/user/%d/count/EXPENSE", u.ID), nil)
	count := decodeResponse[map[string]int64](t, rec)
	if count["count"] != 1 {
		t.Errorf("count = %d, want 1", count["count"])
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/categories/user/%d/expense", u.ID), nil)
	expense := decodeResponse[[]core.Category](t, rec)
	if len(expense) != 1 {
		t.Errorf("expense shortcut returned %d categories, want 1", len(expense))
	}
	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/categories/user/%d/income", u.ID), nil)
	income := decodeResponse[[]core.Category](t, rec)
	if len(income) != 0 {
		t.Errorf("income shortcut returned %d categories, want 0", len(income))
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t)
	u := createTestUser(t, s)
	a := createTestAccount(t, s, u.ID)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"accountId":       a.ID,
		"amount":          "-12.50",
		"description":     "groceries",
		"transactionDate": "2024-10-01",
		"currency":        "EUR",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction status = %d: %s", rec.Code, rec.Body.String())
	}
	tx := decodeResponse[core.Transaction](t, rec)
	if tx.Amount.StringFixed(2) != "-12.50" {
		t.Errorf("amount = %s, want -12.50", tx.Amount)
	}

	rec = doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/transactions/%d", tx.ID), map[string]any{
		"description": "weekly groceries",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeResponse[core.Transaction](t, rec)
	if updated.Description != "weekly groceries" {
		t.Errorf("description = %q", updated.Description)
	}
	if updated.Amount.StringFixed(2) != "-12.50" {
		t.Errorf("amount changed on partial update: %s", updated.Amount)
	}

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", tx.ID), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d, want 200", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/transactions/%d", tx.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t)
	u := createTestUser(t, s)
	a := createTestAccount(t, s, u.ID)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"zero amount", map[string]any{
			"accountId": a.ID, "amount": "0", "description": "x",
			"transactionDate": "2024-10-01", "currency": "EUR",
		}},
		{"three decimal places", map[string]any{
			"accountId": a.ID, "amount": "1.005", "description": "x",
			"transactionDate": "2024-10-01", "currency": "EUR",
		}},
		{"empty description", map[string]any{
			"accountId": a.ID, "amount": "1.00", "description": "  ",
			"transactionDate": "2024-10-01", "currency": "EUR",
		}},
		{"bad date", map[string]any{
			"accountId": a.ID, "amount": "1.00", "description": "x",
			"transactionDate": "01/10/2024", "currency": "EUR",
		}},
		{"missing account", map[string]any{
			"accountId": 999, "amount": "1.00", "description": "x",
			"transactionDate": "2024-10-01", "currency": "EUR",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListTransactionsPaged(t *testing.T) {
	s := newTestServer(t)
	u := createTestUser(t, s)
	a := createTestAccount(t, s, u.ID)

	for i := 1; i <= 5; i++ {
		rec := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
			"accountId":       a.ID,
			"amount":          fmt.Sprintf("-%d.00", i),
			"description":     fmt.Sprintf("entry %d", i),
			"transactionDate": fmt.Sprintf("2024-10-%02d", i),
			"currency":        "EUR",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed %d failed: %s", i, rec.Body.String())
		}
	}

	rec := doJSON(t, s, http.MethodGet,
		fmt.Sprintf("/api/transactions/user/%d?page=0&size=2", u.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d: %s", rec.Code, rec.Body.String())
	}
	page := decodeResponse[core.Page[core.Transaction]](t, rec)
	if page.TotalElements != 5 || page.TotalPages != 3 || len(page.Content) != 2 {
		t.Errorf("page = {total %d, pages %d, content %d}, want {5, 3, 2}",
			page.TotalElements, page.TotalPages, len(page.Content))
	}
	// Default sort: newest date first.
	if page.Content[0].TransactionDate.String() != "2024-10-05" {
		t.Errorf("first entry date = %s, want 2024-10-05", page.Content[0].TransactionDate)
	}

	rec = doJSON(t, s, http.MethodGet,
		fmt.Sprintf("/api/transactions/user/%d?sortBy=nonsense", u.ID), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid sortBy status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet,
		fmt.Sprintf("/api/transactions/user/%d?startDate=2024-10-02&endDate=2024-10-04", u.ID), nil)
	page = decodeResponse[core.Page[core.Transaction]](t, rec)
	if page.TotalElements != 3 {
		t.Errorf("date-filtered total = %d, want 3", page.TotalElements)
	}

	// The unscoped listing pages over everything when userId is absent.
	rec = doJSON(t, s, http.MethodGet, "/api/transactions?size=3", nil)
	page = decodeResponse[core.Page[core.Transaction]](t, rec)
	if page.TotalElements != 5 || len(page.Content) != 3 {
		t.Errorf("unscoped page = {total %d, content %d}, want {5, 3}",
			page.TotalElements, len(page.Content))
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/transactions/account/%d", a.ID), nil)
	page = decodeResponse[core.Page[core.Transaction]](t, rec)
	if page.TotalElements != 5 {
		t.Errorf("by-account total = %d, want 5", page.TotalElements)
	}

	rec = doJSON(t, s, http.MethodGet,
		fmt.Sprintf("/api/transactions/search?userId=%d&description=entry+3", u.ID), nil)
	page = decodeResponse[core.Page[core.Transaction]](t, rec)
	if page.TotalElements != 1 {
		t.Errorf("search total = %d, want 1", page.TotalElements)
	}

	// Recent defaults to the 5 newest and pages like any other listing.
	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/transactions/user/%d/recent", u.ID), nil)
	page = decodeResponse[core.Page[core.Transaction]](t, rec)
	if len(page.Content) != 5 || page.Size != 5 || page.TotalElements != 5 {
		t.Errorf("recent page = {content %d, size %d, total %d}, want {5, 5, 5}",
			len(page.Content), page.Size, page.TotalElements)
	}

	rec = doJSON(t, s, http.MethodGet,
		fmt.Sprintf("/api/transactions/user/%d/recent?size=2", u.ID), nil)
	page = decodeResponse[core.Page[core.Transaction]](t, rec)
	if len(page.Content) != 2 {
		t.Fatalf("recent size=2 returned %d entries, want 2", len(page.Content))
	}
	if page.Content[0].TransactionDate.String() != "2024-10-05" {
		t.Errorf("recent first date = %s, want 2024-10-05", page.Content[0].TransactionDate)
	}
}

func TestMonthlyReportEndpoint(t *testing.T) {
	s := newTestServer(t)
	u := createTestUser(t, s)
	a := createTestAccount(t, s, u.ID)

	seed := []struct{ amount, date string }{
		{"1000.00", "2024-10-01"},
		{"-250.00", "2024-10-15"},
		{"-75.00", "2024-11-01"},
	}
	for _, tx := range seed {
		rec := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
			"accountId":       a.ID,
			"amount":          tx.amount,
			"description":     "seed",
			"transactionDate": tx.date,
			"currency":        "EUR",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed failed: %s", rec.Body.String())
		}
	}

	rec := doJSON(t, s, http.MethodGet,
		fmt.Sprintf("/api/reports/monthly?userId=%d&year=2024&month=10", u.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("monthly status = %d: %s", rec.Code, rec.Body.String())
	}
	report := decodeResponse[core.MonthlyReport](t, rec)
	if report.TotalIncome.String() != "1000" {
		t.Errorf("income = %s, want 1000", report.TotalIncome)
	}
	if report.TotalExpense.String() != "250" {
		t.Errorf("expense = %s, want 250", report.TotalExpense)
	}
	if report.NetAmount.String() != "750" {
		t.Errorf("net = %s, want 750", report.NetAmount)
	}

	rec = doJSON(t, s, http.MethodGet,
		fmt.Sprintf("/api/reports/monthly?userId=%d&year=2024&month=13", u.ID), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("month 13 status = %d, want 400", rec.Code)
	}

	// year and month are required, never defaulted.
	badParams := []string{
		fmt.Sprintf("/api/reports/monthly?userId=%d", u.ID),
		fmt.Sprintf("/api/reports/monthly?userId=%d&year=abc&month=x", u.ID),
		fmt.Sprintf("/api/reports/monthly?userId=%d&year=2024", u.ID),
		fmt.Sprintf("/api/reports/yearly?userId=%d", u.ID),
		fmt.Sprintf("/api/reports/yearly?userId=%d&year=abc", u.ID),
	}
	for _, path := range badParams {
		rec = doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", path, rec.Code)
		}
	}

	rec = doJSON(t, s, http.MethodGet,
		fmt.Sprintf("/api/reports/yearly?userId=%d&year=2024", u.ID), nil)
	yearly := decodeResponse[core.YearlyReport](t, rec)
	if yearly.NetAmount.String() != "675" {
		t.Errorf("yearly net = %s, want 675", yearly.NetAmount)
	}

	rec = doJSON(t, s, http.MethodGet,
		fmt.Sprintf("/api/reports/dashboard?userId=%d", u.ID), nil)
	dashboard := decodeResponse[core.DashboardReport](t, rec)
	if dashboard.TotalTransactions != 3 {
		t.Errorf("dashboard total transactions = %d, want 3", dashboard.TotalTransactions)
	}
}

func TestDeleteUserCascadesOverHTTP(t *testing.T) {
	s := newTestServer(t)
	u := createTestUser(t, s)
	a := createTestAccount(t, s, u.ID)

	rec := doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/users/%d", u.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete user status = %d, want 200", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/accounts/%d", a.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("account after cascade status = %d, want 404", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d: %s", rec.Code, rec.Body.String())
	}
}
