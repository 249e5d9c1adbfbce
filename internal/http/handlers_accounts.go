package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type createAccountRequest struct {
	UserID   int64            `json:"userId"`
	Name     string           `json:"name"`
	Currency string           `json:"currency"`
	Balance  *decimal.Decimal `json:"balance"`
}

type updateAccountRequest struct {
	Name     *string          `json:"name"`
	Currency *string          `json:"currency"`
	Balance  *decimal.Decimal `json:"balance"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	// The owner may arrive as a query parameter instead of a body field.
	if req.UserID == 0 && r.URL.Query().Get("userId") != "" {
		id, err := queryID(r, "userId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.UserID = id
	}

	account := core.Account{
		UserID:   req.UserID,
		Name:     req.Name,
		Currency: strings.ToUpper(strings.TrimSpace(req.Currency)),
	}
	if req.Balance != nil {
		account.Balance = *req.Balance
	}

	created, err := s.store.CreateAccount(r.Context(), account)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	account, err := s.store.GetAccount(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// handleAccountSubpath splits the two-segment account routes that ServeMux
// cannot rank against each other: /user/{userId} and /{id}/with-transactions
// both match /api/accounts/user/with-transactions.
func (s *Server) handleAccountSubpath(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	switch {
	case first == "user":
		s.listAccountsByUser(w, r, second)
	case second == "with-transactions":
		s.getAccountWithTransactions(w, r, first)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) getAccountWithTransactions(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := segmentID("id", rawID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	account, err := s.store.GetAccountWithTransactions(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeAccounts(w, accounts)
}

func (s *Server) listAccountsByUser(w http.ResponseWriter, r *http.Request, rawID string) {
	userID, err := segmentID("userId", rawID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	accounts, err := s.store.ListAccountsByUser(r.Context(), userID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeAccounts(w, accounts)
}

func (s *Server) handleSearchAccounts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name parameter")
		return
	}
	accounts, err := s.store.SearchAccountsByName(r.Context(), userID, name)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeAccounts(w, accounts)
}

func (s *Server) handleListAccountsByCurrency(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(r.PathValue("currency")))
	accounts, err := s.store.ListAccountsByCurrency(r.Context(), userID, currency)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeAccounts(w, accounts)
}

func (s *Server) handleLowBalanceAccounts(w http.ResponseWriter, r *http.Request) {
	s.handleBalanceThreshold(w, r, false)
}

func (s *Server) handleHighBalanceAccounts(w http.ResponseWriter, r *http.Request) {
	s.handleBalanceThreshold(w, r, true)
}

func (s *Server) handleBalanceThreshold(w http.ResponseWriter, r *http.Request, above bool) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	threshold, err := parseThreshold(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	accounts, err := s.store.ListAccountsByBalance(r.Context(), userID, threshold, above)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeAccounts(w, accounts)
}

func (s *Server) handleTotalBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	total, err := s.store.TotalBalance(r.Context(), userID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"totalBalance": total})
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updateAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	account, err := s.store.UpdateAccount(r.Context(), id, core.AccountUpdate{
		Name:     req.Name,
		Currency: req.Currency,
		Balance:  req.Balance,
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.DeleteAccount(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeAccounts(w http.ResponseWriter, accounts []core.Account) {
	if accounts == nil {
		accounts = []core.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}
