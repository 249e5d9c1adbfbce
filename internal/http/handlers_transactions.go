package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type createTransactionRequest struct {
	AccountID       int64           `json:"accountId"`
	CategoryID      *int64          `json:"categoryId"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	TransactionDate core.Date       `json:"transactionDate"`
	Notes           string          `json:"notes"`
	Currency        string          `json:"currency"`
}

type updateTransactionRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	Description     *string          `json:"description"`
	TransactionDate *core.Date       `json:"transactionDate"`
	Notes           *string          `json:"notes"`
	Currency        *string          `json:"currency"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AccountID == 0 && r.URL.Query().Get("accountId") != "" {
		id, err := queryID(r, "accountId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.AccountID = id
	}
	if req.CategoryID == nil && r.URL.Query().Get("categoryId") != "" {
		id, err := queryID(r, "categoryId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.CategoryID = &id
	}

	created, err := s.transactions.Create(r.Context(), core.Transaction{
		AccountID:       req.AccountID,
		CategoryID:      req.CategoryID,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: req.TransactionDate,
		Notes:           req.Notes,
		Currency:        strings.ToUpper(strings.TrimSpace(req.Currency)),
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx, err := s.store.GetTransaction(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := parseFilter(r, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sort, err := parseSort(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := s.store.ListTransactions(r.Context(), filter, parsePage(r), sort)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleListAllTransactions serves the unscoped listing: with a userId
// parameter it filters like the per-user listing, without one it pages over
// every transaction.
func (s *Server) handleListAllTransactions(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if v := strings.TrimSpace(r.URL.Query().Get("userId")); v != "" {
		id, err := queryID(r, "userId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		userID = id
	}
	filter, err := parseFilter(r, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sort, err := parseSort(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := s.store.ListTransactions(r.Context(), filter, parsePage(r), sort)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleListTransactionsByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := core.TransactionFilter{AccountID: &accountID}
	page, err := s.store.ListTransactions(r.Context(), filter, parsePage(r), core.DefaultSort())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleListTransactionsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "categoryId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := core.TransactionFilter{CategoryID: &categoryID}
	page, err := s.store.ListTransactions(r.Context(), filter, parsePage(r), core.DefaultSort())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	size := 5
	if v := strings.TrimSpace(r.URL.Query().Get("size")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid size parameter")
			return
		}
		if n > core.MaxPageSize {
			n = core.MaxPageSize
		}
		size = n
	}

	txs, err := s.store.ListRecentTransactions(r.Context(), userID, size)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	total, err := s.store.CountTransactionsByUser(r.Context(), userID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.NewPage(txs, total, core.PageRequest{Number: 0, Size: size}))
}

func (s *Server) handleSearchTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := queryID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	description := strings.TrimSpace(r.URL.Query().Get("description"))
	if description == "" {
		writeError(w, http.StatusBadRequest, "missing description parameter")
		return
	}

	page, err := s.store.SearchTransactions(r.Context(), userID, description, parsePage(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCountTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	count, err := s.store.CountTransactionsByUser(r.Context(), userID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updateTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	upd := core.TransactionUpdate{
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: req.TransactionDate,
		Notes:           req.Notes,
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		upd.Currency = &currency
	}

	tx, err := s.transactions.Update(r.Context(), id, upd)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.transactions.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
