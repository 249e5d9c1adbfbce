package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const transactionSelect = "SELECT t.id, t.account_id, t.category_id, t.amount_cents, t.description, " +
	"t.transaction_date, t.notes, t.currency, t.created_at, t.updated_at FROM transactions t"

// sortColumns maps API sort keys onto columns. Keys outside this map never
// reach the query builder; ParseSortField already rejected them.
var sortColumns = map[core.SortField]string{
	core.SortByDate:        "t.transaction_date",
	core.SortByAmount:      "t.amount_cents",
	core.SortByCreatedAt:   "t.created_at",
	core.SortByDescription: "t.description",
	core.SortByID:          "t.id",
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t     core.Transaction
		cents int64
		date  string
	)
	err := row.Scan(&t.ID, &t.AccountID, &t.CategoryID, &cents, &t.Description,
		&date, &t.Notes, &t.Currency, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Amount = core.FromCents(cents)
	t.TransactionDate, err = core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d date: %w", t.ID, err)
	}
	return t, nil
}

func (s *SQLiteStore) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	accountExists, err := s.exists(ctx, "SELECT 1 FROM accounts WHERE id = ?", t.AccountID)
	if err != nil {
		return core.Transaction{}, err
	}
	if !accountExists {
		return core.Transaction{}, fmt.Errorf("account %d: %w", t.AccountID, ErrRefNotFound)
	}
	if t.CategoryID != nil {
		categoryExists, err := s.exists(ctx, "SELECT 1 FROM categories WHERE id = ?", *t.CategoryID)
		if err != nil {
			return core.Transaction{}, err
		}
		if !categoryExists {
			return core.Transaction{}, fmt.Errorf("category %d: %w", *t.CategoryID, ErrRefNotFound)
		}
	}

	cents, err := core.ToCents(t.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	ts := now()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions (account_id, category_id, amount_cents, description, transaction_date, notes, currency, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.AccountID, t.CategoryID, cents, t.Description, t.TransactionDate.String(), t.Notes, t.Currency, ts, ts)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	t.CreatedAt, t.UpdatedAt = ts, ts

	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID, "account_id", t.AccountID, "amount", t.Amount.String(), "date", t.TransactionDate.String())
	return t, nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx, transactionSelect+" WHERE t.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, id int64, upd core.TransactionUpdate) (core.Transaction, error) {
	t, err := s.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if upd.Amount != nil {
		t.Amount = *upd.Amount
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.TransactionDate != nil {
		t.TransactionDate = *upd.TransactionDate
	}
	if upd.Notes != nil {
		t.Notes = *upd.Notes
	}
	if upd.Currency != nil {
		t.Currency = *upd.Currency
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	cents, err := core.ToCents(t.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	t.UpdatedAt = now()
	_, err = s.db.ExecContext(ctx,
		"UPDATE transactions SET amount_cents = ?, description = ?, transaction_date = ?, notes = ?, currency = ?, updated_at = ? WHERE id = ?",
		cents, t.Description, t.TransactionDate.String(), t.Notes, t.Currency, t.UpdatedAt, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// filterClause builds the WHERE clause for a combined filter. Predicates for
// nil fields are skipped, the rest are ANDed together.
func filterClause(f core.TransactionFilter) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	if f.UserID != 0 {
		conds = append(conds, "a.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.AccountID != nil {
		conds = append(conds, "t.account_id = ?")
		args = append(args, *f.AccountID)
	}
	if f.CategoryID != nil {
		conds = append(conds, "t.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.StartDate != nil {
		conds = append(conds, "t.transaction_date >= ?")
		args = append(args, f.StartDate.String())
	}
	if f.EndDate != nil {
		conds = append(conds, "t.transaction_date <= ?")
		args = append(args, f.EndDate.String())
	}
	if f.MinAmount != nil {
		cents, err := core.ToCents(*f.MinAmount)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, "t.amount_cents >= ?")
		args = append(args, cents)
	}
	if f.MaxAmount != nil {
		cents, err := core.ToCents(*f.MaxAmount)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, "t.amount_cents <= ?")
		args = append(args, cents)
	}
	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, f core.TransactionFilter, page core.PageRequest, sort core.Sort) (core.Page[core.Transaction], error) {
	where, args, err := filterClause(f)
	if err != nil {
		return core.Page[core.Transaction]{}, err
	}

	join := ""
	if f.UserID != 0 {
		join = " JOIN accounts a ON a.id = t.account_id"
	}

	var total int64
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions t"+join+where, args...).Scan(&total)
	if err != nil {
		return core.Page[core.Transaction]{}, fmt.Errorf("count transactions: %w", err)
	}

	column, ok := sortColumns[sort.Field]
	if !ok {
		return core.Page[core.Transaction]{}, core.ErrInvalidSortField
	}
	direction := "DESC"
	if sort.Direction == core.SortAsc {
		direction = "ASC"
	}
	order := fmt.Sprintf(" ORDER BY %s %s, t.id DESC", column, direction)

	query := transactionSelect + join + where + order + " LIMIT ? OFFSET ?"
	txs, err := s.queryTransactions(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return core.Page[core.Transaction]{}, err
	}
	return core.NewPage(txs, total, page), nil
}

func (s *SQLiteStore) ListRecentTransactions(ctx context.Context, userID int64, size int) ([]core.Transaction, error) {
	return s.queryTransactions(ctx,
		transactionSelect+" JOIN accounts a ON a.id = t.account_id WHERE a.user_id = ?"+
			" ORDER BY t.transaction_date DESC, t.created_at DESC LIMIT ?",
		userID, size)
}

func (s *SQLiteStore) SearchTransactions(ctx context.Context, userID int64, description string, page core.PageRequest) (core.Page[core.Transaction], error) {
	where := " JOIN accounts a ON a.id = t.account_id WHERE a.user_id = ? AND t.description LIKE ?"
	pattern := "%" + description + "%"

	var total int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions t"+where, userID, pattern).Scan(&total)
	if err != nil {
		return core.Page[core.Transaction]{}, fmt.Errorf("count transactions: %w", err)
	}

	txs, err := s.queryTransactions(ctx,
		transactionSelect+where+" ORDER BY t.transaction_date DESC, t.id DESC LIMIT ? OFFSET ?",
		userID, pattern, page.Size, page.Offset())
	if err != nil {
		return core.Page[core.Transaction]{}, err
	}
	return core.NewPage(txs, total, page), nil
}

func (s *SQLiteStore) CountTransactionsByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions t JOIN accounts a ON a.id = t.account_id WHERE a.user_id = ?",
		userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) SumAmounts(ctx context.Context, userID int64, start, end core.Date, sign AmountSign) (decimal.Decimal, error) {
	query := "SELECT COALESCE(SUM(t.amount_cents), 0) FROM transactions t" +
		" JOIN accounts a ON a.id = t.account_id" +
		" WHERE a.user_id = ? AND t.transaction_date BETWEEN ? AND ?"
	switch sign {
	case PositiveOnly:
		query += " AND t.amount_cents > 0"
	case NegativeOnly:
		query += " AND t.amount_cents < 0"
	}

	var cents int64
	err := s.db.QueryRowContext(ctx, query, userID, start.String(), end.String()).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum amounts: %w", err)
	}
	return core.FromCents(cents), nil
}

func (s *SQLiteStore) SumByCategory(ctx context.Context, userID, categoryID int64, start, end core.Date) (decimal.Decimal, error) {
	var cents int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(t.amount_cents), 0) FROM transactions t"+
			" JOIN accounts a ON a.id = t.account_id"+
			" WHERE a.user_id = ? AND t.category_id = ? AND t.transaction_date BETWEEN ? AND ?",
		userID, categoryID, start.String(), end.String()).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum by category: %w", err)
	}
	return core.FromCents(cents), nil
}

func (s *SQLiteStore) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
