package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const accountColumns = "id, user_id, name, currency, balance_cents, created_at, updated_at"

func scanAccount(row rowScanner) (core.Account, error) {
	var (
		a     core.Account
		cents int64
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Currency, &cents, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return core.Account{}, err
	}
	a.Balance = core.FromCents(cents)
	return a, nil
}

func (s *SQLiteStore) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}

	userExists, err := s.exists(ctx, "SELECT 1 FROM users WHERE id = ?", a.UserID)
	if err != nil {
		return core.Account{}, err
	}
	if !userExists {
		return core.Account{}, fmt.Errorf("user %d: %w", a.UserID, ErrRefNotFound)
	}

	taken, err := s.exists(ctx, "SELECT 1 FROM accounts WHERE user_id = ? AND name = ?", a.UserID, a.Name)
	if err != nil {
		return core.Account{}, err
	}
	if taken {
		return core.Account{}, fmt.Errorf("account name %q: %w", a.Name, ErrConflict)
	}

	cents, err := core.ToCents(a.Balance)
	if err != nil {
		return core.Account{}, err
	}

	ts := now()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO accounts (user_id, name, currency, balance_cents, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		a.UserID, a.Name, a.Currency, cents, ts, ts)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}

	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account id: %w", err)
	}
	a.CreatedAt, a.UpdatedAt = ts, ts

	slog.InfoContext(ctx, "Account created", "id", a.ID, "user_id", a.UserID, "name", a.Name)
	return a, nil
}

func (s *SQLiteStore) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) GetAccountWithTransactions(ctx context.Context, id int64) (core.Account, error) {
	a, err := s.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, err
	}
	txs, err := s.queryTransactions(ctx,
		transactionSelect+" WHERE t.account_id = ? ORDER BY t.transaction_date DESC, t.id DESC", id)
	if err != nil {
		return core.Account{}, err
	}
	a.Transactions = txs
	return a, nil
}

func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.queryAccounts(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY id")
}

func (s *SQLiteStore) ListAccountsByUser(ctx context.Context, userID int64) ([]core.Account, error) {
	return s.queryAccounts(ctx, "SELECT "+accountColumns+" FROM accounts WHERE user_id = ? ORDER BY id", userID)
}

func (s *SQLiteStore) SearchAccountsByName(ctx context.Context, userID int64, name string) ([]core.Account, error) {
	return s.queryAccounts(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE user_id = ? AND name LIKE ? ORDER BY id",
		userID, "%"+name+"%")
}

func (s *SQLiteStore) ListAccountsByCurrency(ctx context.Context, userID int64, currency string) ([]core.Account, error) {
	return s.queryAccounts(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE user_id = ? AND currency = ? ORDER BY id",
		userID, currency)
}

func (s *SQLiteStore) ListAccountsByBalance(ctx context.Context, userID int64, threshold decimal.Decimal, above bool) ([]core.Account, error) {
	cents, err := core.ToCents(threshold)
	if err != nil {
		return nil, err
	}
	cmp := "<"
	if above {
		cmp = ">"
	}
	return s.queryAccounts(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE user_id = ? AND balance_cents "+cmp+" ? ORDER BY balance_cents",
		userID, cents)
}

func (s *SQLiteStore) TotalBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var cents int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(balance_cents), 0) FROM accounts WHERE user_id = ?", userID).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total balance: %w", err)
	}
	return core.FromCents(cents), nil
}

func (s *SQLiteStore) queryAccounts(ctx context.Context, query string, args ...any) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *SQLiteStore) UpdateAccount(ctx context.Context, id int64, upd core.AccountUpdate) (core.Account, error) {
	a, err := s.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, err
	}

	if upd.Name != nil && *upd.Name != a.Name {
		taken, err := s.exists(ctx,
			"SELECT 1 FROM accounts WHERE user_id = ? AND name = ? AND id != ?", a.UserID, *upd.Name, id)
		if err != nil {
			return core.Account{}, err
		}
		if taken {
			return core.Account{}, fmt.Errorf("account name %q: %w", *upd.Name, ErrConflict)
		}
		a.Name = *upd.Name
	}
	if upd.Currency != nil {
		a.Currency = *upd.Currency
	}
	if upd.Balance != nil {
		a.Balance = *upd.Balance
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}

	cents, err := core.ToCents(a.Balance)
	if err != nil {
		return core.Account{}, err
	}

	a.UpdatedAt = now()
	_, err = s.db.ExecContext(ctx,
		"UPDATE accounts SET name = ?, currency = ?, balance_cents = ?, updated_at = ? WHERE id = ?",
		a.Name, a.Currency, cents, a.UpdatedAt, id)
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) DeleteAccount(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Account deleted", "id", id)
	return nil
}
