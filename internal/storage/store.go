// Package storage persists the domain model in SQLite and exposes typed
// store contracts per entity. The entity set is closed and small, so each
// store has concrete method signatures instead of a generic repository.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var (
	// ErrNotFound reports that the requested entity id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a uniqueness violation (email, per-user name).
	ErrConflict = errors.New("already exists")
	// ErrRefNotFound reports that a referenced entity is missing when
	// creating a dependent one. It is a validation failure of the request,
	// distinct from ErrNotFound on the entity being operated on.
	ErrRefNotFound = errors.New("referenced entity not found")
)

// AmountSign restricts an aggregate sum to one side of zero.
type AmountSign int

const (
	AnySign AmountSign = iota
	PositiveOnly
	NegativeOnly
)

type UserStore interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	GetUserWithAccounts(ctx context.Context, id int64) (core.User, error)
	GetUserWithCategories(ctx context.Context, id int64) (core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
	SearchUsersByName(ctx context.Context, name string) ([]core.User, error)
	UpdateUser(ctx context.Context, id int64, upd core.UserUpdate) (core.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type AccountStore interface {
	CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
	GetAccount(ctx context.Context, id int64) (core.Account, error)
	GetAccountWithTransactions(ctx context.Context, id int64) (core.Account, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
	ListAccountsByUser(ctx context.Context, userID int64) ([]core.Account, error)
	SearchAccountsByName(ctx context.Context, userID int64, name string) ([]core.Account, error)
	ListAccountsByCurrency(ctx context.Context, userID int64, currency string) ([]core.Account, error)
	ListAccountsByBalance(ctx context.Context, userID int64, threshold decimal.Decimal, above bool) ([]core.Account, error)
	TotalBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	UpdateAccount(ctx context.Context, id int64, upd core.AccountUpdate) (core.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	GetCategoryWithTransactions(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListCategoriesByUser(ctx context.Context, userID int64) ([]core.Category, error)
	ListCategoriesByType(ctx context.Context, userID int64, t core.CategoryType) ([]core.Category, error)
	SearchCategoriesByName(ctx context.Context, userID int64, name string) ([]core.Category, error)
	CountCategoriesByType(ctx context.Context, userID int64, t core.CategoryType) (int64, error)
	UpdateCategory(ctx context.Context, id int64, upd core.CategoryUpdate) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, upd core.TransactionUpdate) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error

	// ListTransactions combines the optional filter predicates with AND.
	// A zero filter UserID lists across all users.
	ListTransactions(ctx context.Context, f core.TransactionFilter, page core.PageRequest, sort core.Sort) (core.Page[core.Transaction], error)
	// ListRecentTransactions orders by transaction date descending with a
	// creation-time descending tie-break so same-day rows stay deterministic.
	ListRecentTransactions(ctx context.Context, userID int64, size int) ([]core.Transaction, error)
	SearchTransactions(ctx context.Context, userID int64, description string, page core.PageRequest) (core.Page[core.Transaction], error)
	CountTransactionsByUser(ctx context.Context, userID int64) (int64, error)

	// SumAmounts totals signed amounts for a user's accounts over a date
	// window, optionally restricted to one sign. Empty windows yield an
	// exact decimal zero.
	SumAmounts(ctx context.Context, userID int64, start, end core.Date, sign AmountSign) (decimal.Decimal, error)
	// SumByCategory totals signed amounts for one user+category pair over
	// an explicit date range.
	SumByCategory(ctx context.Context, userID, categoryID int64, start, end core.Date) (decimal.Decimal, error)
}

// Store bundles all entity stores behind one persistence handle.
type Store interface {
	UserStore
	AccountStore
	CategoryStore
	TransactionStore
	Close() error
}
