package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryIncome  CategoryType = "INCOME"
	CategoryExpense CategoryType = "EXPENSE"
)

type (
	// CategoryType labels a category as INCOME or EXPENSE. It is a display
	// label chosen by the user; the sign of a transaction amount alone
	// decides whether money came in or went out.
	CategoryType string

	User struct {
		ID           int64     `json:"id"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		FirstName    string    `json:"firstName"`
		LastName     string    `json:"lastName"`
		CreatedAt    time.Time `json:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt"`

		// Populated only by the with-accounts / with-categories lookups.
		Accounts   []Account  `json:"accounts,omitempty"`
		Categories []Category `json:"categories,omitempty"`
	}

	Account struct {
		ID        int64           `json:"id"`
		UserID    int64           `json:"userId"`
		Name      string          `json:"name"`
		Currency  string          `json:"currency"`
		Balance   decimal.Decimal `json:"balance"`
		CreatedAt time.Time       `json:"createdAt"`
		UpdatedAt time.Time       `json:"updatedAt"`

		// Populated only by the with-transactions lookup.
		Transactions []Transaction `json:"transactions,omitempty"`
	}

	Category struct {
		ID        int64        `json:"id"`
		UserID    int64        `json:"userId"`
		Name      string       `json:"name"`
		Type      CategoryType `json:"type"`
		Color     string       `json:"color"`
		Icon      string       `json:"icon"`
		CreatedAt time.Time    `json:"createdAt"`

		Transactions []Transaction `json:"transactions,omitempty"`
	}

	Transaction struct {
		ID         int64  `json:"id"`
		AccountID  int64  `json:"accountId"`
		CategoryID *int64 `json:"categoryId"`
		// Signed amount: positive is income, negative is expense.
		Amount          decimal.Decimal `json:"amount"`
		Description     string          `json:"description"`
		TransactionDate Date            `json:"transactionDate"`
		Notes           string          `json:"notes"`
		Currency        string          `json:"currency"`
		CreatedAt       time.Time       `json:"createdAt"`
		UpdatedAt       time.Time       `json:"updatedAt"`
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyName           = errors.New("empty name")
	ErrEmptyEmail          = errors.New("empty email")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrEmptyPasswordHash   = errors.New("empty password hash")
	ErrInvalidCurrency     = errors.New("invalid currency code")
	ErrInvalidCategoryType = errors.New("invalid category type")
	ErrNameTooLong         = errors.New("name too long (max 100 characters)")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")
)

// ParseCategoryType converts a freeform string into a CategoryType.
// Unrecognized values are rejected rather than stored verbatim.
func ParseCategoryType(s string) (CategoryType, error) {
	switch CategoryType(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryIncome:
		return CategoryIncome, nil
	case CategoryExpense:
		return CategoryExpense, nil
	default:
		return "", ErrInvalidCategoryType
	}
}

func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (u User) Validate() error {
	email := strings.TrimSpace(u.Email)
	if email == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	if u.PasswordHash == "" {
		return ErrEmptyPasswordHash
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return ErrNameTooLong
	}
	if !validCurrency(a.Currency) {
		return ErrInvalidCurrency
	}
	return CheckScale(a.Balance)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return ErrNameTooLong
	}
	if !c.Type.Valid() {
		return ErrInvalidCategoryType
	}
	return nil
}

// Normalize fills in display defaults for fields the caller left empty.
func (c *Category) Normalize() {
	if strings.TrimSpace(c.Color) == "" {
		c.Color = "#6B7280"
	}
	if strings.TrimSpace(c.Icon) == "" {
		c.Icon = "folder"
	}
}

func (t Transaction) Validate() error {
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if err := CheckScale(t.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := t.TransactionDate.Validate(); err != nil {
		return err
	}
	if !validCurrency(t.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

// Partial update payloads. A nil field leaves the stored value unchanged;
// identifiers and ownership relations are immutable after creation.
type (
	UserUpdate struct {
		Email     *string
		FirstName *string
		LastName  *string
	}

	AccountUpdate struct {
		Name     *string
		Currency *string
		Balance  *decimal.Decimal
	}

	CategoryUpdate struct {
		Name  *string
		Type  *CategoryType
		Color *string
		Icon  *string
	}

	TransactionUpdate struct {
		Amount          *decimal.Decimal
		Description     *string
		TransactionDate *Date
		Notes           *string
		Currency        *string
	}
)
