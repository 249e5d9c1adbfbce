package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"

	SortByDate        SortField = "transactionDate"
	SortByAmount      SortField = "amount"
	SortByCreatedAt   SortField = "createdAt"
	SortByDescription SortField = "description"
	SortByID          SortField = "id"

	DefaultPageSize = 10
	MaxPageSize     = 100
)

var ErrInvalidSortField = errors.New("invalid sort field")

type (
	SortDirection string

	// SortField is a caller-chosen transaction ordering key. Only the named
	// constants are accepted; anything else is a bad request, never raw SQL.
	SortField string

	Sort struct {
		Field     SortField
		Direction SortDirection
	}

	// TransactionFilter combines optional predicates with logical AND.
	// A nil field does not constrain the result set.
	TransactionFilter struct {
		UserID     int64
		AccountID  *int64
		CategoryID *int64
		StartDate  *Date
		EndDate    *Date
		MinAmount  *decimal.Decimal
		MaxAmount  *decimal.Decimal
	}

	PageRequest struct {
		Number int // zero-based page index
		Size   int
	}

	Page[T any] struct {
		Content       []T   `json:"content"`
		TotalElements int64 `json:"totalElements"`
		TotalPages    int   `json:"totalPages"`
		Number        int   `json:"number"`
		Size          int   `json:"size"`
	}
)

// ParseSortField validates a freeform sort key against the whitelist.
func ParseSortField(s string) (SortField, error) {
	switch SortField(strings.TrimSpace(s)) {
	case SortByDate, SortByAmount, SortByCreatedAt, SortByDescription, SortByID:
		return SortField(strings.TrimSpace(s)), nil
	default:
		return "", ErrInvalidSortField
	}
}

// ParseSortDirection interprets a direction string, defaulting to descending.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), "asc") {
		return SortAsc
	}
	return SortDesc
}

// DefaultSort orders by transaction date, newest first.
func DefaultSort() Sort {
	return Sort{Field: SortByDate, Direction: SortDesc}
}

// NewPageRequest clamps page number and size to sane bounds.
func NewPageRequest(number, size int) PageRequest {
	if number < 0 {
		number = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{Number: number, Size: size}
}

// Offset returns the row offset for the request.
func (p PageRequest) Offset() int {
	return p.Number * p.Size
}

// NewPage assembles a page envelope from content and the total row count.
func NewPage[T any](content []T, total int64, req PageRequest) Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := int(total) / req.Size
	if int(total)%req.Size != 0 {
		pages++
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    pages,
		Number:        req.Number,
		Size:          req.Size,
	}
}
