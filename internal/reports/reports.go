// Package reports derives income/expense summaries from stored transactions.
// All math happens on aggregate sums fetched from the store, so a report is
// two or three queries regardless of how many transactions the window holds.
package reports

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

var (
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	ErrInvalidYear  = errors.New("year must be positive")
	ErrInvalidRange = errors.New("start date must not be after end date")
)

// Engine computes reports for one user at a time.
type Engine struct {
	store storage.TransactionStore
}

func NewEngine(store storage.TransactionStore) *Engine {
	return &Engine{store: store}
}

// monthWindow returns the first and last day of a calendar month. The end is
// computed by stepping to the next month and back one day, so leap years and
// 30/31-day months come out right without a lookup table.
func monthWindow(year, month int) (core.Date, core.Date) {
	start := core.NewDate(year, month, 1)
	end := core.Date{Time: start.AddDate(0, 1, -1)}
	return start, end
}

func yearWindow(year int) (core.Date, core.Date) {
	return core.NewDate(year, 1, 1), core.NewDate(year, 12, 31)
}

func (e *Engine) summarize(ctx context.Context, userID int64, start, end core.Date) (core.PeriodSummary, error) {
	income, err := e.store.SumAmounts(ctx, userID, start, end, storage.PositiveOnly)
	if err != nil {
		return core.PeriodSummary{}, err
	}
	expense, err := e.store.SumAmounts(ctx, userID, start, end, storage.NegativeOnly)
	if err != nil {
		return core.PeriodSummary{}, err
	}
	return core.NewPeriodSummary(income, expense), nil
}

// Monthly reports income, expense and net for one calendar month.
func (e *Engine) Monthly(ctx context.Context, userID int64, year, month int) (core.MonthlyReport, error) {
	if month < 1 || month > 12 {
		return core.MonthlyReport{}, ErrInvalidMonth
	}
	if year < 1 {
		return core.MonthlyReport{}, ErrInvalidYear
	}

	start, end := monthWindow(year, month)
	sum, err := e.summarize(ctx, userID, start, end)
	if err != nil {
		return core.MonthlyReport{}, err
	}
	return core.MonthlyReport{
		Month:        month,
		Year:         year,
		TotalIncome:  sum.Income,
		TotalExpense: sum.Expense,
		NetAmount:    sum.Net,
	}, nil
}

// Yearly reports income, expense and net for one calendar year.
func (e *Engine) Yearly(ctx context.Context, userID int64, year int) (core.YearlyReport, error) {
	if year < 1 {
		return core.YearlyReport{}, ErrInvalidYear
	}

	start, end := yearWindow(year)
	sum, err := e.summarize(ctx, userID, start, end)
	if err != nil {
		return core.YearlyReport{}, err
	}
	return core.YearlyReport{
		Year:         year,
		TotalIncome:  sum.Income,
		TotalExpense: sum.Expense,
		NetAmount:    sum.Net,
	}, nil
}

// Category totals the signed amounts of one category over an explicit range.
func (e *Engine) Category(ctx context.Context, userID, categoryID int64, start, end core.Date) (core.CategoryReport, error) {
	if start.After(end.Time) {
		return core.CategoryReport{}, ErrInvalidRange
	}

	total, err := e.store.SumByCategory(ctx, userID, categoryID, start, end)
	if err != nil {
		return core.CategoryReport{}, err
	}
	return core.CategoryReport{
		CategoryID: categoryID,
		StartDate:  start,
		EndDate:    end,
		Total:      total,
	}, nil
}

// Dashboard combines the current month's and year's summaries with the user's
// lifetime transaction count. "Current" is the clock's month at call time.
func (e *Engine) Dashboard(ctx context.Context, userID int64, now time.Time) (core.DashboardReport, error) {
	year, month := now.UTC().Year(), int(now.UTC().Month())

	monthStart, monthEnd := monthWindow(year, month)
	monthSum, err := e.summarize(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return core.DashboardReport{}, err
	}

	yearStart, yearEnd := yearWindow(year)
	yearSum, err := e.summarize(ctx, userID, yearStart, yearEnd)
	if err != nil {
		return core.DashboardReport{}, err
	}

	count, err := e.store.CountTransactionsByUser(ctx, userID)
	if err != nil {
		return core.DashboardReport{}, err
	}

	return core.DashboardReport{
		Month:             month,
		Year:              year,
		CurrentMonth:      monthSum,
		CurrentYear:       yearSum,
		TotalTransactions: count,
	}, nil
}
