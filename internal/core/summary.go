package core

import "github.com/shopspring/decimal"

type (
	// PeriodSummary aggregates signed transaction amounts over a window.
	// Expense is reported as a non-negative magnitude; Net stays signed.
	PeriodSummary struct {
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
		Net     decimal.Decimal `json:"net"`
	}

	MonthlyReport struct {
		Month        int             `json:"month"`
		Year         int             `json:"year"`
		TotalIncome  decimal.Decimal `json:"totalIncome"`
		TotalExpense decimal.Decimal `json:"totalExpense"`
		NetAmount    decimal.Decimal `json:"netAmount"`
	}

	YearlyReport struct {
		Year         int             `json:"year"`
		TotalIncome  decimal.Decimal `json:"totalIncome"`
		TotalExpense decimal.Decimal `json:"totalExpense"`
		NetAmount    decimal.Decimal `json:"netAmount"`
	}

	CategoryReport struct {
		CategoryID int64           `json:"categoryId"`
		StartDate  Date            `json:"startDate"`
		EndDate    Date            `json:"endDate"`
		Total      decimal.Decimal `json:"total"`
	}

	DashboardReport struct {
		Month             int           `json:"month"`
		Year              int           `json:"year"`
		CurrentMonth      PeriodSummary `json:"currentMonth"`
		CurrentYear       PeriodSummary `json:"currentYear"`
		TotalTransactions int64         `json:"totalTransactions"`
	}
)

// NewPeriodSummary derives a summary from the raw aggregate sums: income is
// the sum over positive amounts, expenseSigned the (negative or zero) sum
// over negative amounts. Net = income + expenseSigned.
func NewPeriodSummary(income, expenseSigned decimal.Decimal) PeriodSummary {
	return PeriodSummary{
		Income:  income,
		Expense: expenseSigned.Abs(),
		Net:     income.Add(expenseSigned),
	}
}
