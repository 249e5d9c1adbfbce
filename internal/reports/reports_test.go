package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// stubStore answers aggregate queries from an in-memory transaction list.
type stubStore struct {
	storage.TransactionStore
	txs []stubTx
}

type stubTx struct {
	amount     decimal.Decimal
	date       core.Date
	categoryID int64
}

func tx(amount string, date core.Date, categoryID int64) stubTx {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	return stubTx{amount: d, date: date, categoryID: categoryID}
}

func (s *stubStore) SumAmounts(_ context.Context, _ int64, start, end core.Date, sign storage.AmountSign) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, t := range s.txs {
		if t.date.Before(start.Time) || t.date.After(end.Time) {
			continue
		}
		switch sign {
		case storage.PositiveOnly:
			if t.amount.Sign() <= 0 {
				continue
			}
		case storage.NegativeOnly:
			if t.amount.Sign() >= 0 {
				continue
			}
		}
		total = total.Add(t.amount)
	}
	return total, nil
}

func (s *stubStore) SumByCategory(_ context.Context, _ int64, categoryID int64, start, end core.Date) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, t := range s.txs {
		if t.categoryID != categoryID {
			continue
		}
		if t.date.Before(start.Time) || t.date.After(end.Time) {
			continue
		}
		total = total.Add(t.amount)
	}
	return total, nil
}

func (s *stubStore) CountTransactionsByUser(context.Context, int64) (int64, error) {
	return int64(len(s.txs)), nil
}

func testEngine() *Engine {
	return NewEngine(&stubStore{txs: []stubTx{
		tx("1000.00", core.NewDate(2024, 10, 1), 1),
		tx("-250.00", core.NewDate(2024, 10, 15), 2),
		tx("-75.00", core.NewDate(2024, 11, 1), 2),
	}})
}

func TestMonthly(t *testing.T) {
	tests := []struct {
		name    string
		month   int
		income  string
		expense string
		net     string
	}{
		{"income and expense", 10, "1000", "250", "750"},
		{"expense only", 11, "0", "75", "-75"},
		{"empty month", 12, "0", "0", "0"},
	}

	e := testEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := e.Monthly(context.Background(), 1, 2024, tt.month)
			if err != nil {
				t.Fatalf("Monthly() error = %v", err)
			}
			if r.Month != tt.month || r.Year != 2024 {
				t.Errorf("period = %d/%d, want %d/2024", r.Month, r.Year, tt.month)
			}
			if r.TotalIncome.String() != tt.income {
				t.Errorf("income = %s, want %s", r.TotalIncome, tt.income)
			}
			if r.TotalExpense.String() != tt.expense {
				t.Errorf("expense = %s, want %s", r.TotalExpense, tt.expense)
			}
			if r.NetAmount.String() != tt.net {
				t.Errorf("net = %s, want %s", r.NetAmount, tt.net)
			}
		})
	}
}

func TestMonthlyValidation(t *testing.T) {
	e := testEngine()
	if _, err := e.Monthly(context.Background(), 1, 2024, 0); err != ErrInvalidMonth {
		t.Errorf("month 0: error = %v, want ErrInvalidMonth", err)
	}
	if _, err := e.Monthly(context.Background(), 1, 2024, 13); err != ErrInvalidMonth {
		t.Errorf("month 13: error = %v, want ErrInvalidMonth", err)
	}
	if _, err := e.Monthly(context.Background(), 1, 0, 5); err != ErrInvalidYear {
		t.Errorf("year 0: error = %v, want ErrInvalidYear", err)
	}
}

func TestMonthWindowEnds(t *testing.T) {
	tests := []struct {
		year, month int
		end         string
	}{
		{2024, 2, "2024-02-29"},
		{2023, 2, "2023-02-28"},
		{2024, 4, "2024-04-30"},
		{2024, 12, "2024-12-31"},
	}
	for _, tt := range tests {
		_, end := monthWindow(tt.year, tt.month)
		if end.String() != tt.end {
			t.Errorf("monthWindow(%d, %d) end = %s, want %s", tt.year, tt.month, end, tt.end)
		}
	}
}

func TestYearly(t *testing.T) {
	e := testEngine()
	r, err := e.Yearly(context.Background(), 1, 2024)
	if err != nil {
		t.Fatalf("Yearly() error = %v", err)
	}
	if r.TotalIncome.String() != "1000" {
		t.Errorf("income = %s, want 1000", r.TotalIncome)
	}
	if r.TotalExpense.String() != "325" {
		t.Errorf("expense = %s, want 325", r.TotalExpense)
	}
	if r.NetAmount.String() != "675" {
		t.Errorf("net = %s, want 675", r.NetAmount)
	}
}

func TestCategory(t *testing.T) {
	e := testEngine()
	r, err := e.Category(context.Background(), 1, 2, core.NewDate(2024, 10, 1), core.NewDate(2024, 11, 30))
	if err != nil {
		t.Fatalf("Category() error = %v", err)
	}
	if r.Total.String() != "-325" {
		t.Errorf("total = %s, want -325", r.Total)
	}

	_, err = e.Category(context.Background(), 1, 2, core.NewDate(2024, 12, 1), core.NewDate(2024, 11, 1))
	if err != ErrInvalidRange {
		t.Errorf("inverted range: error = %v, want ErrInvalidRange", err)
	}
}

func TestDashboard(t *testing.T) {
	e := testEngine()
	now := time.Date(2024, 10, 20, 12, 0, 0, 0, time.UTC)

	r, err := e.Dashboard(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if r.Month != 10 || r.Year != 2024 {
		t.Errorf("period = %d/%d, want 10/2024", r.Month, r.Year)
	}
	if r.CurrentMonth.Net.String() != "750" {
		t.Errorf("month net = %s, want 750", r.CurrentMonth.Net)
	}
	if r.CurrentYear.Net.String() != "675" {
		t.Errorf("year net = %s, want 675", r.CurrentYear.Net)
	}
	if r.TotalTransactions != 3 {
		t.Errorf("total transactions = %d, want 3", r.TotalTransactions)
	}
}
