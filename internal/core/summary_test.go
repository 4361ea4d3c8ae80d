package core

import (
	"reflect"
	"testing"
	"time"
)

func TestComputeTotals(t *testing.T) {
	if got := ComputeTotals(nil); got != (Totals{}) {
		t.Fatalf("empty totals = %+v", got)
	}

	got := ComputeTotals(sampleTransactions())
	want := Totals{
		Income:  Money{Cents: 510000},
		Expense: Money{Cents: 126550},
		Balance: Money{Cents: 383450},
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}

	// Balance is exactly Income - Expense, also when negative.
	neg := ComputeTotals([]Transaction{tx("x", Expense, 1, "Rent", "2024-01-01"), tx("y", Income, 0, "Gift", "2024-01-01")})
	if neg.Balance.Cents != neg.Income.Cents-neg.Expense.Cents || !neg.Balance.IsNegative() {
		t.Fatalf("unexpected balance %+v", neg)
	}
}

func TestMayScenario(t *testing.T) {
	txns := []Transaction{
		tx("pay", Income, 500000, "Salary", "2024-05-01"),
		tx("rent", Expense, 120000, "Rent", "2024-05-05"),
	}
	totals := ComputeTotals(txns)
	if totals.Income.String() != "5000" || totals.Expense.String() != "1200" || totals.Balance.String() != "3800" {
		t.Fatalf("unexpected totals %+v", totals)
	}
	cats := CategoryTotals(txns)
	if !reflect.DeepEqual(cats, []CategoryAmount{{Name: "Rent", Amount: Money{Cents: 120000}}}) {
		t.Fatalf("unexpected categories %+v", cats)
	}
	series := DailyExpenseSeries(txns)
	if !reflect.DeepEqual(series, []DateAmount{{Date: "2024-05-05", Amount: Money{Cents: 120000}}}) {
		t.Fatalf("unexpected series %+v", series)
	}
}

func TestCategoryTotalsFirstSeenOrder(t *testing.T) {
	txns := []Transaction{
		tx("1", Expense, 100, "Shopping", "2024-01-03"),
		tx("2", Income, 900, "Salary", "2024-01-01"),
		tx("3", Expense, 200, "Rent", "2024-01-02"),
		tx("4", Expense, 300, "Shopping", "2024-01-01"),
	}
	want := []CategoryAmount{
		{Name: "Shopping", Amount: Money{Cents: 400}},
		{Name: "Rent", Amount: Money{Cents: 200}},
	}
	if got := CategoryTotals(txns); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestDailyExpenseSeriesSorted(t *testing.T) {
	txns := []Transaction{
		tx("1", Expense, 100, "Shopping", "2024-02-10"),
		tx("2", Expense, 200, "Rent", "2023-12-31"),
		tx("3", Expense, 300, "Shopping", "2024-02-10"),
		tx("4", Income, 999, "Salary", "2024-01-01"),
	}
	want := []DateAmount{
		{Date: "2023-12-31", Amount: Money{Cents: 200}},
		{Date: "2024-02-10", Amount: Money{Cents: 400}},
	}
	if got := DailyExpenseSeries(txns); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if got := DailyExpenseSeries(nil); len(got) != 0 {
		t.Fatalf("expected empty series, got %+v", got)
	}
}

func TestCurrentMonthExpenseTotal(t *testing.T) {
	now := time.Date(2024, time.May, 20, 15, 0, 0, 0, time.UTC)
	got := CurrentMonthExpenseTotal(sampleTransactions(), now)
	// Only "b" is an expense in May 2024; "d" is May 2023.
	if got.Cents != 120000 {
		t.Fatalf("got %d", got.Cents)
	}
	if got := CurrentMonthExpenseTotal(sampleTransactions(), now.AddDate(1, 0, 0)); !got.IsZero() {
		t.Fatalf("expected zero, got %d", got.Cents)
	}
}

func TestComparisonSeries(t *testing.T) {
	bars := ComparisonSeries(Totals{Income: Money{Cents: 100}, Expense: Money{Cents: 300}, Balance: Money{Cents: -200}})
	if len(bars) != 3 || bars[0].Label != "Income" || bars[1].Label != "Expenses" || bars[2].Label != "Net Balance" {
		t.Fatalf("unexpected bars %+v", bars)
	}
	if bars[0].Negative || !bars[2].Negative {
		t.Fatalf("negative flag only belongs on a negative balance: %+v", bars)
	}
}
