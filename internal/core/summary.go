package core

import (
	"sort"
	"time"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// DateAmount is one point of the daily expense series.
type DateAmount struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Amount Money  `json:"amount"`
}

// Totals summarizes a set of transactions. Balance is always Income - Expense.
type Totals struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Balance Money `json:"balance"`
}

// ComparisonBar is one bar of the income/expense/balance comparison chart.
type ComparisonBar struct {
	Label    string `json:"label"`
	Amount   Money  `json:"amount"`
	Negative bool   `json:"negative"`
}

// ComputeTotals sums income and expense amounts. Empty input yields zeros.
func ComputeTotals(txns []Transaction) Totals {
	var t Totals
	for _, tx := range txns {
		switch tx.Type {
		case Income:
			t.Income = t.Income.Add(tx.Amount)
		case Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// CategoryTotals sums expenses per category, in first-seen order.
func CategoryTotals(txns []Transaction) []CategoryAmount {
	idx := map[string]int{}
	out := make([]CategoryAmount, 0)
	for _, tx := range txns {
		if tx.Type != Expense {
			continue
		}
		i, ok := idx[tx.Category]
		if !ok {
			i = len(out)
			idx[tx.Category] = i
			out = append(out, CategoryAmount{Name: tx.Category})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
	}
	return out
}

// DailyExpenseSeries sums expenses per exact date, oldest date first.
func DailyExpenseSeries(txns []Transaction) []DateAmount {
	sums := map[string]Money{}
	for _, tx := range txns {
		if tx.Type != Expense {
			continue
		}
		key := tx.Date.String()
		sums[key] = sums[key].Add(tx.Amount)
	}
	out := make([]DateAmount, 0, len(sums))
	for d, m := range sums {
		out = append(out, DateAmount{Date: d, Amount: m})
	}
	// ISO dates sort lexicographically in chronological order.
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// CurrentMonthExpenseTotal sums the expenses dated in now's calendar month.
// It is meant to be called on the unfiltered set: budget tracking always
// reflects the real current month.
func CurrentMonthExpenseTotal(all []Transaction, now time.Time) Money {
	var total Money
	for _, tx := range all {
		if tx.Type != Expense {
			continue
		}
		if tx.Date.Year() == now.Year() && tx.Date.Month() == int(now.Month()) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// ComparisonSeries returns the Income / Expenses / Net Balance bars.
func ComparisonSeries(t Totals) []ComparisonBar {
	return []ComparisonBar{
		{Label: "Income", Amount: t.Income},
		{Label: "Expenses", Amount: t.Expense},
		{Label: "Net Balance", Amount: t.Balance, Negative: t.Balance.IsNegative()},
	}
}
