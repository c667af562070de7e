package core

import (
	"slices"
)

// RecentLimit bounds the dashboard activity feed. Each kind is fetched up to
// the same limit so the merged feed is the true most recent window, even when
// one kind fills it alone.
const RecentLimit = 10

// CategoryTotal represents an amount aggregated by category label.
type CategoryTotal struct {
	Category string
	Amount   Money
}

// MonthTotal represents an amount aggregated by calendar month (1-12).
type MonthTotal struct {
	Month  int
	Amount Money
}

// MonthComparison pairs income and expense totals for one month.
type MonthComparison struct {
	Month   int
	Income  Money
	Expense Money
}

// Transaction is one entry of the merged recent-activity feed.
type Transaction struct {
	ID       int64
	Title    string
	Amount   Money
	Kind     Kind
	Date     Date
	Category string
}

// DashboardStats is the owner's overall financial picture.
type DashboardStats struct {
	TotalBalance       Money
	TotalIncome        Money
	TotalExpense       Money
	MonthlyExpense     Money
	RecentTransactions []Transaction
}

// MergeRecent tags expenses and incomes with their kind, merges them, orders
// the result by date descending and keeps at most limit entries. Records
// sharing a date keep their input order, expenses first.
func MergeRecent(expenses []Expense, incomes []Income, limit int) []Transaction {
	merged := make([]Transaction, 0, len(expenses)+len(incomes))
	for _, e := range expenses {
		merged = append(merged, Transaction{
			ID: e.ID, Title: e.Title, Amount: e.Amount, Kind: KindExpense, Date: e.Date, Category: e.Category,
		})
	}
	for _, i := range incomes {
		merged = append(merged, Transaction{
			ID: i.ID, Title: i.Title, Amount: i.Amount, Kind: KindIncome, Date: i.Date, Category: i.Category,
		})
	}
	slices.SortStableFunc(merged, func(a, b Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	if limit >= 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// CompareMonths builds a dense twelve-month series from sparse per-month
// totals, zero-filling months without records.
func CompareMonths(income, expense []MonthTotal) []MonthComparison {
	out := make([]MonthComparison, 12)
	for i := range out {
		out[i].Month = i + 1
	}
	for _, t := range income {
		if t.Month >= 1 && t.Month <= 12 {
			out[t.Month-1].Income = out[t.Month-1].Income.Add(t.Amount)
		}
	}
	for _, t := range expense {
		if t.Month >= 1 && t.Month <= 12 {
			out[t.Month-1].Expense = out[t.Month-1].Expense.Add(t.Amount)
		}
	}
	return out
}
