package services

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// DashboardService composes totals and the recent-activity feed.
type DashboardService struct {
	store *storage.Store
	now   func() time.Time
}

func NewDashboardService(store *storage.Store) *DashboardService {
	return &DashboardService{store: store, now: time.Now}
}

// Stats reads every figure inside one transaction so they agree with each other.
func (s *DashboardService) Stats(ctx context.Context, ownerID int64) (core.DashboardStats, error) {
	now := s.now()
	thisMonth := core.Period{Month: int(now.Month()), Year: now.Year()}
	recent := core.Page{Limit: core.RecentLimit}

	var stats core.DashboardStats
	err := s.store.InTx(ctx, func(tx *storage.Tx) error {
		var err error
		if stats.TotalIncome, err = tx.SumIncome(ctx, ownerID, core.Period{}); err != nil {
			return err
		}
		if stats.TotalExpense, err = tx.SumExpenses(ctx, ownerID, core.Period{}); err != nil {
			return err
		}
		if stats.MonthlyExpense, err = tx.SumExpenses(ctx, ownerID, thisMonth); err != nil {
			return err
		}

		expenses, err := tx.ListExpenses(ctx, ownerID, core.ListFilter{}, recent)
		if err != nil {
			return err
		}
		incomes, err := tx.ListIncome(ctx, ownerID, core.ListFilter{}, recent)
		if err != nil {
			return err
		}
		stats.RecentTransactions = core.MergeRecent(expenses, incomes, core.RecentLimit)
		return nil
	})
	if err != nil {
		return core.DashboardStats{}, err
	}

	stats.TotalBalance = stats.TotalIncome.Sub(stats.TotalExpense)
	return stats, nil
}

// ExpenseTrend returns monthly expense totals for year, or the current year when zero.
func (s *DashboardService) ExpenseTrend(ctx context.Context, ownerID int64, year int) ([]core.MonthTotal, error) {
	year = s.yearOrCurrent(year)
	var trend []core.MonthTotal
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		trend, err = tx.ExpensesByMonth(ctx, ownerID, year)
		return err
	})
	return trend, err
}

// IncomeVsExpense returns twelve months of income and expense totals for year,
// zero-filled, or for the current year when zero.
func (s *DashboardService) IncomeVsExpense(ctx context.Context, ownerID int64, year int) ([]core.MonthComparison, error) {
	year = s.yearOrCurrent(year)
	var income, expense []core.MonthTotal
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		if income, err = tx.IncomeByMonth(ctx, ownerID, year); err != nil {
			return err
		}
		expense, err = tx.ExpensesByMonth(ctx, ownerID, year)
		return err
	})
	if err != nil {
		return nil, err
	}
	return core.CompareMonths(income, expense), nil
}

func (s *DashboardService) yearOrCurrent(year int) int {
	if year <= 0 {
		return s.now().Year()
	}
	return year
}
