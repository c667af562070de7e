package services

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// ExpenseService applies owner-scoped expense operations, one transaction each.
type ExpenseService struct {
	store  *storage.Store
	notify notifier
	logger *log.Logger
}

func NewExpenseService(store *storage.Store, pub Publisher, logger *log.Logger) *ExpenseService {
	logger = logger.WithComponent(log.ComponentExpense)
	return &ExpenseService{
		store:  store,
		notify: notifier{pub: pub, logger: logger},
		logger: logger,
	}
}

// Create stores e for ownerID. A missing date defaults to today.
func (s *ExpenseService) Create(ctx context.Context, ownerID int64, e core.Expense) (core.Expense, error) {
	e.UserID = ownerID
	if e.Date.IsZero() {
		e.Date = core.Today()
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	var created core.Expense
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		created, err = tx.CreateExpense(ctx, e)
		return err
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	s.logger.InfoContext(ctx, "Expense created",
		log.NewFields().WithUser(ownerID).WithRecord(string(core.KindExpense), created.ID, created.Amount.Cents, created.Category).ToSlice()...)
	s.notify.changed(ctx, core.KindExpense, amqp.OpCreated, created.ID, ownerID)
	return created, nil
}

func (s *ExpenseService) Get(ctx context.Context, id, ownerID int64) (core.Expense, error) {
	var e core.Expense
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		e, err = tx.GetExpense(ctx, id, ownerID)
		return err
	})
	return e, err
}

// List returns the owner's expenses matching f, newest first.
func (s *ExpenseService) List(ctx context.Context, ownerID int64, f core.ListFilter, p core.Page) ([]core.Expense, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var list []core.Expense
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		list, err = tx.ListExpenses(ctx, ownerID, f, p)
		return err
	})
	return list, err
}

// Update applies only the fields present in patch. An empty patch returns
// the record unchanged.
func (s *ExpenseService) Update(ctx context.Context, id, ownerID int64, patch core.ExpensePatch) (core.Expense, error) {
	var e core.Expense
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		e, err = tx.GetExpense(ctx, id, ownerID)
		if err != nil || patch.IsEmpty() {
			return err
		}
		patch.Apply(&e)
		if err := e.Validate(); err != nil {
			return err
		}
		return tx.UpdateExpense(ctx, e)
	})
	if err != nil {
		return core.Expense{}, err
	}

	if !patch.IsEmpty() {
		s.notify.changed(ctx, core.KindExpense, amqp.OpUpdated, id, ownerID)
	}
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id, ownerID int64) error {
	err := s.store.InTx(ctx, func(tx *storage.Tx) error {
		return tx.DeleteExpense(ctx, id, ownerID)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Expense deleted", log.FieldUserID, ownerID, log.FieldRecordID, id)
	s.notify.changed(ctx, core.KindExpense, amqp.OpDeleted, id, ownerID)
	return nil
}

// Total sums the owner's expenses in p; zero when nothing matches.
func (s *ExpenseService) Total(ctx context.Context, ownerID int64, p core.Period) (core.Money, error) {
	if err := p.Validate(); err != nil {
		return core.Money{}, err
	}
	var total core.Money
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		total, err = tx.SumExpenses(ctx, ownerID, p)
		return err
	})
	return total, err
}

func (s *ExpenseService) ByCategory(ctx context.Context, ownerID int64, p core.Period) ([]core.CategoryTotal, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var totals []core.CategoryTotal
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		totals, err = tx.ExpensesByCategory(ctx, ownerID, p)
		return err
	})
	return totals, err
}

// ByMonth groups by calendar month; months without expenses are omitted.
func (s *ExpenseService) ByMonth(ctx context.Context, ownerID int64, year int) ([]core.MonthTotal, error) {
	if err := (core.Period{Year: year}).Validate(); err != nil {
		return nil, err
	}
	var totals []core.MonthTotal
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		totals, err = tx.ExpensesByMonth(ctx, ownerID, year)
		return err
	})
	return totals, err
}

// Export returns up to core.ExportLimit expenses, newest first.
func (s *ExpenseService) Export(ctx context.Context, ownerID int64) ([]core.Expense, error) {
	return s.List(ctx, ownerID, core.ListFilter{}, core.Page{Limit: core.ExportLimit})
}
