package services

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// IncomeService mirrors ExpenseService for income records.
type IncomeService struct {
	store  *storage.Store
	notify notifier
	logger *log.Logger
}

func NewIncomeService(store *storage.Store, pub Publisher, logger *log.Logger) *IncomeService {
	logger = logger.WithComponent(log.ComponentIncome)
	return &IncomeService{
		store:  store,
		notify: notifier{pub: pub, logger: logger},
		logger: logger,
	}
}

func (s *IncomeService) Create(ctx context.Context, ownerID int64, in core.Income) (core.Income, error) {
	in.UserID = ownerID
	if in.Date.IsZero() {
		in.Date = core.Today()
	}
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}

	var created core.Income
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		created, err = tx.CreateIncome(ctx, in)
		return err
	})
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}

	s.logger.InfoContext(ctx, "Income created",
		log.NewFields().WithUser(ownerID).WithRecord(string(core.KindIncome), created.ID, created.Amount.Cents, created.Category).ToSlice()...)
	s.notify.changed(ctx, core.KindIncome, amqp.OpCreated, created.ID, ownerID)
	return created, nil
}

func (s *IncomeService) Get(ctx context.Context, id, ownerID int64) (core.Income, error) {
	var in core.Income
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		in, err = tx.GetIncome(ctx, id, ownerID)
		return err
	})
	return in, err
}

func (s *IncomeService) List(ctx context.Context, ownerID int64, f core.ListFilter, p core.Page) ([]core.Income, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var list []core.Income
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		list, err = tx.ListIncome(ctx, ownerID, f, p)
		return err
	})
	return list, err
}

func (s *IncomeService) Update(ctx context.Context, id, ownerID int64, patch core.IncomePatch) (core.Income, error) {
	var in core.Income
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		in, err = tx.GetIncome(ctx, id, ownerID)
		if err != nil || patch.IsEmpty() {
			return err
		}
		patch.Apply(&in)
		if err := in.Validate(); err != nil {
			return err
		}
		return tx.UpdateIncome(ctx, in)
	})
	if err != nil {
		return core.Income{}, err
	}

	if !patch.IsEmpty() {
		s.notify.changed(ctx, core.KindIncome, amqp.OpUpdated, id, ownerID)
	}
	return in, nil
}

func (s *IncomeService) Delete(ctx context.Context, id, ownerID int64) error {
	err := s.store.InTx(ctx, func(tx *storage.Tx) error {
		return tx.DeleteIncome(ctx, id, ownerID)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Income deleted", log.FieldUserID, ownerID, log.FieldRecordID, id)
	s.notify.changed(ctx, core.KindIncome, amqp.OpDeleted, id, ownerID)
	return nil
}

func (s *IncomeService) Total(ctx context.Context, ownerID int64, p core.Period) (core.Money, error) {
	if err := p.Validate(); err != nil {
		return core.Money{}, err
	}
	var total core.Money
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		total, err = tx.SumIncome(ctx, ownerID, p)
		return err
	})
	return total, err
}

func (s *IncomeService) ByCategory(ctx context.Context, ownerID int64, p core.Period) ([]core.CategoryTotal, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var totals []core.CategoryTotal
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		totals, err = tx.IncomeByCategory(ctx, ownerID, p)
		return err
	})
	return totals, err
}

func (s *IncomeService) ByMonth(ctx context.Context, ownerID int64, year int) ([]core.MonthTotal, error) {
	if err := (core.Period{Year: year}).Validate(); err != nil {
		return nil, err
	}
	var totals []core.MonthTotal
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		totals, err = tx.IncomeByMonth(ctx, ownerID, year)
		return err
	})
	return totals, err
}

func (s *IncomeService) Export(ctx context.Context, ownerID int64) ([]core.Income, error) {
	return s.List(ctx, ownerID, core.ListFilter{}, core.Page{Limit: core.ExportLimit})
}
