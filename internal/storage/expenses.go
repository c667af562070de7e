package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

func (t *Tx) expenseColumns() string {
	return "id, user_id, title, amount_cents, category, " + t.d.dateColumn("date") + ", description, payment_method"
}

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var (
		e             core.Expense
		date          string
		description   sql.NullString
		paymentMethod sql.NullString
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Amount.Cents, &e.Category, &date, &description, &paymentMethod); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, core.ErrNotFound
		}
		return core.Expense{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, err
	}
	e.Date = d
	e.Description = nullableString(description)
	e.PaymentMethod = nullableString(paymentMethod)
	return e, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// CreateExpense stores e for its owner and returns it with the assigned id.
func (t *Tx) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	id, err := t.insert(ctx,
		`INSERT INTO expenses (user_id, title, amount_cents, category, date, description, payment_method)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Title, e.Amount.Cents, e.Category, t.d.dateArg(e.Date), e.Description, e.PaymentMethod)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	e.ID = id
	return e, nil
}

// GetExpense returns core.ErrNotFound when the expense does not exist or
// belongs to someone else.
func (t *Tx) GetExpense(ctx context.Context, id, ownerID int64) (core.Expense, error) {
	e, err := scanExpense(t.queryRow(ctx,
		"SELECT "+t.expenseColumns()+" FROM expenses WHERE id = ? AND user_id = ?", id, ownerID))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, err
}

// ListExpenses returns the owner's expenses matching f, newest first.
func (t *Tx) ListExpenses(ctx context.Context, ownerID int64, f core.ListFilter, p core.Page) ([]core.Expense, error) {
	w := t.listWhere(ownerID, f)
	page, pageArgs := pageClause(p)

	rows, err := t.query(ctx, "SELECT "+t.expenseColumns()+" FROM expenses"+w.String()+page,
		append(w.args, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// UpdateExpense overwrites every mutable column of e, matched by id and owner.
func (t *Tx) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := t.exec(ctx,
		`UPDATE expenses SET title = ?, amount_cents = ?, category = ?, date = ?, description = ?, payment_method = ?
		WHERE id = ? AND user_id = ?`,
		e.Title, e.Amount.Cents, e.Category, t.d.dateArg(e.Date), e.Description, e.PaymentMethod, e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	return affectedOne(res)
}

func (t *Tx) DeleteExpense(ctx context.Context, id, ownerID int64) error {
	res, err := t.exec(ctx, "DELETE FROM expenses WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return affectedOne(res)
}

// SumExpenses is zero when nothing matches.
func (t *Tx) SumExpenses(ctx context.Context, ownerID int64, p core.Period) (core.Money, error) {
	return t.sum(ctx, expensesTable, ownerID, p)
}

func (t *Tx) ExpensesByCategory(ctx context.Context, ownerID int64, p core.Period) ([]core.CategoryTotal, error) {
	return t.byCategory(ctx, expensesTable, ownerID, p)
}

func (t *Tx) ExpensesByMonth(ctx context.Context, ownerID int64, year int) ([]core.MonthTotal, error) {
	return t.byMonth(ctx, expensesTable, ownerID, year)
}
