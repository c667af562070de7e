package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

func (t *Tx) incomeColumns() string {
	return "id, user_id, title, amount_cents, category, " + t.d.dateColumn("date") + ", description"
}

func scanIncome(row interface{ Scan(...any) error }) (core.Income, error) {
	var (
		in          core.Income
		date        string
		description sql.NullString
	)
	if err := row.Scan(&in.ID, &in.UserID, &in.Title, &in.Amount.Cents, &in.Category, &date, &description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Income{}, core.ErrNotFound
		}
		return core.Income{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Income{}, err
	}
	in.Date = d
	in.Description = nullableString(description)
	return in, nil
}

func (t *Tx) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	id, err := t.insert(ctx,
		"INSERT INTO income (user_id, title, amount_cents, category, date, description) VALUES (?, ?, ?, ?, ?, ?)",
		in.UserID, in.Title, in.Amount.Cents, in.Category, t.d.dateArg(in.Date), in.Description)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	in.ID = id
	return in, nil
}

func (t *Tx) GetIncome(ctx context.Context, id, ownerID int64) (core.Income, error) {
	in, err := scanIncome(t.queryRow(ctx,
		"SELECT "+t.incomeColumns()+" FROM income WHERE id = ? AND user_id = ?", id, ownerID))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return core.Income{}, fmt.Errorf("get income %d: %w", id, err)
	}
	return in, err
}

func (t *Tx) ListIncome(ctx context.Context, ownerID int64, f core.ListFilter, p core.Page) ([]core.Income, error) {
	w := t.listWhere(ownerID, f)
	page, pageArgs := pageClause(p)

	rows, err := t.query(ctx, "SELECT "+t.incomeColumns()+" FROM income"+w.String()+page,
		append(w.args, pageArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("list income: %w", err)
	}
	defer rows.Close()

	records := []core.Income{}
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		records = append(records, in)
	}
	return records, rows.Err()
}

func (t *Tx) UpdateIncome(ctx context.Context, in core.Income) error {
	res, err := t.exec(ctx,
		"UPDATE income SET title = ?, amount_cents = ?, category = ?, date = ?, description = ? WHERE id = ? AND user_id = ?",
		in.Title, in.Amount.Cents, in.Category, t.d.dateArg(in.Date), in.Description, in.ID, in.UserID)
	if err != nil {
		return fmt.Errorf("update income %d: %w", in.ID, err)
	}
	return affectedOne(res)
}

func (t *Tx) DeleteIncome(ctx context.Context, id, ownerID int64) error {
	res, err := t.exec(ctx, "DELETE FROM income WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete income %d: %w", id, err)
	}
	return affectedOne(res)
}

func (t *Tx) SumIncome(ctx context.Context, ownerID int64, p core.Period) (core.Money, error) {
	return t.sum(ctx, incomeTable, ownerID, p)
}

func (t *Tx) IncomeByCategory(ctx context.Context, ownerID int64, p core.Period) ([]core.CategoryTotal, error) {
	return t.byCategory(ctx, incomeTable, ownerID, p)
}

func (t *Tx) IncomeByMonth(ctx context.Context, ownerID int64, year int) ([]core.MonthTotal, error) {
	return t.byMonth(ctx, incomeTable, ownerID, year)
}
