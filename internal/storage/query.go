package storage

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

const (
	expensesTable = "expenses"
	incomeTable   = "income"
)

// where accumulates AND-ed predicates with their positional arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

func (t *Tx) ownerWhere(ownerID int64) *where {
	w := &where{}
	w.add("user_id = ?", ownerID)
	return w
}

func (t *Tx) addPeriod(w *where, p core.Period) {
	if p.Month != 0 {
		w.add(t.d.month("date")+" = ?", p.Month)
	}
	if p.Year != 0 {
		w.add(t.d.year("date")+" = ?", p.Year)
	}
}

// listWhere translates the optional filters of a listing into predicates.
func (t *Tx) listWhere(ownerID int64, f core.ListFilter) *where {
	w := t.ownerWhere(ownerID)
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.StartDate != nil {
		w.add("date >= ?", t.d.dateArg(*f.StartDate))
	}
	if f.EndDate != nil {
		w.add("date <= ?", t.d.dateArg(*f.EndDate))
	}
	t.addPeriod(w, f.Period)
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		w.add(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	return w
}

func pageClause(p core.Page) (string, []any) {
	return " ORDER BY date DESC, id DESC LIMIT ? OFFSET ?", []any{p.Limit, p.Skip}
}

func (t *Tx) sum(ctx context.Context, table string, ownerID int64, p core.Period) (core.Money, error) {
	w := t.ownerWhere(ownerID)
	t.addPeriod(w, p)

	var cents int64
	q := "SELECT CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT) FROM " + table + w.String()
	if err := t.queryRow(ctx, q, w.args...).Scan(&cents); err != nil {
		return core.Money{}, t.aggregateError("sum "+table, err)
	}
	return core.Money{Cents: cents}, nil
}

func (t *Tx) byCategory(ctx context.Context, table string, ownerID int64, p core.Period) ([]core.CategoryTotal, error) {
	w := t.ownerWhere(ownerID)
	t.addPeriod(w, p)

	q := "SELECT category, CAST(SUM(amount_cents) AS BIGINT) FROM " + table + w.String() +
		" GROUP BY category ORDER BY category"
	rows, err := t.query(ctx, q, w.args...)
	if err != nil {
		return nil, t.aggregateError(table+" by category", err)
	}
	defer rows.Close()

	totals := []core.CategoryTotal{}
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, t.aggregateError(table+" by category", err)
	}
	return totals, nil
}

// byMonth groups by calendar month; months without rows are omitted.
func (t *Tx) byMonth(ctx context.Context, table string, ownerID int64, year int) ([]core.MonthTotal, error) {
	w := t.ownerWhere(ownerID)
	t.addPeriod(w, core.Period{Year: year})

	q := "SELECT " + t.d.month("date") + ", CAST(SUM(amount_cents) AS BIGINT) FROM " + table + w.String() +
		" GROUP BY 1 ORDER BY 1"
	rows, err := t.query(ctx, q, w.args...)
	if err != nil {
		return nil, t.aggregateError(table+" by month", err)
	}
	defer rows.Close()

	totals := []core.MonthTotal{}
	for rows.Next() {
		var mt core.MonthTotal
		if err := rows.Scan(&mt.Month, &mt.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan month total: %w", err)
		}
		totals = append(totals, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, t.aggregateError(table+" by month", err)
	}
	return totals, nil
}

// aggregateError reports a total that overflows BIGINT as a validation error.
func (t *Tx) aggregateError(op string, err error) error {
	if t.d.isOverflow(err) {
		return core.NewValidationError("amount", "total out of range")
	}
	return fmt.Errorf("%s: %w", op, err)
}
