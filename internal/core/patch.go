package core

// Optional marks whether a field was present in a partial update. A present
// *string field with a nil Value clears the column.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// ExpensePatch carries only the fields to change on an expense.
type ExpensePatch struct {
	Title         Optional[string]
	Amount        Optional[Money]
	Category      Optional[string]
	Date          Optional[Date]
	Description   Optional[*string]
	PaymentMethod Optional[*string]
}

// IsEmpty reports whether the patch changes nothing.
func (p ExpensePatch) IsEmpty() bool {
	return !p.Title.Set && !p.Amount.Set && !p.Category.Set && !p.Date.Set &&
		!p.Description.Set && !p.PaymentMethod.Set
}

// Apply merges the present fields into e.
func (p ExpensePatch) Apply(e *Expense) {
	if p.Title.Set {
		e.Title = p.Title.Value
	}
	if p.Amount.Set {
		e.Amount = p.Amount.Value
	}
	if p.Category.Set {
		e.Category = p.Category.Value
	}
	if p.Date.Set {
		e.Date = p.Date.Value
	}
	if p.Description.Set {
		e.Description = p.Description.Value
	}
	if p.PaymentMethod.Set {
		e.PaymentMethod = p.PaymentMethod.Value
	}
}

// IncomePatch carries only the fields to change on an income record.
type IncomePatch struct {
	Title       Optional[string]
	Amount      Optional[Money]
	Category    Optional[string]
	Date        Optional[Date]
	Description Optional[*string]
}

func (p IncomePatch) IsEmpty() bool {
	return !p.Title.Set && !p.Amount.Set && !p.Category.Set && !p.Date.Set && !p.Description.Set
}

func (p IncomePatch) Apply(i *Income) {
	if p.Title.Set {
		i.Title = p.Title.Value
	}
	if p.Amount.Set {
		i.Amount = p.Amount.Value
	}
	if p.Category.Set {
		i.Category = p.Category.Value
	}
	if p.Date.Set {
		i.Date = p.Date.Value
	}
	if p.Description.Set {
		i.Description = p.Description.Value
	}
}
