package core

// DefaultLimit is the page size used when the caller does not ask for one.
const (
	DefaultLimit = 100
	ExportLimit  = 10000
)

// Page is an offset/limit window over an ordered result.
type Page struct {
	Skip  int
	Limit int
}

// DefaultPage returns the first page with the default size.
func DefaultPage() Page {
	return Page{Skip: 0, Limit: DefaultLimit}
}

func (p Page) Validate() error {
	if p.Skip < 0 {
		return NewValidationError("skip", "must not be negative")
	}
	if p.Limit < 0 {
		return NewValidationError("limit", "must not be negative")
	}
	return nil
}

// Period narrows an aggregation to a calendar month and/or year. Zero means
// "not filtered".
type Period struct {
	Month int
	Year  int
}

func (p Period) Validate() error {
	if p.Month < 0 || p.Month > 12 {
		return NewValidationError("month", "must be between 1 and 12")
	}
	if p.Year < 0 {
		return NewValidationError("year", "must not be negative")
	}
	return nil
}

// ListFilter holds the optional predicates of a listing. Every supplied
// predicate is combined with AND; zero values are ignored.
type ListFilter struct {
	Category  string
	StartDate *Date
	EndDate   *Date
	Period
	// Search is matched case-insensitively against title or category.
	Search string
}

func (f ListFilter) Validate() error {
	return f.Period.Validate()
}
