package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

const dateLayout = "2006-01-02"

type (
	// Kind tells expense and income records apart once they are merged into a single feed.
	Kind string

	// Date is a calendar date without time of day, always in UTC.
	Date struct {
		time.Time
	}

	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
	}

	Expense struct {
		ID            int64
		UserID        int64
		Title         string
		Amount        Money
		Category      string
		Date          Date
		Description   *string
		PaymentMethod *string
	}

	Income struct {
		ID          int64
		UserID      int64
		Title       string
		Amount      Money
		Category    string
		Date        Date
		Description *string
	}
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrEmptyTitle         = errors.New("empty title")
	ErrEmptyCategory      = errors.New("empty category")
	ErrZeroDate           = errors.New("date cannot be zero")
)

// ValidationError reports input that was rejected before reaching storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the named field.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date in local time.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func validateText(field, value string, max int, empty error) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: empty.Error()}
	}
	if len(value) > max {
		return NewValidationError(field, "too long (max %d characters)", max)
	}
	return nil
}

func (e Expense) Validate() error {
	if err := validateText("title", e.Title, 200, ErrEmptyTitle); err != nil {
		return err
	}
	if err := validateText("category", e.Category, 100, ErrEmptyCategory); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Message: err.Error()}
	}
	return nil
}

func (i Income) Validate() error {
	if err := validateText("title", i.Title, 200, ErrEmptyTitle); err != nil {
		return err
	}
	if err := validateText("category", i.Category, 100, ErrEmptyCategory); err != nil {
		return err
	}
	if err := i.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Message: err.Error()}
	}
	return nil
}

// StringOrEmpty dereferences an optional text field, rendering absence as "".
func StringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
