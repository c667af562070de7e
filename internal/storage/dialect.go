package storage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fintrack/internal/core"
)

// Backend names a supported relational store.
type Backend string

const (
	SQLite   Backend = "sqlite"
	Postgres Backend = "postgres"
)

// dialect hides the few places where SQLite and PostgreSQL SQL differ.
// Queries are written with '?' placeholders and rebound per dialect.
type dialect interface {
	backend() Backend
	driverName() string
	rebind(query string) string
	// month and year return integer calendar parts of a date column.
	month(col string) string
	year(col string) string
	// dateColumn selects a date column as 'YYYY-MM-DD' text.
	dateColumn(col string) string
	dateArg(d core.Date) any
	isUniqueViolation(err error) bool
	// isOverflow reports an aggregate that no longer fits in BIGINT.
	isOverflow(err error) bool
}

type sqliteDialect struct{}

func (sqliteDialect) backend() Backend             { return SQLite }
func (sqliteDialect) driverName() string           { return "sqlite" }
func (sqliteDialect) rebind(query string) string   { return query }
func (sqliteDialect) dateColumn(col string) string { return col }
func (sqliteDialect) dateArg(d core.Date) any      { return d.String() }

func (sqliteDialect) month(col string) string {
	return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", col)
}

func (sqliteDialect) year(col string) string {
	return fmt.Sprintf("CAST(strftime('%%Y', %s) AS INTEGER)", col)
}

func (sqliteDialect) isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func (sqliteDialect) isOverflow(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && strings.Contains(se.Error(), "integer overflow")
}

type postgresDialect struct{}

func (postgresDialect) backend() Backend   { return Postgres }
func (postgresDialect) driverName() string { return "pgx" }

func (postgresDialect) rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (postgresDialect) month(col string) string {
	return fmt.Sprintf("CAST(EXTRACT(MONTH FROM %s) AS INTEGER)", col)
}

func (postgresDialect) year(col string) string {
	return fmt.Sprintf("CAST(EXTRACT(YEAR FROM %s) AS INTEGER)", col)
}

func (postgresDialect) dateColumn(col string) string {
	return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", col)
}

func (postgresDialect) dateArg(d core.Date) any { return d.Time }

func (postgresDialect) isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (postgresDialect) isOverflow(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.NumericValueOutOfRange
}

func dialectFor(b Backend) (dialect, error) {
	switch b {
	case SQLite:
		return sqliteDialect{}, nil
	case Postgres:
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported backend %q", b)
	}
}
