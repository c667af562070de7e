// Package export renders expense and income records as CSV attachments.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"fintrack/internal/core"
)

const (
	ExpensesFilename = "expenses.csv"
	IncomeFilename   = "income.csv"
	ContentType      = "text/csv"
)

var (
	expenseHeader = []string{"ID", "Title", "Amount", "Category", "Date", "Description", "Payment Method"}
	incomeHeader  = []string{"ID", "Title", "Amount", "Category", "Date", "Description"}
)

// WriteExpenses writes the header and one row per expense. Missing optional
// fields are written as empty cells.
func WriteExpenses(w io.Writer, expenses []core.Expense) error {
	cw := newWriter(w)
	if err := cw.Write(expenseHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range expenses {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.Title,
			e.Amount.String(),
			e.Category,
			e.Date.String(),
			core.StringOrEmpty(e.Description),
			core.StringOrEmpty(e.PaymentMethod),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write expense %d: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteIncome(w io.Writer, records []core.Income) error {
	cw := newWriter(w)
	if err := cw.Write(incomeHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, in := range records {
		row := []string{
			strconv.FormatInt(in.ID, 10),
			in.Title,
			in.Amount.String(),
			in.Category,
			in.Date.String(),
			core.StringOrEmpty(in.Description),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write income %d: %w", in.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func newWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	return cw
}

// Disposition is the Content-Disposition value for an attachment named filename.
func Disposition(filename string) string {
	return "attachment; filename=" + filename
}
