package http

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"

	"fintrack/internal/export"
	"fintrack/internal/log"
)

const expenseNotFound = "Expense not found"

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, page, err := ParseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	expenses, err := s.svc.Expenses.List(r.Context(), currentUser(r).ID, filter, page)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	NewResponse().JSON(newExpenseResponses(expenses)).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	e, err := req.toExpense()
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	created, err := s.svc.Expenses.Create(r.Context(), currentUser(r).ID, e)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(newExpenseResponse(created)).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	e, err := s.svc.Expenses.Get(r.Context(), id, currentUser(r).ID)
	if err != nil {
		writeError(w, r, err, expenseNotFound)
		return
	}
	NewResponse().JSON(newExpenseResponse(e)).Write(w)
}

// handleUpdateExpense applies only the keys present in the body.
func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	var fields patchFields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, r, err, "")
		return
	}
	patch, err := fields.expensePatch()
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	updated, err := s.svc.Expenses.Update(r.Context(), id, currentUser(r).ID, patch)
	if err != nil {
		writeError(w, r, err, expenseNotFound)
		return
	}
	NewResponse().JSON(newExpenseResponse(updated)).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	if err := s.svc.Expenses.Delete(r.Context(), id, currentUser(r).ID); err != nil {
		writeError(w, r, err, expenseNotFound)
		return
	}
	NoContent().Write(w)
}

func (s *Server) handleExpenseStats(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriod(r.URL.Query())
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	total, err := s.svc.Expenses.Total(r.Context(), currentUser(r).ID, period)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	NewResponse().JSON(totalResponse{Total: total}).Write(w)
}

func (s *Server) handleExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriod(r.URL.Query())
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	totals, err := s.svc.Expenses.ByCategory(r.Context(), currentUser(r).ID, period)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	NewResponse().JSON(newCategoryResponses(totals)).Write(w)
}

func (s *Server) handleMonthlyExpenses(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYear(r.URL.Query())
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	totals, err := s.svc.Expenses.ByMonth(r.Context(), currentUser(r).ID, year)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	NewResponse().JSON(newMonthResponses(totals)).Write(w)
}

func (s *Server) handleExportExpenses(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	expenses, err := s.svc.Expenses.Export(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteExpenses(&buf, expenses); err != nil {
		writeError(w, r, err, "")
		return
	}

	log.FromContext(r.Context()).WithComponent(log.ComponentExport).InfoContext(r.Context(), "Expenses exported",
		log.FieldUserID, user.ID, log.FieldCount, len(expenses))
	NewResponse().
		Header("Content-Type", export.ContentType).
		Header("Content-Disposition", export.Disposition(export.ExpensesFilename)).
		Body(buf.Bytes()).
		Write(w)
}
