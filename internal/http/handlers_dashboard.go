package http

import (
	"net/http"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Dashboard.Stats(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	NewResponse().JSON(newDashboardResponse(stats)).Write(w)
}

// handleExpenseTrend reports monthly expense totals; year defaults to the current one.
func (s *Server) handleExpenseTrend(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYear(r.URL.Query())
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	totals, err := s.svc.Dashboard.ExpenseTrend(r.Context(), currentUser(r).ID, year)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	NewResponse().JSON(newMonthResponses(totals)).Write(w)
}

// handleIncomeVsExpense always returns twelve zero-filled months.
func (s *Server) handleIncomeVsExpense(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYear(r.URL.Query())
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	months, err := s.svc.Dashboard.IncomeVsExpense(r.Context(), currentUser(r).ID, year)
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	out := make([]comparisonResponse, 0, len(months))
	for _, m := range months {
		out = append(out, comparisonResponse{Month: m.Month, Income: m.Income, Expense: m.Expense})
	}
	NewResponse().JSON(out).Write(w)
}
