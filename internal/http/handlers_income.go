package http

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"

	"fintrack/internal/export"
	"fintrack/internal/log"
)

const incomeNotFound = "Income not found"

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	filter, page, err := ParseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	records, err := s.svc.Income.List(r.Context(), currentUser(r).ID, filter, page)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	NewResponse().JSON(newIncomeResponses(records)).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	in, err := req.toIncome()
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	created, err := s.svc.Income.Create(r.Context(), currentUser(r).ID, in)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(newIncomeResponse(created)).Write(w)
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	in, err := s.svc.Income.Get(r.Context(), id, currentUser(r).ID)
	if err != nil {
		writeError(w, r, err, incomeNotFound)
		return
	}
	NewResponse().JSON(newIncomeResponse(in)).Write(w)
}

// handleUpdateIncome applies only the keys present in the body.
func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
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
	patch, err := fields.incomePatch()
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	updated, err := s.svc.Income.Update(r.Context(), id, currentUser(r).ID, patch)
	if err != nil {
		writeError(w, r, err, incomeNotFound)
		return
	}
	NewResponse().JSON(newIncomeResponse(updated)).Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	if err := s.svc.Income.Delete(r.Context(), id, currentUser(r).ID); err != nil {
		writeError(w, r, err, incomeNotFound)
		return
	}
	NoContent().Write(w)
}

func (s *Server) handleIncomeStats(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriod(r.URL.Query())
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	total, err := s.svc.Income.Total(r.Context(), currentUser(r).ID, period)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	NewResponse().JSON(totalResponse{Total: total}).Write(w)
}

func (s *Server) handleIncomeByCategory(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriod(r.URL.Query())
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	totals, err := s.svc.Income.ByCategory(r.Context(), currentUser(r).ID, period)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	NewResponse().JSON(newCategoryResponses(totals)).Write(w)
}

func (s *Server) handleMonthlyIncome(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYear(r.URL.Query())
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	totals, err := s.svc.Income.ByMonth(r.Context(), currentUser(r).ID, year)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	NewResponse().JSON(newMonthResponses(totals)).Write(w)
}

func (s *Server) handleExportIncome(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	records, err := s.svc.Income.Export(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteIncome(&buf, records); err != nil {
		writeError(w, r, err, "")
		return
	}

	log.FromContext(r.Context()).WithComponent(log.ComponentExport).InfoContext(r.Context(), "Income exported",
		log.FieldUserID, user.ID, log.FieldCount, len(records))
	NewResponse().
		Header("Content-Type", export.ContentType).
		Header("Content-Disposition", export.Disposition(export.IncomeFilename)).
		Body(buf.Bytes()).
		Write(w)
}
