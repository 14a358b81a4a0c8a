package http

import (
	"net/http"
)

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	months, err := s.reports.MonthlyReport(r.Context(), uid, from, to)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthFlowDTOs(months))
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.reports.CategoryReport(r.Context(), uid, from, to)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := categoryReportDTO{Total: report.Total, Items: make([]categoryTotalDTO, len(report.Items))}
	for i, item := range report.Items {
		out.Items[i] = categoryTotalDTO{
			Category:   item.Category,
			Total:      item.Total,
			Percentage: item.Percentage,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCashFlowReport(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.reports.CashFlowReport(r.Context(), uid, from, to)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cashFlowReportDTO{
		Months:       toMonthFlowDTOs(report.Months),
		TotalIncome:  report.TotalIncome,
		TotalExpense: report.TotalExpense,
		Net:          report.Net,
	})
}
