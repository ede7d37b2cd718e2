package http

import (
	"net/http"
)

func (h *handlers) monthSummary(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query(), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.svc.Summaries.MonthSummary(r.Context(), UserID(r.Context()), p.Year, p.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handlers) yearSummary(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYearParam(r.URL.Query(), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.svc.Summaries.AnnualSummary(r.Context(), UserID(r.Context()), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handlers) balance(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summaries.Balance(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
