package http

import (
	"net/http"

	"finboard/internal/core"
	"finboard/internal/dayoff"
)

func (h *handlers) listDayOffRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.DayOff.ListRules(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rules == nil {
		rules = []dayoff.Record{}
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *handlers) createDayOffRule(w http.ResponseWriter, r *http.Request) {
	var rec dayoff.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := h.svc.DayOff.CreateRule(r.Context(), UserID(r.Context()), rec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *handlers) deleteDayOffRule(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DayOff.DeleteRule(r.Context(), UserID(r.Context()), idParam(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) checkDayOff(w http.ResponseWriter, r *http.Request) {
	d, err := ParseDateParam(r.URL.Query(), "date")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if d.IsZero() {
		d = core.DateOf(h.now())
	}
	c, err := h.svc.DayOff.Check(r.Context(), UserID(r.Context()), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handlers) dayOffCalendar(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query(), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	days, err := h.svc.DayOff.Calendar(r.Context(), UserID(r.Context()), p.Year, p.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}
