package http

import (
	"fmt"
	"net/http"

	"finboard/internal/core"
	"finboard/internal/services"
)

type recurringRequest struct {
	Name           string              `json:"name"`
	Amount         core.Money          `json:"amount"`
	Category       string              `json:"category"`
	DueDay         int                 `json:"due_day"`
	DueMonth       int                 `json:"due_month"`
	PaymentMethod  core.PaymentMethod  `json:"payment_method"`
	CardID         string              `json:"card_id"`
	RecurrenceType core.RecurrenceType `json:"recurrence_type"`
	Installments   int                 `json:"installments"`
	Priority       core.Priority       `json:"priority"`
	AutoPay        bool                `json:"auto_pay"`
}

func (req recurringRequest) expense() core.RecurringExpense {
	return core.RecurringExpense{
		Name:           req.Name,
		Amount:         req.Amount,
		Category:       req.Category,
		DueDay:         req.DueDay,
		DueMonth:       req.DueMonth,
		PaymentMethod:  req.PaymentMethod,
		CardID:         req.CardID,
		RecurrenceType: req.RecurrenceType,
		Installments:   req.Installments,
		Priority:       req.Priority,
		AutoPay:        req.AutoPay,
	}
}

type processResult struct {
	Created int `json:"created"`
}

func (h *handlers) listRecurring(w http.ResponseWriter, r *http.Request) {
	status := core.RecurringStatus(r.URL.Query().Get("status"))
	switch status {
	case "", core.StatusActive, core.StatusPaused, core.StatusCompleted:
	default:
		writeError(w, r, &core.ValidationError{Field: "status", Err: fmt.Errorf("unknown status %q", status)})
		return
	}
	list, err := h.svc.Recurring.List(r.Context(), UserID(r.Context()), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []core.RecurringExpense{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handlers) createRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	re, err := h.svc.Recurring.Create(r.Context(), UserID(r.Context()), req.expense())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, re)
}

func (h *handlers) getRecurring(w http.ResponseWriter, r *http.Request) {
	re, err := h.svc.Recurring.Get(r.Context(), UserID(r.Context()), idParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, re)
}

func (h *handlers) updateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	re, err := h.svc.Recurring.Update(r.Context(), UserID(r.Context()), idParam(r), req.expense())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, re)
}

func (h *handlers) deleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Recurring.Delete(r.Context(), UserID(r.Context()), idParam(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) pauseRecurring(w http.ResponseWriter, r *http.Request) {
	re, err := h.svc.Recurring.Pause(r.Context(), UserID(r.Context()), idParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, re)
}

func (h *handlers) resumeRecurring(w http.ResponseWriter, r *http.Request) {
	re, err := h.svc.Recurring.Resume(r.Context(), UserID(r.Context()), idParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, re)
}

func (h *handlers) dueRecurring(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Recurring.Due(r.Context(), UserID(r.Context()), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []services.DueItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handlers) payRecurring(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Recurring.Pay(r.Context(), UserID(r.Context()), idParam(r), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *handlers) processRecurring(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Recurring.ProcessDue(r.Context(), UserID(r.Context()), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, processResult{Created: n})
}
