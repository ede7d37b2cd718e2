package http

import (
	"net/http"

	"finboard/internal/core"
)

type transactionRequest struct {
	Type          core.TransactionType `json:"type"`
	Amount        core.Money           `json:"amount"`
	Category      string               `json:"category"`
	Description   string               `json:"description"`
	Date          core.Date            `json:"date"`
	PaymentMethod core.PaymentMethod   `json:"payment_method"`
	CardID        string               `json:"card_id"`
}

func (h *handlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := ParseDateParam(q, "from")
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := ParseDateParam(q, "to")
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := h.svc.Transactions.List(r.Context(), UserID(r.Context()), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *handlers) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Date.IsZero() {
		req.Date = core.DateOf(h.now())
	}
	t, err := h.svc.Transactions.Add(r.Context(), UserID(r.Context()), core.Transaction{
		Type:          req.Type,
		Amount:        req.Amount,
		Category:      req.Category,
		Description:   req.Description,
		Date:          req.Date,
		PaymentMethod: req.PaymentMethod,
		CardID:        req.CardID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *handlers) getTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Transactions.Get(r.Context(), UserID(r.Context()), idParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handlers) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Transactions.Delete(r.Context(), UserID(r.Context()), idParam(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
