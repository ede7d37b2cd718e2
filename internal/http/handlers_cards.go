package http

import (
	"net/http"

	"finboard/internal/core"
)

type cardRequest struct {
	Name       string      `json:"name"`
	LastDigits string      `json:"last_digits"`
	Brand      string      `json:"brand"`
	Limit      *core.Money `json:"limit"`
	DueDay     int         `json:"due_day"`
	ClosingDay int         `json:"closing_day"`
	IsActive   *bool       `json:"is_active"`
	Color      string      `json:"color"`
}

func (req cardRequest) card() core.Card {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return core.Card{
		Name:       req.Name,
		LastDigits: req.LastDigits,
		Brand:      req.Brand,
		Limit:      req.Limit,
		DueDay:     req.DueDay,
		ClosingDay: req.ClosingDay,
		IsActive:   active,
		Color:      req.Color,
	}
}

func (h *handlers) listCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.Cards.List(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cards == nil {
		cards = []core.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *handlers) createCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Cards.Create(r.Context(), UserID(r.Context()), req.card())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *handlers) getCard(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Cards.Get(r.Context(), UserID(r.Context()), idParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handlers) updateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Cards.Update(r.Context(), UserID(r.Context()), idParam(r), req.card())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handlers) deleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Cards.Delete(r.Context(), UserID(r.Context()), idParam(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) cardStatement(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query(), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.svc.Cards.Statement(r.Context(), UserID(r.Context()), idParam(r), p.Year, p.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
