package http

import (
	"context"
	"net/http"

	"finboard/internal/core"
)

type goalRequest struct {
	Name   string     `json:"name"`
	Target core.Money `json:"target"`
}

type amountRequest struct {
	Amount core.Money `json:"amount"`
}

type goalMovement struct {
	Goal        core.Goal        `json:"goal"`
	Transaction core.Transaction `json:"transaction"`
}

func (h *handlers) getGoal(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Goal.Get(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *handlers) setGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := h.svc.Goal.Set(r.Context(), UserID(r.Context()), req.Name, req.Target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *handlers) depositGoal(w http.ResponseWriter, r *http.Request) {
	h.moveGoal(w, r, h.svc.Goal.Deposit)
}

func (h *handlers) withdrawGoal(w http.ResponseWriter, r *http.Request) {
	h.moveGoal(w, r, h.svc.Goal.Withdraw)
}

func (h *handlers) moveGoal(w http.ResponseWriter, r *http.Request, move func(ctx context.Context, userID string, amount core.Money) (core.Goal, core.Transaction, error)) {
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, tx, err := move(r.Context(), UserID(r.Context()), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goalMovement{Goal: g, Transaction: tx})
}
