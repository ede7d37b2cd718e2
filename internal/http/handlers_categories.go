package http

import (
	"net/http"

	"finboard/internal/core"
)

type categoryRequest struct {
	Name  string               `json:"name"`
	Type  core.TransactionType `json:"type"`
	Color string               `json:"color"`
}

type reorderRequest struct {
	Type core.TransactionType `json:"type"`
	IDs  []string             `json:"ids"`
}

func (h *handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	typ := core.TransactionType(r.URL.Query().Get("type"))
	cats, err := h.svc.Categories.List(r.Context(), UserID(r.Context()), typ)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *handlers) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Categories.Create(r.Context(), UserID(r.Context()), req.Name, req.Type, req.Color)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *handlers) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Categories.Rename(r.Context(), UserID(r.Context()), idParam(r), req.Name, req.Color)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Categories.Delete(r.Context(), UserID(r.Context()), idParam(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) reorderCategories(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	userID := UserID(r.Context())
	if err := h.svc.Categories.Reorder(r.Context(), userID, req.Type, req.IDs); err != nil {
		writeError(w, r, err)
		return
	}
	cats, err := h.svc.Categories.List(r.Context(), userID, req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}
