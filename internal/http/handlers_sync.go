package http

import (
	"net/http"

	"finboard/internal/log"
)

func (h *handlers) hydrate(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	res, err := h.svc.Hydrator.Hydrate(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Hydration finished",
		log.FieldOperation, log.OpHydrate,
		"imported", res.Imported,
		"skipped", res.Skipped,
		"failed", res.Failed)
	writeJSON(w, http.StatusOK, res)
}
