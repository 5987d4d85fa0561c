package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// lookupCEP handles GET /api/lookup/cep/{cep}.
func (h *Handler) lookupCEP(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.LookupCEP(r.Context(), chi.URLParam(r, "cep"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// fetchDocument handles GET /api/lookup/nfe/{accessKey}. Fetch failures are
// part of the result payload so the frontend can offer manual upload.
func (h *Handler) fetchDocument(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.FetchDocumentByKey(r.Context(), chi.URLParam(r, "accessKey"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
