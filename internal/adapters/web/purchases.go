package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"giftbox-manager/internal/app"
	"giftbox-manager/internal/core"
)

// maxUploadBytes caps fiscal document uploads. NF-e XMLs are small; the
// margin covers receipt HTML pages with inlined assets.
const maxUploadBytes = 10 << 20 // 10 MB

// listPurchases handles GET /api/purchases.
func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPurchases(r.Context(), limitParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// getPurchase handles GET /api/purchases/{id}.
func (h *Handler) getPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "invalid purchase id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	purchase, err := h.svc.GetPurchase(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

// createPurchase handles POST /api/purchases.
func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req app.CreatePurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	purchase, err := h.svc.CreatePurchase(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, purchase)
}

// updatePurchase handles PUT /api/purchases/{id}.
func (h *Handler) updatePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "invalid purchase id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req app.UpdatePurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	purchase, err := h.svc.UpdatePurchase(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

// deletePurchase handles DELETE /api/purchases/{id}.
func (h *Handler) deletePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "invalid purchase id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeletePurchase(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// importDocument handles POST /api/purchases/import (multipart form with a
// "document" file and an optional "installments" field).
func (h *Handler) importDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, "invalid multipart upload: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("document")
	if err != nil {
		writeError(w, r, "document file is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, "failed to read upload", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	installments, _ := strconv.Atoi(r.FormValue("installments"))

	outcome, err := h.svc.ImportDocument(r.Context(), data, installments)
	if err != nil {
		if errors.Is(err, core.ErrDocumentImported) {
			writeError(w, r, "this document was already imported", "CONFLICT", http.StatusConflict)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	if outcome.Purchase == nil {
		// Parse failure: surface the parser's message as a client error.
		writeError(w, r, outcome.Message, "UNPARSEABLE_DOCUMENT", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

// confirmLineMatch handles POST /api/purchases/lines/{lineID}/confirm. A null
// or absent material_id creates a new material from the line.
func (h *Handler) confirmLineMatch(w http.ResponseWriter, r *http.Request) {
	lineID, err := idParam(r, "lineID")
	if err != nil {
		writeError(w, r, "invalid line id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		MaterialID *int `json:"material_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	material, err := h.svc.ConfirmLineMatch(r.Context(), lineID, req.MaterialID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, material)
}
