package web

import (
	"net/http"

	"giftbox-manager/internal/app"
	"giftbox-manager/internal/core"
)

// listMaterials handles GET /api/materials.
func (h *Handler) listMaterials(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListMaterials(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// createMaterial handles POST /api/materials.
func (h *Handler) createMaterial(w http.ResponseWriter, r *http.Request) {
	var req app.MaterialRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	material, err := h.svc.CreateMaterial(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, material)
}

// updateMaterial handles PUT /api/materials/{id}.
func (h *Handler) updateMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "invalid material id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req app.MaterialRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	material, err := h.svc.UpdateMaterial(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, material)
}

// deleteMaterial handles DELETE /api/materials/{id}.
func (h *Handler) deleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "invalid material id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteMaterial(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// matchMaterials handles GET /api/materials/match?name=...
func (h *Handler) matchMaterials(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, r, "name query parameter is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	matches, err := h.svc.MatchMaterials(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	type response struct {
		Matches []core.MaterialMatch `json:"matches"`
	}
	writeJSON(w, http.StatusOK, response{Matches: matches})
}
