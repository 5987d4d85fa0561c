package web

import (
	"net/http"

	"giftbox-manager/internal/app"
	"giftbox-manager/internal/core"
)

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	type response struct {
		Products []core.Product `json:"products"`
	}
	writeJSON(w, http.StatusOK, response{Products: products})
}

// getRecipe handles GET /api/products/{id}/recipe.
func (h *Handler) getRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	entries, err := h.svc.GetRecipe(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	type response struct {
		Entries []core.RecipeEntry `json:"entries"`
	}
	writeJSON(w, http.StatusOK, response{Entries: entries})
}

// productCost handles GET /api/products/{id}/cost.
func (h *Handler) productCost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	report, err := h.svc.ProductCost(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// addRecipeEntry handles POST /api/recipes.
func (h *Handler) addRecipeEntry(w http.ResponseWriter, r *http.Request) {
	var req app.RecipeEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.svc.AddRecipeEntry(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// updateRecipeEntry handles PUT /api/recipes/{id}.
func (h *Handler) updateRecipeEntry(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "invalid recipe entry id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Quantity string `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.svc.UpdateRecipeEntry(r.Context(), id, req.Quantity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// deleteRecipeEntry handles DELETE /api/recipes/{id}.
func (h *Handler) deleteRecipeEntry(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "invalid recipe entry id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteRecipeEntry(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
