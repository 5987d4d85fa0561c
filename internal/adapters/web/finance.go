package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"giftbox-manager/internal/app"
)

// summary handles GET /api/summary.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Summary)
}

// exportHistory handles GET /api/export/history — streams an XLSX download.
func (h *Handler) exportHistory(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportHistory(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	filename := fmt.Sprintf("historico_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

// listPayables handles GET /api/installments.
func (h *Handler) listPayables(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPayables(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// listUpcoming handles GET /api/installments/upcoming?days=30.
func (h *Handler) listUpcoming(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	result, err := h.svc.ListUpcomingInstallments(r.Context(), days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// markInstallmentPaid handles POST /api/installments/{id}/pay.
func (h *Handler) markInstallmentPaid(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "invalid installment id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	installment, err := h.svc.MarkInstallmentPaid(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, installment)
}

// markInstallmentPending handles POST /api/installments/{id}/unpay.
func (h *Handler) markInstallmentPending(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "invalid installment id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	installment, err := h.svc.MarkInstallmentPending(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, installment)
}

// listSales handles GET /api/sales.
func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListSales(r.Context(), limitParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// createSale handles POST /api/sales.
func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req app.SaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sale, err := h.svc.CreateSale(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

// deleteSale handles DELETE /api/sales/{id}.
func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "invalid sale id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteSale(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listDeliveryCosts handles GET /api/deliveries.
func (h *Handler) listDeliveryCosts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListDeliveryCosts(r.Context(), limitParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// createDeliveryCost handles POST /api/deliveries.
func (h *Handler) createDeliveryCost(w http.ResponseWriter, r *http.Request) {
	var req app.DeliveryCostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cost, err := h.svc.CreateDeliveryCost(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cost)
}

// deleteDeliveryCost handles DELETE /api/deliveries/{id}.
func (h *Handler) deleteDeliveryCost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "invalid delivery cost id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteDeliveryCost(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
