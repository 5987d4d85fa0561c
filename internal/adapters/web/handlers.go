package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"giftbox-manager/internal/app"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
	logger    *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string, logger *zap.Logger) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Auth (public) ─────────────────────────────────────────────────────────
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Document upload: body limit is managed inside the handler (multipart, up to 10 MB).
		r.Post("/api/purchases/import", h.importDocument)

		// All other protected endpoints: 1 MB body limit to prevent unbounded request abuse.
		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20)) // 1 MB

			r.Get("/api/auth/me", h.me)

			// ── Dashboard ─────────────────────────────────────────────────────
			r.Get("/api/summary", h.summary)
			r.Get("/api/export/history", h.exportHistory)

			// ── Materials ─────────────────────────────────────────────────────
			r.Get("/api/materials", h.listMaterials)
			r.Post("/api/materials", h.createMaterial)
			r.Get("/api/materials/match", h.matchMaterials)
			r.Put("/api/materials/{id}", h.updateMaterial)
			r.Delete("/api/materials/{id}", h.deleteMaterial)

			// ── Purchases ─────────────────────────────────────────────────────
			r.Get("/api/purchases", h.listPurchases)
			r.Post("/api/purchases", h.createPurchase)
			r.Get("/api/purchases/{id}", h.getPurchase)
			r.Put("/api/purchases/{id}", h.updatePurchase)
			r.Delete("/api/purchases/{id}", h.deletePurchase)
			r.Post("/api/purchases/lines/{lineID}/confirm", h.confirmLineMatch)

			// ── Installments ──────────────────────────────────────────────────
			r.Get("/api/installments", h.listPayables)
			r.Get("/api/installments/upcoming", h.listUpcoming)
			r.Post("/api/installments/{id}/pay", h.markInstallmentPaid)
			r.Post("/api/installments/{id}/unpay", h.markInstallmentPending)

			// ── Products & recipes ────────────────────────────────────────────
			r.Get("/api/products", h.listProducts)
			r.Get("/api/products/{id}/recipe", h.getRecipe)
			r.Get("/api/products/{id}/cost", h.productCost)
			r.Post("/api/recipes", h.addRecipeEntry)
			r.Put("/api/recipes/{id}", h.updateRecipeEntry)
			r.Delete("/api/recipes/{id}", h.deleteRecipeEntry)

			// ── Sales & deliveries ────────────────────────────────────────────
			r.Get("/api/sales", h.listSales)
			r.Post("/api/sales", h.createSale)
			r.Delete("/api/sales/{id}", h.deleteSale)
			r.Get("/api/deliveries", h.listDeliveryCosts)
			r.Post("/api/deliveries", h.createDeliveryCost)
			r.Delete("/api/deliveries/{id}", h.deleteDeliveryCost)

			// ── External lookups ──────────────────────────────────────────────
			r.Get("/api/lookup/cep/{cep}", h.lookupCEP)
			r.Get("/api/lookup/nfe/{accessKey}", h.fetchDocument)
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

// idParam extracts a numeric URL parameter.
func idParam(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}

// limitParam reads the ?limit query parameter; zero means service default.
func limitParam(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return n
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
