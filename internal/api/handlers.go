package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maltedev/amazon-top-products/internal/models"
	"github.com/maltedev/amazon-top-products/internal/store"
)

// Handlers serves the read-only API over the product store.
type Handlers struct {
	store  store.Store
	logger *slog.Logger
}

func NewHandlers(st store.Store, logger *slog.Logger) *Handlers {
	return &Handlers{
		store:  st,
		logger: logger.With("component", "api"),
	}
}

func (h *Handlers) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{asin}", h.GetProduct)
		r.Get("/stats", h.GetStats)
	})
}

type listResponse struct {
	Success  bool                    `json:"success"`
	Count    int                     `json:"count"`
	Products []*models.ProductRecord `json:"products"`
}

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []*models.ProductRecord{}
	}

	h.respondJSON(w, http.StatusOK, listResponse{
		Success:  true,
		Count:    len(products),
		Products: products,
	})
}

type productResponse struct {
	Success bool                  `json:"success"`
	Product *models.ProductRecord `json:"product"`
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	asin := chi.URLParam(r, "asin")

	product, err := h.store.Get(r.Context(), asin)
	if errors.Is(err, store.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get product", "asin", asin, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	h.respondJSON(w, http.StatusOK, productResponse{Success: true, Product: product})
}

type statsResponse struct {
	Success bool        `json:"success"`
	Stats   store.Stats `json:"stats"`
}

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to get stats", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	stats.AveragePrice = round2(stats.AveragePrice)
	stats.AverageRating = round2(stats.AverageRating)

	h.respondJSON(w, http.StatusOK, statsResponse{Success: true, Stats: *stats})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]any{"success": false, "error": message})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
