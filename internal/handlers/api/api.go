// Package api exposes the catalog taxonomy over HTTP as a versioned JSON
// API.
package api

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/forgecommerce/catalog/internal/services/catalog"
	"github.com/forgecommerce/catalog/internal/services/category"
)

// Handler holds dependencies for the catalog API handlers.
type Handler struct {
	categorySvc *category.Service
	catalogSvc  *catalog.Service
	logger      *slog.Logger
}

// NewHandler creates an API handler with all required dependencies.
func NewHandler(categorySvc *category.Service, catalogSvc *catalog.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		categorySvc: categorySvc,
		catalogSvc:  catalogSvc,
		logger:      logger,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/categories", h.ListCategories)
	mux.HandleFunc("GET /api/v1/categories/{id}", h.GetCategory)
	mux.HandleFunc("POST /api/v1/categories", h.CreateCategory)
	mux.HandleFunc("PATCH /api/v1/categories/{id}", h.UpdateCategory)
	mux.HandleFunc("DELETE /api/v1/categories/{id}", h.DeleteCategory)

	mux.HandleFunc("GET /api/v1/catalogs", h.ListCatalogs)
	mux.HandleFunc("GET /api/v1/catalogs/{id}", h.GetCatalog)
	mux.HandleFunc("POST /api/v1/catalogs", h.CreateCatalog)
	mux.HandleFunc("PATCH /api/v1/catalogs/{id}", h.UpdateCatalog)
	mux.HandleFunc("DELETE /api/v1/catalogs/{id}", h.DeleteCatalog)
}

// listResponse is the standard paginated list response wrapper.
type listResponse struct {
	Data       any   `json:"data"`
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	Total      int64 `json:"total"`
}

// errorJSON is the error response format.
type errorJSON struct {
	Error string `json:"error"`
}

// writeJSON marshals v as JSON and writes it to the response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// At this point headers are already sent; just log the error.
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// parsePagination extracts page and size from query parameters with defaults.
func parsePagination(r *http.Request) (page, size int) {
	page = 1
	size = 10

	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}

	if v := r.URL.Query().Get("size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
			if size > 250 {
				size = 250
			}
		}
	}

	return page, size
}

func totalPages(total int64, size int) int {
	return int(math.Ceil(float64(total) / float64(size)))
}
