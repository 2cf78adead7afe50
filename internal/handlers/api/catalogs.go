package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/forgecommerce/catalog/internal/services/catalog"
)

// catalogJSON is the wire representation of a catalog item.
type catalogJSON struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Code         string          `json:"code"`
	Slug         string          `json:"slug"`
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     *string         `json:"image_url"`
	Description  *string         `json:"description"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
}

// catalogRequest is the create/update request body. IsActive defaults to
// true when omitted.
type catalogRequest struct {
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url"`
	Description *string         `json:"description"`
	IsActive    *bool           `json:"is_active"`
}

func catalogToJSON(c catalog.Catalog) catalogJSON {
	return catalogJSON{
		ID:           c.ID,
		Name:         c.Name,
		Code:         c.Code,
		Slug:         c.Slug,
		CategoryID:   c.CategoryID,
		CategoryName: c.CategoryName,
		Price:        c.Price,
		ImageURL:     c.ImageURL,
		Description:  c.Description,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ListCatalogs handles GET /api/v1/catalogs
func (h *Handler) ListCatalogs(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)

	filter := catalog.Filter{
		Page:  page,
		Size:  size,
		Query: r.URL.Query().Get("q"),
	}
	if v := r.URL.Query().Get("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid category_id"})
			return
		}
		filter.CategoryID = &id
	}
	if v := r.URL.Query().Get("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid min_price"})
			return
		}
		filter.MinPrice = &d
	}
	if v := r.URL.Query().Get("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid max_price"})
			return
		}
		filter.MaxPrice = &d
	}
	if v := r.URL.Query().Get("is_active"); v != "" {
		active := v == "true" || v == "1"
		filter.IsActive = &active
	}

	items, total, err := h.catalogSvc.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list catalog items", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}

	result := make([]catalogJSON, len(items))
	for i, c := range items {
		result[i] = catalogToJSON(c)
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data:       result,
		Page:       page,
		TotalPages: totalPages(total, size),
		Total:      total,
	})
}

// GetCatalog handles GET /api/v1/catalogs/{id}
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid catalog id"})
		return
	}

	c, err := h.catalogSvc.Get(r.Context(), id)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, catalogToJSON(c))
}

// CreateCatalog handles POST /api/v1/catalogs
func (h *Handler) CreateCatalog(w http.ResponseWriter, r *http.Request) {
	var req catalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid request body"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	c, err := h.catalogSvc.Create(r.Context(), catalog.CreateParams{
		Name:        req.Name,
		Code:        req.Code,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		IsActive:    isActive,
	})
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, catalogToJSON(c))
}

// UpdateCatalog handles PATCH /api/v1/catalogs/{id}
func (h *Handler) UpdateCatalog(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid catalog id"})
		return
	}

	var req catalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid request body"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	c, err := h.catalogSvc.Update(r.Context(), id, catalog.UpdateParams{
		Name:        req.Name,
		Code:        req.Code,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		IsActive:    isActive,
	})
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, catalogToJSON(c))
}

// DeleteCatalog handles DELETE /api/v1/catalogs/{id}
func (h *Handler) DeleteCatalog(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid catalog id"})
		return
	}

	if err := h.catalogSvc.Delete(r.Context(), id); err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeCatalogError maps service errors to HTTP responses.
func (h *Handler) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound):
		writeJSON(w, http.StatusNotFound, errorJSON{Error: err.Error()})
	case errors.Is(err, catalog.ErrNameRequired),
		errors.Is(err, catalog.ErrCodeRequired),
		errors.Is(err, catalog.ErrNegativePrice):
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
	case errors.Is(err, catalog.ErrCodeTaken),
		errors.Is(err, catalog.ErrSlugTaken):
		writeJSON(w, http.StatusConflict, errorJSON{Error: err.Error()})
	default:
		h.logger.Error("catalog request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
	}
}
