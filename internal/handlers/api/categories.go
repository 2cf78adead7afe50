package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/forgecommerce/catalog/internal/services/category"
)

// categoryJSON is the wire representation of a category.
type categoryJSON struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	ParentID  *uuid.UUID `json:"parent_id"`
	SortOrder int32      `json:"sort_order"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// categoryRequest is the create/update request body. IsActive defaults to
// true when omitted.
type categoryRequest struct {
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id"`
	SortOrder int32      `json:"sort_order"`
	IsActive  *bool      `json:"is_active"`
}

func categoryToJSON(c category.Category) categoryJSON {
	return categoryJSON{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		ParentID:  c.ParentID,
		SortOrder: c.SortOrder,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ListCategories handles GET /api/v1/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)

	filter := category.Filter{
		Page:  page,
		Size:  size,
		Query: r.URL.Query().Get("q"),
	}
	if v := r.URL.Query().Get("parent_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid parent_id"})
			return
		}
		filter.ParentID = &id
	}

	categories, total, err := h.categorySvc.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}

	result := make([]categoryJSON, len(categories))
	for i, c := range categories {
		result[i] = categoryToJSON(c)
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data:       result,
		Page:       page,
		TotalPages: totalPages(total, size),
		Total:      total,
	})
}

// GetCategory handles GET /api/v1/categories/{id}
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid category id"})
		return
	}

	c, err := h.categorySvc.Get(r.Context(), id)
	if err != nil {
		h.writeCategoryError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, categoryToJSON(c))
}

// CreateCategory handles POST /api/v1/categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid request body"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	c, err := h.categorySvc.Create(r.Context(), category.CreateParams{
		Name:      req.Name,
		ParentID:  req.ParentID,
		SortOrder: req.SortOrder,
		IsActive:  isActive,
	})
	if err != nil {
		h.writeCategoryError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, categoryToJSON(c))
}

// UpdateCategory handles PATCH /api/v1/categories/{id}
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid category id"})
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid request body"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	c, err := h.categorySvc.Update(r.Context(), id, category.UpdateParams{
		Name:      req.Name,
		ParentID:  req.ParentID,
		SortOrder: req.SortOrder,
		IsActive:  isActive,
	})
	if err != nil {
		h.writeCategoryError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, categoryToJSON(c))
}

// DeleteCategory handles DELETE /api/v1/categories/{id}
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid category id"})
		return
	}

	if err := h.categorySvc.Delete(r.Context(), id); err != nil {
		h.writeCategoryError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeCategoryError maps service errors to HTTP responses.
func (h *Handler) writeCategoryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, category.ErrNotFound),
		errors.Is(err, category.ErrParentNotFound):
		writeJSON(w, http.StatusNotFound, errorJSON{Error: err.Error()})
	case errors.Is(err, category.ErrNameRequired),
		errors.Is(err, category.ErrSelfParent):
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
	case errors.Is(err, category.ErrHasChildren),
		errors.Is(err, category.ErrHasCatalogs),
		errors.Is(err, category.ErrSlugTaken):
		writeJSON(w, http.StatusConflict, errorJSON{Error: err.Error()})
	default:
		h.logger.Error("category request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
	}
}
