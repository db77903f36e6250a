package handler

import (
	"net/http"

	"github.com/ntroshkin/explore-with-me/internal/model"
	"github.com/ntroshkin/explore-with-me/internal/service"
)

// CategoryHandler holds the HTTP handlers for categories.
type CategoryHandler struct {
	svc *service.CategoryService
}

// NewCategoryHandler constructs a CategoryHandler.
func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// CreateCategory handles POST /admin/categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req model.NewCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, "invalid request body: %v", err)
		return
	}
	cat, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

// UpdateCategory handles PATCH /admin/categories/{catId}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	catID, err := pathID(r, "catId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req model.NewCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, "invalid request body: %v", err)
		return
	}
	cat, err := h.svc.Update(r.Context(), catID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// DeleteCategory handles DELETE /admin/categories/{catId}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	catID, err := pathID(r, "catId")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), catID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCategories handles GET /categories
func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	from, err := queryInt(r, "from", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	size, err := queryInt(r, "size", 10)
	if err != nil {
		writeError(w, err)
		return
	}
	cats, err := h.svc.GetAll(r.Context(), from, size)
	if err != nil {
		writeError(w, err)
		return
	}
	if cats == nil {
		cats = []model.CategoryDto{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// GetCategory handles GET /categories/{catId}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	catID, err := pathID(r, "catId")
	if err != nil {
		writeError(w, err)
		return
	}
	cat, err := h.svc.GetByID(r.Context(), catID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}
