package handler

import (
	"net/http"

	"github.com/ntroshkin/explore-with-me/internal/model"
	"github.com/ntroshkin/explore-with-me/internal/service"
)

// CompilationHandler holds the HTTP handlers for compilations.
type CompilationHandler struct {
	svc *service.CompilationService
}

// NewCompilationHandler constructs a CompilationHandler.
func NewCompilationHandler(svc *service.CompilationService) *CompilationHandler {
	return &CompilationHandler{svc: svc}
}

// CreateCompilation handles POST /admin/compilations
func (h *CompilationHandler) CreateCompilation(w http.ResponseWriter, r *http.Request) {
	var req model.NewCompilationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, "invalid request body: %v", err)
		return
	}
	comp, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comp)
}

// UpdateCompilation handles PATCH /admin/compilations/{compId}
func (h *CompilationHandler) UpdateCompilation(w http.ResponseWriter, r *http.Request) {
	compID, err := pathID(r, "compId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req model.UpdateCompilationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, "invalid request body: %v", err)
		return
	}
	comp, err := h.svc.Update(r.Context(), compID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comp)
}

// DeleteCompilation handles DELETE /admin/compilations/{compId}
func (h *CompilationHandler) DeleteCompilation(w http.ResponseWriter, r *http.Request) {
	compID, err := pathID(r, "compId")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), compID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCompilations handles GET /compilations
func (h *CompilationHandler) GetCompilations(w http.ResponseWriter, r *http.Request) {
	pinned, err := queryBoolPtr(r, "pinned")
	if err != nil {
		writeError(w, err)
		return
	}
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
	comps, err := h.svc.GetAll(r.Context(), pinned, from, size)
	if err != nil {
		writeError(w, err)
		return
	}
	if comps == nil {
		comps = []model.CompilationDto{}
	}
	writeJSON(w, http.StatusOK, comps)
}

// GetCompilation handles GET /compilations/{compId}
func (h *CompilationHandler) GetCompilation(w http.ResponseWriter, r *http.Request) {
	compID, err := pathID(r, "compId")
	if err != nil {
		writeError(w, err)
		return
	}
	comp, err := h.svc.GetByID(r.Context(), compID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comp)
}
