package handler

import (
	"net/http"

	"github.com/ntroshkin/explore-with-me/internal/model"
	"github.com/ntroshkin/explore-with-me/internal/service"
)

// UserHandler holds the HTTP handlers for administrative user management.
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetUsers handles GET /admin/users
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	ids, err := queryIDs(r, "ids")
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
	users, err := h.svc.GetAll(r.Context(), ids, from, size)
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []model.UserDto{}
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateUser handles POST /admin/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.NewUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, "invalid request body: %v", err)
		return
	}
	user, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// DeleteUser handles DELETE /admin/users/{userId}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
