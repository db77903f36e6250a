package handler

import (
	"net/http"
	"strconv"

	"github.com/ntroshkin/explore-with-me/internal/model"
	"github.com/ntroshkin/explore-with-me/internal/service"
)

// CommentHandler holds the HTTP handlers for comments.
type CommentHandler struct {
	svc *service.CommentService
}

// NewCommentHandler constructs a CommentHandler.
func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// CreateComment handles POST /users/{userId}/comments?eventId=
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}
	eventID, err := strconv.ParseInt(r.URL.Query().Get("eventId"), 10, 64)
	if err != nil || eventID < 1 {
		writeValidation(w, "eventId must be a positive integer")
		return
	}
	var req model.NewCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, "invalid request body: %v", err)
		return
	}
	comment, err := h.svc.Create(r.Context(), userID, eventID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// UpdateComment handles PATCH /users/{userId}/comments/{commentId}
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req model.NewCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, "invalid request body: %v", err)
		return
	}
	comment, err := h.svc.Update(r.Context(), userID, commentID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// DeleteComment handles DELETE /users/{userId}/comments/{commentId}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), userID, commentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminDeleteComment handles DELETE /admin/comments/{commentId}
func (h *CommentHandler) AdminDeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.AdminDelete(r.Context(), commentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEventComments handles GET /comments/{eventId}
func (h *CommentHandler) GetEventComments(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, err)
		return
	}
	comments, err := h.svc.GetByEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, err)
		return
	}
	if comments == nil {
		comments = []model.CommentDto{}
	}
	writeJSON(w, http.StatusOK, comments)
}
