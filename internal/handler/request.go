package handler

import (
	"net/http"
	"strconv"

	"github.com/ntroshkin/explore-with-me/internal/model"
	"github.com/ntroshkin/explore-with-me/internal/service"
)

// RequestHandler holds the HTTP handlers for participation requests.
type RequestHandler struct {
	svc *service.RequestService
}

// NewRequestHandler constructs a RequestHandler.
func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

// GetUserRequests handles GET /users/{userId}/requests
func (h *RequestHandler) GetUserRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}
	requests, err := h.svc.GetUserRequests(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if requests == nil {
		requests = []model.RequestDto{}
	}
	writeJSON(w, http.StatusOK, requests)
}

// CreateRequest handles POST /users/{userId}/requests?eventId=
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
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
	request, err := h.svc.Create(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

// CancelRequest handles PATCH /users/{userId}/requests/{requestId}/cancel
func (h *RequestHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}
	requestID, err := pathID(r, "requestId")
	if err != nil {
		writeError(w, err)
		return
	}
	request, err := h.svc.Cancel(r.Context(), userID, requestID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

// GetEventRequests handles GET /users/{userId}/events/{eventId}/requests
func (h *RequestHandler) GetEventRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, err)
		return
	}
	requests, err := h.svc.GetEventRequests(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, err)
		return
	}
	if requests == nil {
		requests = []model.RequestDto{}
	}
	writeJSON(w, http.StatusOK, requests)
}

// ModerateRequests handles PATCH /users/{userId}/events/{eventId}/requests
func (h *RequestHandler) ModerateRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, err)
		return
	}
	var upd model.StatusUpdateRequest
	if err := decodeJSON(r, &upd); err != nil {
		writeValidation(w, "invalid request body: %v", err)
		return
	}
	result, err := h.svc.Moderate(r.Context(), userID, eventID, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	if result.ConfirmedRequests == nil {
		result.ConfirmedRequests = []model.RequestDto{}
	}
	if result.RejectedRequests == nil {
		result.RejectedRequests = []model.RequestDto{}
	}
	writeJSON(w, http.StatusOK, result)
}
