package handler

import (
	"net/http"

	"github.com/ntroshkin/explore-with-me/internal/model"
	"github.com/ntroshkin/explore-with-me/internal/repository"
	"github.com/ntroshkin/explore-with-me/internal/service"
)

// EventHandler holds the HTTP handlers for the event endpoints.
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// GetPublicEvents handles GET /events
func (h *EventHandler) GetPublicEvents(w http.ResponseWriter, r *http.Request) {
	q := service.PublicQuery{Text: r.URL.Query().Get("text")}
	var err error
	if q.Categories, err = queryIDs(r, "categories"); err != nil {
		writeError(w, err)
		return
	}
	if q.Paid, err = queryBoolPtr(r, "paid"); err != nil {
		writeError(w, err)
		return
	}
	if q.RangeStart, err = queryTime(r, "rangeStart"); err != nil {
		writeError(w, err)
		return
	}
	if q.RangeEnd, err = queryTime(r, "rangeEnd"); err != nil {
		writeError(w, err)
		return
	}
	if q.OnlyAvailable, err = queryBool(r, "onlyAvailable", false); err != nil {
		writeError(w, err)
		return
	}
	q.Sort = service.EventSort(r.URL.Query().Get("sort"))
	if q.From, err = queryInt(r, "from", 0); err != nil {
		writeError(w, err)
		return
	}
	if q.Size, err = queryInt(r, "size", 10); err != nil {
		writeError(w, err)
		return
	}

	events, err := h.svc.GetPublicEvents(r.Context(), q, r.URL.Path, clientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []model.EventShortDto{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetPublicEvent handles GET /events/{id}
func (h *EventHandler) GetPublicEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	event, err := h.svc.GetPublicEvent(r.Context(), id, r.URL.Path, clientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// GetUserEvents handles GET /users/{userId}/events
func (h *EventHandler) GetUserEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
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
	events, err := h.svc.GetUserEvents(r.Context(), userID, from, size)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []model.EventShortDto{}
	}
	writeJSON(w, http.StatusOK, events)
}

// CreateEvent handles POST /users/{userId}/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req model.NewEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, "invalid request body: %v", err)
		return
	}
	event, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// GetUserEvent handles GET /users/{userId}/events/{eventId}
func (h *EventHandler) GetUserEvent(w http.ResponseWriter, r *http.Request) {
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
	event, err := h.svc.GetUserEvent(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// UpdateUserEvent handles PATCH /users/{userId}/events/{eventId}
func (h *EventHandler) UpdateUserEvent(w http.ResponseWriter, r *http.Request) {
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
	var req model.UpdateEventUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, "invalid request body: %v", err)
		return
	}
	event, err := h.svc.UpdateUserEvent(r.Context(), userID, eventID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// GetAdminEvents handles GET /admin/events
func (h *EventHandler) GetAdminEvents(w http.ResponseWriter, r *http.Request) {
	var f repository.AdminFilter
	var err error
	if f.Users, err = queryIDs(r, "users"); err != nil {
		writeError(w, err)
		return
	}
	for _, raw := range r.URL.Query()["states"] {
		state := model.State(raw)
		if !state.Valid() {
			writeValidation(w, "unknown event state %q", raw)
			return
		}
		f.States = append(f.States, state)
	}
	if f.Categories, err = queryIDs(r, "categories"); err != nil {
		writeError(w, err)
		return
	}
	if f.RangeStart, err = queryTime(r, "rangeStart"); err != nil {
		writeError(w, err)
		return
	}
	if f.RangeEnd, err = queryTime(r, "rangeEnd"); err != nil {
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

	events, err := h.svc.GetAdminEvents(r.Context(), f, from, size)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []model.EventDto{}
	}
	writeJSON(w, http.StatusOK, events)
}

// UpdateAdminEvent handles PATCH /admin/events/{eventId}
func (h *EventHandler) UpdateAdminEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req model.UpdateEventAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, "invalid request body: %v", err)
		return
	}
	event, err := h.svc.UpdateAdmin(r.Context(), eventID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}
