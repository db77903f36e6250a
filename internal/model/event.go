package model

import (
	"time"

	"github.com/ntroshkin/explore-with-me/internal/apperr"
)

// State is the publication lifecycle state of an event.
// PENDING may move to PUBLISHED or CANCELED; both of those are terminal.
type State string

const (
	StatePending   State = "PENDING"
	StatePublished State = "PUBLISHED"
	StateCanceled  State = "CANCELED"
)

// Valid reports whether s is one of the known event states.
func (s State) Valid() bool {
	switch s {
	case StatePending, StatePublished, StateCanceled:
		return true
	}
	return false
}

// AdminStateAction is a lifecycle action only an administrator may take.
type AdminStateAction string

const (
	ActionPublishEvent AdminStateAction = "PUBLISH_EVENT"
	ActionRejectEvent  AdminStateAction = "REJECT_EVENT"
)

// UserStateAction is a lifecycle action the event's initiator may take.
type UserStateAction string

const (
	ActionSendToReview UserStateAction = "SEND_TO_REVIEW"
	ActionCancelReview UserStateAction = "CANCEL_REVIEW"
)

// Location is a geographic point attached to an event.
type Location struct {
	Lat float32 `json:"lat"`
	Lon float32 `json:"lon"`
}

// Event is a user-created, moderated, schedulable activity that other
// users can request to join.
type Event struct {
	ID                int64
	Annotation        string
	CategoryID        int64
	CreatedOn         time.Time
	Description       string
	EventDate         time.Time
	InitiatorID       int64
	Location          Location
	Paid              bool
	ParticipantLimit  int32
	PublishedOn       *time.Time
	RequestModeration bool
	State             State
	Title             string
	Views             int64
}

// ApplyAdminAction transitions the event per an administrative action.
// Publish and reject are only legal while the event is PENDING.
func (e *Event) ApplyAdminAction(action AdminStateAction, now time.Time) error {
	if e.State != StatePending {
		return apperr.Conflict("cannot %s event %d: state is %s, only pending events can be published or rejected",
			action, e.ID, e.State)
	}
	switch action {
	case ActionPublishEvent:
		e.State = StatePublished
		published := now.Truncate(time.Second)
		e.PublishedOn = &published
	case ActionRejectEvent:
		e.State = StateCanceled
	default:
		return apperr.Validation("unknown admin state action %q", action)
	}
	return nil
}

// ApplyUserAction transitions the event per an initiator action.
// The caller has already verified the event is not PUBLISHED.
func (e *Event) ApplyUserAction(action UserStateAction) error {
	switch action {
	case ActionSendToReview:
		e.State = StatePending
	case ActionCancelReview:
		e.State = StateCanceled
	default:
		return apperr.Validation("unknown user state action %q", action)
	}
	return nil
}

// ValidateAdminEventDate enforces the administrative rule: the event date
// must be strictly in the future.
func ValidateAdminEventDate(eventDate, now time.Time) error {
	if !eventDate.After(now) {
		return apperr.Validation("event date %s must be in the future",
			eventDate.Format(DateTimeLayout))
	}
	return nil
}

// ValidateUserEventDate enforces the initiator rule: the event date must
// be at least two hours ahead of now. Intentionally stricter than the
// admin rule.
func ValidateUserEventDate(eventDate, now time.Time) error {
	if eventDate.Sub(now) < 2*time.Hour {
		return apperr.Validation("event date %s must be at least 2 hours ahead",
			eventDate.Format(DateTimeLayout))
	}
	return nil
}
