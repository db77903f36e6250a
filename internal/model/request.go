package model

import (
	"time"

	"github.com/ntroshkin/explore-with-me/internal/apperr"
)

// RequestStatus is the lifecycle status of a participation request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// Request is a user's application to participate in an event.
type Request struct {
	ID          int64
	RequesterID int64
	EventID     int64
	Status      RequestStatus
	Created     time.Time
}

// InitialRequestStatus decides the status of a freshly created request:
// events that skip moderation or have an unlimited participant count
// confirm immediately, everything else waits for the initiator.
func InitialRequestStatus(e *Event) RequestStatus {
	if !e.RequestModeration || e.ParticipantLimit == 0 {
		return RequestConfirmed
	}
	return RequestPending
}

// CheckRequestCreation validates a new participation request against the
// target event. confirmed is the current count of CONFIRMED requests.
func CheckRequestCreation(e *Event, requesterID int64, confirmed int64) error {
	if requesterID == e.InitiatorID {
		return apperr.Conflict("initiator cannot request participation in their own event %d", e.ID)
	}
	if e.State != StatePublished {
		return apperr.Conflict("cannot participate in unpublished event %d", e.ID)
	}
	if e.ParticipantLimit > 0 && confirmed >= int64(e.ParticipantLimit) {
		return apperr.Conflict("participant limit of event %d has been reached", e.ID)
	}
	return nil
}

// ModerationPlan lists the request ids a bulk status change must move,
// grouped by resulting status.
type ModerationPlan struct {
	Confirm []int64
	Reject  []int64
}

// PlanModeration computes the effect of a bulk status change on an
// event's requests.
//
//   - targets: the requests named by the moderation call, all of which
//     must currently be PENDING.
//   - otherPending: ids of the event's remaining PENDING requests that
//     were not targeted, used for the limit-reached cascade.
//   - confirmed: the current count of CONFIRMED requests for the event.
//
// The plan is all-or-nothing: a confirm batch that would overflow the
// participant limit fails entirely.
func PlanModeration(e *Event, targets []Request, otherPending []int64, confirmed int64, target RequestStatus) (ModerationPlan, error) {
	var plan ModerationPlan

	for _, req := range targets {
		if req.Status != RequestPending {
			return plan, apperr.Conflict("request %d must have status PENDING, got %s", req.ID, req.Status)
		}
	}
	if e.ParticipantLimit == 0 || !e.RequestModeration {
		return plan, apperr.Conflict("event %d requires no request confirmation", e.ID)
	}

	switch target {
	case RequestConfirmed:
		total := int64(len(targets)) + confirmed
		if total > int64(e.ParticipantLimit) {
			return plan, apperr.Conflict("confirming %d requests would exceed the participant limit of event %d",
				len(targets), e.ID)
		}
		for _, req := range targets {
			plan.Confirm = append(plan.Confirm, req.ID)
		}
		// Filling the limit exactly rejects every other pending request.
		if total == int64(e.ParticipantLimit) {
			plan.Reject = append(plan.Reject, otherPending...)
		}
		return plan, nil
	case RequestRejected:
		for _, req := range targets {
			plan.Reject = append(plan.Reject, req.ID)
		}
		return plan, nil
	default:
		return plan, apperr.Validation("target status must be CONFIRMED or REJECTED, got %s", target)
	}
}
