package service

import (
	"context"

	"github.com/ntroshkin/explore-with-me/internal/apperr"
	"github.com/ntroshkin/explore-with-me/internal/model"
)

// RequestService orchestrates participation requests and their moderation.
type RequestService struct {
	users    UserStore
	events   EventStore
	requests RequestStore
}

// NewRequestService constructs a RequestService with its dependencies.
func NewRequestService(users UserStore, events EventStore, requests RequestStore) *RequestService {
	return &RequestService{users: users, events: events, requests: requests}
}

// GetUserRequests returns all requests filed by userID.
func (s *RequestService) GetUserRequests(ctx context.Context, userID int64) ([]model.RequestDto, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	requests, err := s.requests.ListByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toRequestDtos(requests), nil
}

// Create files a participation request from userID for eventID. The
// state, limit and duplicate checks run inside the store's transaction.
func (s *RequestService) Create(ctx context.Context, userID, eventID int64) (*model.RequestDto, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	req, err := s.requests.Create(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	dto := toRequestDto(req)
	return &dto, nil
}

// Cancel moves a request to CANCELED. The requester is only verified to
// exist, not to own the request; cancel is idempotent on an already
// canceled request.
func (s *RequestService) Cancel(ctx context.Context, userID, requestID int64) (*model.RequestDto, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	req, err := s.requests.Cancel(ctx, requestID)
	if err != nil {
		return nil, err
	}
	dto := toRequestDto(req)
	return &dto, nil
}

// GetEventRequests returns all participation requests for an event,
// queried by its initiator.
func (s *RequestService) GetEventRequests(ctx context.Context, userID, eventID int64) ([]model.RequestDto, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	requests, err := s.requests.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return toRequestDtos(requests), nil
}

// Moderate applies a bulk status change to an event's pending requests
// and reports the event's full confirmed and rejected sets.
func (s *RequestService) Moderate(ctx context.Context, userID, eventID int64, upd model.StatusUpdateRequest) (*model.StatusUpdateResult, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	if len(upd.RequestIDs) == 0 {
		return nil, apperr.Validation("requestIds must not be empty")
	}
	confirmed, rejected, err := s.requests.Moderate(ctx, eventID, upd.RequestIDs, upd.Status)
	if err != nil {
		return nil, err
	}
	return &model.StatusUpdateResult{
		ConfirmedRequests: toRequestDtos(confirmed),
		RejectedRequests:  toRequestDtos(rejected),
	}, nil
}
