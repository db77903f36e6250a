package service

import (
	"context"

	"github.com/ntroshkin/explore-with-me/internal/model"
)

// Entity-to-payload mapping shared by the services.

func toUserDto(u *model.User) model.UserDto {
	return model.UserDto{ID: u.ID, Email: u.Email, Name: u.Name}
}

func toUserShortDto(u *model.User) model.UserShortDto {
	return model.UserShortDto{ID: u.ID, Name: u.Name}
}

func toCategoryDto(c *model.Category) model.CategoryDto {
	return model.CategoryDto{ID: c.ID, Name: c.Name}
}

func toRequestDto(r *model.Request) model.RequestDto {
	return model.RequestDto{
		ID:        r.ID,
		Created:   model.NewDateTime(r.Created),
		Event:     r.EventID,
		Requester: r.RequesterID,
		Status:    r.Status,
	}
}

func toRequestDtos(requests []model.Request) []model.RequestDto {
	dtos := make([]model.RequestDto, 0, len(requests))
	for i := range requests {
		dtos = append(dtos, toRequestDto(&requests[i]))
	}
	return dtos
}

func toEventDto(e *model.Event, cat *model.Category, initiator *model.User, confirmed int64) model.EventDto {
	dto := model.EventDto{
		ID:                e.ID,
		Annotation:        e.Annotation,
		Category:          toCategoryDto(cat),
		ConfirmedRequests: confirmed,
		CreatedOn:         model.NewDateTime(e.CreatedOn),
		Description:       e.Description,
		EventDate:         model.NewDateTime(e.EventDate),
		Initiator:         toUserShortDto(initiator),
		Location:          e.Location,
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		RequestModeration: e.RequestModeration,
		State:             e.State,
		Title:             e.Title,
		Views:             e.Views,
	}
	if e.PublishedOn != nil {
		published := model.NewDateTime(*e.PublishedOn)
		dto.PublishedOn = &published
	}
	return dto
}

func toEventShortDto(e *model.Event, cat *model.Category, initiator *model.User, confirmed int64) model.EventShortDto {
	return model.EventShortDto{
		ID:                e.ID,
		Annotation:        e.Annotation,
		ConfirmedRequests: confirmed,
		EventDate:         model.NewDateTime(e.EventDate),
		Paid:              e.Paid,
		Title:             e.Title,
		Views:             e.Views,
		Category:          toCategoryDto(cat),
		Initiator:         toUserShortDto(initiator),
	}
}

// eventContext carries the lookups needed to map a batch of events.
type eventContext struct {
	categories map[int64]model.Category
	initiators map[int64]model.User
	confirmed  map[int64]int64
}

// loadEventContext batch-fetches the categories, initiators and confirmed
// counts referenced by events.
func loadEventContext(ctx context.Context, events []model.Event,
	users UserStore, categories CategoryStore, store EventStore) (*eventContext, error) {

	ec := &eventContext{
		categories: map[int64]model.Category{},
		initiators: map[int64]model.User{},
	}
	if len(events) == 0 {
		ec.confirmed = map[int64]int64{}
		return ec, nil
	}

	var eventIDs, userIDs []int64
	seenUser := map[int64]bool{}
	for i := range events {
		eventIDs = append(eventIDs, events[i].ID)
		if !seenUser[events[i].InitiatorID] {
			seenUser[events[i].InitiatorID] = true
			userIDs = append(userIDs, events[i].InitiatorID)
		}
	}

	cats, err := categories.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		ec.categories[c.ID] = c
	}
	initiators, err := users.List(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	for _, u := range initiators {
		ec.initiators[u.ID] = u
	}
	if ec.confirmed, err = store.CountConfirmedBatch(ctx, eventIDs); err != nil {
		return nil, err
	}
	return ec, nil
}

func (ec *eventContext) shortDto(e *model.Event) model.EventShortDto {
	cat := ec.categories[e.CategoryID]
	initiator := ec.initiators[e.InitiatorID]
	return toEventShortDto(e, &cat, &initiator, ec.confirmed[e.ID])
}

func (ec *eventContext) fullDto(e *model.Event) model.EventDto {
	cat := ec.categories[e.CategoryID]
	initiator := ec.initiators[e.InitiatorID]
	return toEventDto(e, &cat, &initiator, ec.confirmed[e.ID])
}
