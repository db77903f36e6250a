package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/ntroshkin/explore-with-me/internal/apperr"
	"github.com/ntroshkin/explore-with-me/internal/model"
	"github.com/ntroshkin/explore-with-me/internal/repository"
)

// EventSort orders the public event listing.
type EventSort string

const (
	SortEventDate EventSort = "EVENT_DATE"
	SortViews     EventSort = "VIEWS"
)

// PublicQuery is the filter set of the public event listing.
type PublicQuery struct {
	Text          string
	Categories    []int64
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          EventSort
	From          int
	Size          int
}

// EventService orchestrates event lifecycle, listing and view counting.
type EventService struct {
	events     EventStore
	users      UserStore
	categories CategoryStore
	stats      StatsClient
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, users UserStore, categories CategoryStore, stats StatsClient) *EventService {
	return &EventService{events: events, users: users, categories: categories, stats: stats}
}

// Create registers a new event in PENDING state on behalf of userID.
func (s *EventService) Create(ctx context.Context, userID int64, req model.NewEventRequest) (*model.EventDto, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	cat, err := s.categories.GetByID(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	if err := requireText("annotation", req.Annotation, 20, 2000); err != nil {
		return nil, err
	}
	if err := requireText("description", req.Description, 20, 7000); err != nil {
		return nil, err
	}
	if err := requireText("title", req.Title, 3, 120); err != nil {
		return nil, err
	}
	if req.Location == nil {
		return nil, apperr.Validation("location is required")
	}
	if err := model.ValidateAdminEventDate(req.EventDate.Time, time.Now()); err != nil {
		return nil, err
	}

	event := &model.Event{
		Annotation:        req.Annotation,
		CategoryID:        cat.ID,
		Description:       req.Description,
		EventDate:         req.EventDate.Time,
		InitiatorID:       user.ID,
		Location:          *req.Location,
		RequestModeration: true,
	}
	if req.Paid != nil {
		event.Paid = *req.Paid
	}
	if req.ParticipantLimit != nil {
		if *req.ParticipantLimit < 0 {
			return nil, apperr.Validation("participant limit must not be negative")
		}
		event.ParticipantLimit = *req.ParticipantLimit
	}
	if req.RequestModeration != nil {
		event.RequestModeration = *req.RequestModeration
	}

	event, err = s.events.Create(ctx, event)
	if err != nil {
		return nil, err
	}
	dto := toEventDto(event, cat, user, 0)
	return &dto, nil
}

// GetUserEvents returns the events initiated by userID, paginated.
func (s *EventService) GetUserEvents(ctx context.Context, userID int64, from, size int) ([]model.EventShortDto, error) {
	if err := checkPaging(from, size); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	events, err := s.events.ListByInitiator(ctx, userID)
	if err != nil {
		return nil, err
	}
	events = paginate(events, from, size)
	return s.shortDtos(ctx, events)
}

// GetUserEvent returns one event's full representation for its initiator.
func (s *EventService) GetUserEvent(ctx context.Context, userID, eventID int64) (*model.EventDto, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.fullDto(ctx, event)
}

// UpdateUserEvent applies an initiator's patch. Published events are
// locked against their owner.
func (s *EventService) UpdateUserEvent(ctx context.Context, userID, eventID int64, req model.UpdateEventUserRequest) (*model.EventDto, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.State == model.StatePublished {
		return nil, apperr.Conflict("published event %d cannot be changed by its initiator", eventID)
	}

	if req.EventDate != nil {
		if err := model.ValidateUserEventDate(req.EventDate.Time, time.Now()); err != nil {
			return nil, err
		}
	}
	if err := s.applyPatch(ctx, event, eventPatch{
		Annotation:        req.Annotation,
		Category:          req.Category,
		Description:       req.Description,
		EventDate:         req.EventDate,
		Location:          req.Location,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: req.RequestModeration,
		Title:             req.Title,
	}); err != nil {
		return nil, err
	}
	if req.StateAction != nil {
		if err := event.ApplyUserAction(*req.StateAction); err != nil {
			return nil, err
		}
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	return s.fullDto(ctx, event)
}

// UpdateAdmin applies an administrative patch, including publish/reject.
func (s *EventService) UpdateAdmin(ctx context.Context, eventID int64, req model.UpdateEventAdminRequest) (*model.EventDto, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if req.EventDate != nil {
		if err := model.ValidateAdminEventDate(req.EventDate.Time, time.Now()); err != nil {
			return nil, err
		}
	}
	if err := s.applyPatch(ctx, event, eventPatch{
		Annotation:        req.Annotation,
		Category:          req.Category,
		Description:       req.Description,
		EventDate:         req.EventDate,
		Location:          req.Location,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: req.RequestModeration,
		Title:             req.Title,
	}); err != nil {
		return nil, err
	}
	if req.StateAction != nil {
		if err := event.ApplyAdminAction(*req.StateAction, time.Now()); err != nil {
			return nil, err
		}
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	return s.fullDto(ctx, event)
}

// GetAdminEvents returns events matching the admin filter, paginated.
func (s *EventService) GetAdminEvents(ctx context.Context, f repository.AdminFilter, from, size int) ([]model.EventDto, error) {
	if err := checkPaging(from, size); err != nil {
		return nil, err
	}
	events, err := s.events.ListAdmin(ctx, f)
	if err != nil {
		return nil, err
	}
	events = paginate(events, from, size)
	ec, err := loadEventContext(ctx, events, s.users, s.categories, s.events)
	if err != nil {
		return nil, err
	}
	dtos := make([]model.EventDto, 0, len(events))
	for i := range events {
		dtos = append(dtos, ec.fullDto(&events[i]))
	}
	return dtos, nil
}

// GetPublicEvents lists published events matching the public filter set
// and records the page view with the stats service. uri and ip identify
// the hit being recorded.
func (s *EventService) GetPublicEvents(ctx context.Context, q PublicQuery, uri, ip string) ([]model.EventShortDto, error) {
	if err := checkPaging(q.From, q.Size); err != nil {
		return nil, err
	}
	start := time.Now()
	if q.RangeStart != nil {
		start = *q.RangeStart
	}
	if q.RangeEnd != nil && start.After(*q.RangeEnd) {
		return nil, apperr.Validation("range end must not be before range start")
	}

	events, err := s.events.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	var confirmed map[int64]int64
	if q.OnlyAvailable {
		ids := make([]int64, 0, len(events))
		for i := range events {
			ids = append(ids, events[i].ID)
		}
		if confirmed, err = s.events.CountConfirmedBatch(ctx, ids); err != nil {
			return nil, err
		}
	}

	text := strings.ToLower(q.Text)
	wantCat := map[int64]bool{}
	for _, id := range q.Categories {
		wantCat[id] = true
	}

	filtered := events[:0]
	for i := range events {
		e := &events[i]
		if text != "" &&
			!strings.Contains(strings.ToLower(e.Annotation), text) &&
			!strings.Contains(strings.ToLower(e.Description), text) {
			continue
		}
		if len(wantCat) > 0 && !wantCat[e.CategoryID] {
			continue
		}
		if q.Paid != nil && e.Paid != *q.Paid {
			continue
		}
		if e.EventDate.Before(start) {
			continue
		}
		if q.RangeEnd != nil && e.EventDate.After(*q.RangeEnd) {
			continue
		}
		if q.OnlyAvailable && e.ParticipantLimit > 0 &&
			confirmed[e.ID] >= int64(e.ParticipantLimit) {
			continue
		}
		filtered = append(filtered, *e)
	}

	switch q.Sort {
	case SortViews:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Views > filtered[j].Views
		})
	case SortEventDate, "":
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].EventDate.Before(filtered[j].EventDate)
		})
	default:
		return nil, apperr.Validation("unknown sort %q", q.Sort)
	}
	filtered = paginate(filtered, q.From, q.Size)

	s.stats.Hit(ctx, uri, ip)
	return s.shortDtos(ctx, filtered)
}

// GetPublicEvent returns one published event, records the view and
// refreshes the event's unique view counter from the stats service.
func (s *EventService) GetPublicEvent(ctx context.Context, eventID int64, uri, ip string) (*model.EventDto, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.State != model.StatePublished {
		return nil, apperr.NotFound("published event with id=%d was not found", eventID)
	}

	s.stats.Hit(ctx, uri, ip)

	views, err := s.stats.Views(ctx, []string{eventURI(eventID)})
	if err != nil {
		// The event itself is intact; views just stay stale.
		log.Printf("stats: fetch views for event %d: %v", eventID, err)
	} else if n := views[eventURI(eventID)]; n != event.Views {
		event.Views = n
		if err := s.events.SetViews(ctx, eventID, n); err != nil {
			return nil, err
		}
	}
	return s.fullDto(ctx, event)
}

// eventPatch is the common optional-field set of the two update payloads.
type eventPatch struct {
	Annotation        *string
	Category          *int64
	Description       *string
	EventDate         *model.DateTime
	Location          *model.Location
	Paid              *bool
	ParticipantLimit  *int32
	RequestModeration *bool
	Title             *string
}

// applyPatch copies present fields onto the event, validating each.
// Date validation is caller-specific and happens before this.
func (s *EventService) applyPatch(ctx context.Context, event *model.Event, p eventPatch) error {
	if p.Category != nil {
		cat, err := s.categories.GetByID(ctx, *p.Category)
		if err != nil {
			return err
		}
		event.CategoryID = cat.ID
	}
	if p.Annotation != nil {
		if err := requireText("annotation", *p.Annotation, 20, 2000); err != nil {
			return err
		}
		event.Annotation = *p.Annotation
	}
	if p.Description != nil {
		if err := requireText("description", *p.Description, 20, 7000); err != nil {
			return err
		}
		event.Description = *p.Description
	}
	if p.EventDate != nil {
		event.EventDate = p.EventDate.Time
	}
	if p.Location != nil {
		event.Location = *p.Location
	}
	if p.Paid != nil {
		event.Paid = *p.Paid
	}
	if p.ParticipantLimit != nil {
		if *p.ParticipantLimit < 0 {
			return apperr.Validation("participant limit must not be negative")
		}
		event.ParticipantLimit = *p.ParticipantLimit
	}
	if p.RequestModeration != nil {
		event.RequestModeration = *p.RequestModeration
	}
	if p.Title != nil {
		if err := requireText("title", *p.Title, 3, 120); err != nil {
			return err
		}
		event.Title = *p.Title
	}
	return nil
}

func (s *EventService) shortDtos(ctx context.Context, events []model.Event) ([]model.EventShortDto, error) {
	ec, err := loadEventContext(ctx, events, s.users, s.categories, s.events)
	if err != nil {
		return nil, err
	}
	dtos := make([]model.EventShortDto, 0, len(events))
	for i := range events {
		dtos = append(dtos, ec.shortDto(&events[i]))
	}
	return dtos, nil
}

func (s *EventService) fullDto(ctx context.Context, event *model.Event) (*model.EventDto, error) {
	cat, err := s.categories.GetByID(ctx, event.CategoryID)
	if err != nil {
		return nil, err
	}
	initiator, err := s.users.GetByID(ctx, event.InitiatorID)
	if err != nil {
		return nil, err
	}
	confirmed, err := s.events.CountConfirmed(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	dto := toEventDto(event, cat, initiator, confirmed)
	return &dto, nil
}
