package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ntroshkin/explore-with-me/internal/apperr"
	"github.com/ntroshkin/explore-with-me/internal/model"
)

type eventFixture struct {
	users      *fakeUsers
	categories *fakeCategories
	events     *fakeEvents
	requests   *fakeRequests
	stats      *fakeStats
	svc        *EventService

	initiator *model.User
	category  *model.Category
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	f := &eventFixture{
		users:      newFakeUsers(),
		categories: newFakeCategories(),
		events:     newFakeEvents(),
		stats:      &fakeStats{},
	}
	f.requests = newFakeRequests(f.events)
	f.svc = NewEventService(f.events, f.users, f.categories, f.stats)
	f.initiator = f.users.add("Alice", "alice@example.com")
	f.category = f.categories.add("concerts")
	return f
}

func (f *eventFixture) publish(t *testing.T, e model.Event) *model.Event {
	t.Helper()
	if e.InitiatorID == 0 {
		e.InitiatorID = f.initiator.ID
	}
	if e.CategoryID == 0 {
		e.CategoryID = f.category.ID
	}
	if e.State == "" {
		e.State = model.StatePublished
	}
	if e.EventDate.IsZero() {
		e.EventDate = time.Now().Add(24 * time.Hour)
	}
	if e.Annotation == "" {
		e.Annotation = "an annotation long enough to satisfy validation"
	}
	if e.Title == "" {
		e.Title = "event"
	}
	return f.events.add(e)
}

func validNewEvent(f *eventFixture) model.NewEventRequest {
	return model.NewEventRequest{
		Annotation:  strings.Repeat("a", 25),
		Category:    f.category.ID,
		Description: strings.Repeat("d", 30),
		EventDate:   model.NewDateTime(time.Now().Add(48 * time.Hour)),
		Location:    &model.Location{Lat: 55.75, Lon: 37.62},
		Title:       "Open air",
	}
}

func TestEventCreate_Defaults(t *testing.T) {
	f := newEventFixture(t)

	dto, err := f.svc.Create(context.Background(), f.initiator.ID, validNewEvent(f))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.State != model.StatePending {
		t.Errorf("state = %s, want PENDING", dto.State)
	}
	if dto.Paid || dto.ParticipantLimit != 0 || !dto.RequestModeration {
		t.Errorf("defaults: paid=%v limit=%d moderation=%v, want false/0/true",
			dto.Paid, dto.ParticipantLimit, dto.RequestModeration)
	}
	if dto.Category.ID != f.category.ID || dto.Initiator.ID != f.initiator.ID {
		t.Errorf("category/initiator not resolved: %+v", dto)
	}
}

func TestEventCreate_Validation(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	req := validNewEvent(f)
	req.Annotation = "too short"
	if _, err := f.svc.Create(ctx, f.initiator.ID, req); !apperr.IsValidation(err) {
		t.Errorf("short annotation: err = %v, want validation", err)
	}

	req = validNewEvent(f)
	req.Location = nil
	if _, err := f.svc.Create(ctx, f.initiator.ID, req); !apperr.IsValidation(err) {
		t.Errorf("missing location: err = %v, want validation", err)
	}

	req = validNewEvent(f)
	req.EventDate = model.NewDateTime(time.Now().Add(-time.Hour))
	if _, err := f.svc.Create(ctx, f.initiator.ID, req); !apperr.IsValidation(err) {
		t.Errorf("past date: err = %v, want validation", err)
	}

	req = validNewEvent(f)
	req.Category = 999
	if _, err := f.svc.Create(ctx, f.initiator.ID, req); !apperr.IsNotFound(err) {
		t.Errorf("missing category: err = %v, want not found", err)
	}
	if _, err := f.svc.Create(ctx, 999, validNewEvent(f)); !apperr.IsNotFound(err) {
		t.Errorf("missing user: err = %v, want not found", err)
	}
}

func TestUpdateUserEvent_PublishedLocked(t *testing.T) {
	f := newEventFixture(t)
	e := f.publish(t, model.Event{})

	title := "New title"
	_, err := f.svc.UpdateUserEvent(context.Background(), f.initiator.ID, e.ID,
		model.UpdateEventUserRequest{Title: &title})
	if !apperr.IsConflict(err) {
		t.Errorf("update published: err = %v, want conflict", err)
	}
}

func TestUpdateUserEvent_CancelAndResubmit(t *testing.T) {
	f := newEventFixture(t)
	e := f.publish(t, model.Event{State: model.StatePending})
	ctx := context.Background()

	cancel := model.ActionCancelReview
	dto, err := f.svc.UpdateUserEvent(ctx, f.initiator.ID, e.ID,
		model.UpdateEventUserRequest{StateAction: &cancel})
	if err != nil {
		t.Fatalf("cancel review: %v", err)
	}
	if dto.State != model.StateCanceled {
		t.Errorf("state = %s, want CANCELED", dto.State)
	}

	resubmit := model.ActionSendToReview
	dto, err = f.svc.UpdateUserEvent(ctx, f.initiator.ID, e.ID,
		model.UpdateEventUserRequest{StateAction: &resubmit})
	if err != nil {
		t.Fatalf("send to review: %v", err)
	}
	if dto.State != model.StatePending {
		t.Errorf("state = %s, want PENDING", dto.State)
	}
}

func TestUpdateUserEvent_DateRule(t *testing.T) {
	f := newEventFixture(t)
	e := f.publish(t, model.Event{State: model.StatePending})

	soon := model.NewDateTime(time.Now().Add(time.Hour))
	_, err := f.svc.UpdateUserEvent(context.Background(), f.initiator.ID, e.ID,
		model.UpdateEventUserRequest{EventDate: &soon})
	if !apperr.IsValidation(err) {
		t.Errorf("1h ahead: err = %v, want validation", err)
	}
}

func TestUpdateAdmin_PublishTwice(t *testing.T) {
	f := newEventFixture(t)
	e := f.publish(t, model.Event{State: model.StatePending})
	ctx := context.Background()

	publish := model.ActionPublishEvent
	dto, err := f.svc.UpdateAdmin(ctx, e.ID, model.UpdateEventAdminRequest{StateAction: &publish})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if dto.State != model.StatePublished || dto.PublishedOn == nil {
		t.Errorf("published event: state=%s publishedOn=%v", dto.State, dto.PublishedOn)
	}

	_, err = f.svc.UpdateAdmin(ctx, e.ID, model.UpdateEventAdminRequest{StateAction: &publish})
	if !apperr.IsConflict(err) {
		t.Errorf("second publish: err = %v, want conflict", err)
	}

	reject := model.ActionRejectEvent
	_, err = f.svc.UpdateAdmin(ctx, e.ID, model.UpdateEventAdminRequest{StateAction: &reject})
	if !apperr.IsConflict(err) {
		t.Errorf("reject published: err = %v, want conflict", err)
	}
}

func TestGetPublicEvents_FilterSortPaginate(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	other := f.categories.add("theatre")

	now := time.Now()
	f.publish(t, model.Event{Annotation: "Jazz night under the stars", EventDate: now.Add(72 * time.Hour), Views: 5, Paid: true})
	f.publish(t, model.Event{Annotation: "Classical morning recital here", EventDate: now.Add(24 * time.Hour), Views: 50})
	f.publish(t, model.Event{Annotation: "Improv JAZZ workshop session", EventDate: now.Add(48 * time.Hour), Views: 20, CategoryID: other.ID})
	f.publish(t, model.Event{Annotation: "Pending jazz gig not yet live", EventDate: now.Add(24 * time.Hour), State: model.StatePending})

	// Text match is case-insensitive and never surfaces unpublished events.
	got, err := f.svc.GetPublicEvents(ctx, PublicQuery{Text: "jazz", From: 0, Size: 10}, "/events", "1.2.3.4")
	if err != nil {
		t.Fatalf("text filter: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("text filter: %d events, want 2", len(got))
	}
	// Default sort is by event date ascending.
	if !got[0].EventDate.Time.Before(got[1].EventDate.Time) {
		t.Error("default sort: not ordered by event date")
	}

	got, err = f.svc.GetPublicEvents(ctx, PublicQuery{Sort: SortViews, From: 0, Size: 10}, "/events", "1.2.3.4")
	if err != nil {
		t.Fatalf("views sort: %v", err)
	}
	if len(got) != 3 || got[0].Views != 50 || got[2].Views != 5 {
		t.Errorf("views sort: %+v", got)
	}

	paid := true
	got, err = f.svc.GetPublicEvents(ctx, PublicQuery{Paid: &paid, From: 0, Size: 10}, "/events", "1.2.3.4")
	if err != nil || len(got) != 1 {
		t.Errorf("paid filter: got %d events, err %v", len(got), err)
	}

	got, err = f.svc.GetPublicEvents(ctx, PublicQuery{Categories: []int64{other.ID}, From: 0, Size: 10}, "/events", "1.2.3.4")
	if err != nil || len(got) != 1 {
		t.Errorf("category filter: got %d events, err %v", len(got), err)
	}

	got, err = f.svc.GetPublicEvents(ctx, PublicQuery{From: 1, Size: 1}, "/events", "1.2.3.4")
	if err != nil || len(got) != 1 {
		t.Errorf("pagination: got %d events, err %v", len(got), err)
	}

	if len(f.stats.hits) == 0 {
		t.Error("listing did not record a hit")
	}
}

func TestGetPublicEvents_RangeValidation(t *testing.T) {
	f := newEventFixture(t)
	start := time.Now().Add(48 * time.Hour)
	end := time.Now().Add(24 * time.Hour)

	_, err := f.svc.GetPublicEvents(context.Background(),
		PublicQuery{RangeStart: &start, RangeEnd: &end, From: 0, Size: 10}, "/events", "1.2.3.4")
	if !apperr.IsValidation(err) {
		t.Errorf("end before start: err = %v, want validation", err)
	}
}

func TestGetPublicEvents_OnlyAvailable(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	requester := f.users.add("Bob", "bob@example.com")

	full := f.publish(t, model.Event{ParticipantLimit: 1, RequestModeration: false})
	f.publish(t, model.Event{ParticipantLimit: 5})
	if _, err := f.requests.Create(ctx, requester.ID, full.ID); err != nil {
		t.Fatalf("seed request: %v", err)
	}

	got, err := f.svc.GetPublicEvents(ctx, PublicQuery{OnlyAvailable: true, From: 0, Size: 10}, "/events", "1.2.3.4")
	if err != nil {
		t.Fatalf("only available: %v", err)
	}
	if len(got) != 1 || got[0].ID == full.ID {
		t.Errorf("only available: %+v, want only the event with free slots", got)
	}
}

func TestGetPublicEvent_ViewsRefresh(t *testing.T) {
	f := newEventFixture(t)
	e := f.publish(t, model.Event{Views: 3})
	f.stats.views = map[string]int64{eventURI(e.ID): 7}

	dto, err := f.svc.GetPublicEvent(context.Background(), e.ID, eventURI(e.ID), "1.2.3.4")
	if err != nil {
		t.Fatalf("get public event: %v", err)
	}
	if dto.Views != 7 {
		t.Errorf("views = %d, want 7 from stats", dto.Views)
	}
	if f.events.events[e.ID].Views != 7 {
		t.Errorf("stored views = %d, want 7", f.events.events[e.ID].Views)
	}
	if len(f.stats.hits) != 1 || f.stats.hits[0] != eventURI(e.ID) {
		t.Errorf("hits = %v", f.stats.hits)
	}
}

func TestGetPublicEvent_NotPublished(t *testing.T) {
	f := newEventFixture(t)
	e := f.publish(t, model.Event{State: model.StatePending})

	_, err := f.svc.GetPublicEvent(context.Background(), e.ID, eventURI(e.ID), "1.2.3.4")
	if !apperr.IsNotFound(err) {
		t.Errorf("pending event via public api: err = %v, want not found", err)
	}
}
