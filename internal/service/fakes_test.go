package service

import (
	"context"
	"sort"
	"time"

	"github.com/ntroshkin/explore-with-me/internal/apperr"
	"github.com/ntroshkin/explore-with-me/internal/model"
	"github.com/ntroshkin/explore-with-me/internal/repository"
)

// In-memory fakes backing the service tests. They reproduce the
// repositories' observable behavior (sentinel errors, transition rules)
// without a database.

type fakeUsers struct {
	seq   int64
	users map[int64]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[int64]*model.User{}}
}

func (f *fakeUsers) add(name, email string) *model.User {
	f.seq++
	u := &model.User{ID: f.seq, Name: name, Email: email}
	f.users[u.ID] = u
	return u
}

func (f *fakeUsers) Create(_ context.Context, email, name string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return nil, apperr.Conflict("email %s already registered", email)
		}
	}
	return f.add(name, email), nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user with id=%d was not found", id)
	}
	return u, nil
}

func (f *fakeUsers) List(_ context.Context, ids []int64) ([]model.User, error) {
	var out []model.User
	if len(ids) == 0 {
		for _, u := range f.users {
			out = append(out, *u)
		}
	} else {
		for _, id := range ids {
			if u, ok := f.users[id]; ok {
				out = append(out, *u)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return apperr.NotFound("user with id=%d was not found", id)
	}
	delete(f.users, id)
	return nil
}

type fakeCategories struct {
	seq  int64
	cats map[int64]*model.Category
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{cats: map[int64]*model.Category{}}
}

func (f *fakeCategories) add(name string) *model.Category {
	f.seq++
	c := &model.Category{ID: f.seq, Name: name}
	f.cats[c.ID] = c
	return c
}

func (f *fakeCategories) Create(_ context.Context, name string) (*model.Category, error) {
	for _, c := range f.cats {
		if c.Name == name {
			return nil, apperr.Conflict("category name %q already exists", name)
		}
	}
	return f.add(name), nil
}

func (f *fakeCategories) Update(_ context.Context, id int64, name string) (*model.Category, error) {
	c, ok := f.cats[id]
	if !ok {
		return nil, apperr.NotFound("category with id=%d was not found", id)
	}
	for _, other := range f.cats {
		if other.ID != id && other.Name == name {
			return nil, apperr.Conflict("category name %q already exists", name)
		}
	}
	c.Name = name
	return c, nil
}

func (f *fakeCategories) GetByID(_ context.Context, id int64) (*model.Category, error) {
	c, ok := f.cats[id]
	if !ok {
		return nil, apperr.NotFound("category with id=%d was not found", id)
	}
	return c, nil
}

func (f *fakeCategories) List(_ context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range f.cats {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCategories) Delete(_ context.Context, id int64) error {
	if _, ok := f.cats[id]; !ok {
		return apperr.NotFound("category with id=%d was not found", id)
	}
	delete(f.cats, id)
	return nil
}

type fakeEvents struct {
	seq      int64
	events   map[int64]*model.Event
	requests *fakeRequests
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{events: map[int64]*model.Event{}}
}

func (f *fakeEvents) add(e model.Event) *model.Event {
	f.seq++
	e.ID = f.seq
	if e.State == "" {
		e.State = model.StatePending
	}
	if e.CreatedOn.IsZero() {
		e.CreatedOn = time.Now().UTC()
	}
	f.events[e.ID] = &e
	return f.events[e.ID]
}

func (f *fakeEvents) Create(_ context.Context, e *model.Event) (*model.Event, error) {
	return f.add(*e), nil
}

func (f *fakeEvents) GetByID(_ context.Context, id int64) (*model.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, apperr.NotFound("event with id=%d was not found", id)
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEvents) Update(_ context.Context, e *model.Event) error {
	if _, ok := f.events[e.ID]; !ok {
		return apperr.NotFound("event with id=%d was not found", e.ID)
	}
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeEvents) SetViews(_ context.Context, id, views int64) error {
	e, ok := f.events[id]
	if !ok {
		return apperr.NotFound("event with id=%d was not found", id)
	}
	e.Views = views
	return nil
}

func (f *fakeEvents) ListByInitiator(_ context.Context, userID int64) ([]model.Event, error) {
	var out []model.Event
	for _, e := range f.events {
		if e.InitiatorID == userID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEvents) ListByIDs(_ context.Context, ids []int64) ([]model.Event, error) {
	var out []model.Event
	for _, id := range ids {
		if e, ok := f.events[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEvents) ListPublished(_ context.Context) ([]model.Event, error) {
	var out []model.Event
	for _, e := range f.events {
		if e.State == model.StatePublished {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEvents) ListAdmin(_ context.Context, flt repository.AdminFilter) ([]model.Event, error) {
	inSet := func(v int64, set []int64) bool {
		if len(set) == 0 {
			return true
		}
		for _, s := range set {
			if s == v {
				return true
			}
		}
		return false
	}
	var out []model.Event
	for _, e := range f.events {
		if !inSet(e.InitiatorID, flt.Users) || !inSet(e.CategoryID, flt.Categories) {
			continue
		}
		if len(flt.States) > 0 {
			found := false
			for _, s := range flt.States {
				if s == e.State {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		if flt.RangeStart != nil && e.EventDate.Before(*flt.RangeStart) {
			continue
		}
		if flt.RangeEnd != nil && e.EventDate.After(*flt.RangeEnd) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEvents) confirmedCount(eventID int64) int64 {
	if f.requests == nil {
		return 0
	}
	var n int64
	for _, r := range f.requests.reqs {
		if r.EventID == eventID && r.Status == model.RequestConfirmed {
			n++
		}
	}
	return n
}

func (f *fakeEvents) CountConfirmed(_ context.Context, eventID int64) (int64, error) {
	return f.confirmedCount(eventID), nil
}

func (f *fakeEvents) CountConfirmedBatch(_ context.Context, eventIDs []int64) (map[int64]int64, error) {
	out := map[int64]int64{}
	for _, id := range eventIDs {
		if n := f.confirmedCount(id); n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

type fakeRequests struct {
	seq    int64
	reqs   map[int64]*model.Request
	events *fakeEvents
}

func newFakeRequests(events *fakeEvents) *fakeRequests {
	f := &fakeRequests{reqs: map[int64]*model.Request{}, events: events}
	events.requests = f
	return f
}

func (f *fakeRequests) Create(_ context.Context, requesterID, eventID int64) (*model.Request, error) {
	e, ok := f.events.events[eventID]
	if !ok {
		return nil, apperr.NotFound("event with id=%d was not found", eventID)
	}
	for _, r := range f.reqs {
		if r.RequesterID == requesterID && r.EventID == eventID {
			return nil, apperr.Conflict("request from user %d for event %d already exists", requesterID, eventID)
		}
	}
	if err := model.CheckRequestCreation(e, requesterID, f.events.confirmedCount(eventID)); err != nil {
		return nil, err
	}
	f.seq++
	r := &model.Request{
		ID:          f.seq,
		RequesterID: requesterID,
		EventID:     eventID,
		Status:      model.InitialRequestStatus(e),
		Created:     time.Now().UTC(),
	}
	f.reqs[r.ID] = r
	return r, nil
}

func (f *fakeRequests) GetByID(_ context.Context, id int64) (*model.Request, error) {
	r, ok := f.reqs[id]
	if !ok {
		return nil, apperr.NotFound("request with id=%d was not found", id)
	}
	return r, nil
}

func (f *fakeRequests) Cancel(_ context.Context, id int64) (*model.Request, error) {
	r, ok := f.reqs[id]
	if !ok {
		return nil, apperr.NotFound("request with id=%d was not found", id)
	}
	r.Status = model.RequestCanceled
	cp := *r
	return &cp, nil
}

func (f *fakeRequests) ListByRequester(_ context.Context, userID int64) ([]model.Request, error) {
	var out []model.Request
	for _, r := range f.reqs {
		if r.RequesterID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRequests) ListByEvent(_ context.Context, eventID int64) ([]model.Request, error) {
	var out []model.Request
	for _, r := range f.reqs {
		if r.EventID == eventID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRequests) Moderate(_ context.Context, eventID int64, requestIDs []int64, target model.RequestStatus) (confirmed, rejected []model.Request, err error) {
	e, ok := f.events.events[eventID]
	if !ok {
		return nil, nil, apperr.NotFound("event with id=%d was not found", eventID)
	}

	var targets []model.Request
	targeted := map[int64]bool{}
	for _, id := range requestIDs {
		if r, ok := f.reqs[id]; ok && r.EventID == eventID {
			targets = append(targets, *r)
			targeted[id] = true
		}
	}
	var otherPending []int64
	for _, r := range f.reqs {
		if r.EventID == eventID && r.Status == model.RequestPending && !targeted[r.ID] {
			otherPending = append(otherPending, r.ID)
		}
	}

	plan, err := model.PlanModeration(e, targets, otherPending, f.events.confirmedCount(eventID), target)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range plan.Confirm {
		f.reqs[id].Status = model.RequestConfirmed
	}
	for _, id := range plan.Reject {
		f.reqs[id].Status = model.RequestRejected
	}

	for _, r := range f.reqs {
		if r.EventID != eventID {
			continue
		}
		switch r.Status {
		case model.RequestConfirmed:
			confirmed = append(confirmed, *r)
		case model.RequestRejected:
			rejected = append(rejected, *r)
		}
	}
	sort.Slice(confirmed, func(i, j int) bool { return confirmed[i].ID < confirmed[j].ID })
	sort.Slice(rejected, func(i, j int) bool { return rejected[i].ID < rejected[j].ID })
	return confirmed, rejected, nil
}

type fakeStats struct {
	hits  []string
	views map[string]int64
	err   error
}

func (f *fakeStats) Hit(_ context.Context, uri, _ string) {
	f.hits = append(f.hits, uri)
}

func (f *fakeStats) Views(_ context.Context, uris []string) (map[string]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]int64{}
	for _, u := range uris {
		if n, ok := f.views[u]; ok {
			out[u] = n
		}
	}
	return out, nil
}
