package service

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/ntroshkin/explore-with-me/internal/apperr"
	"github.com/ntroshkin/explore-with-me/internal/model"
)

type fakeCompilations struct {
	seq   int64
	comps map[int64]*model.Compilation
}

func newFakeCompilations() *fakeCompilations {
	return &fakeCompilations{comps: map[int64]*model.Compilation{}}
}

func (f *fakeCompilations) Create(_ context.Context, c *model.Compilation) (*model.Compilation, error) {
	f.seq++
	cp := *c
	cp.ID = f.seq
	f.comps[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeCompilations) Update(_ context.Context, c *model.Compilation, replaceEvents bool) error {
	stored, ok := f.comps[c.ID]
	if !ok {
		return apperr.NotFound("compilation with id=%d was not found", c.ID)
	}
	stored.Pinned = c.Pinned
	stored.Title = c.Title
	if replaceEvents {
		stored.EventIDs = append([]int64(nil), c.EventIDs...)
	}
	return nil
}

func (f *fakeCompilations) Delete(_ context.Context, id int64) error {
	if _, ok := f.comps[id]; !ok {
		return apperr.NotFound("compilation with id=%d was not found", id)
	}
	delete(f.comps, id)
	return nil
}

func (f *fakeCompilations) GetByID(_ context.Context, id int64) (*model.Compilation, error) {
	c, ok := f.comps[id]
	if !ok {
		return nil, apperr.NotFound("compilation with id=%d was not found", id)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCompilations) List(_ context.Context) ([]model.Compilation, error) {
	var out []model.Compilation
	for _, c := range f.comps {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type compilationFixture struct {
	*eventFixture
	comps *fakeCompilations
	svc   *CompilationService
}

func newCompilationFixture(t *testing.T) *compilationFixture {
	t.Helper()
	ef := newEventFixture(t)
	comps := newFakeCompilations()
	return &compilationFixture{
		eventFixture: ef,
		comps:        comps,
		svc:          NewCompilationService(comps, ef.events, ef.users, ef.categories),
	}
}

func TestCompilationCreate(t *testing.T) {
	f := newCompilationFixture(t)
	ctx := context.Background()
	e1 := f.publish(t, model.Event{})
	e2 := f.publish(t, model.Event{})

	dto, err := f.svc.Create(ctx, model.NewCompilationRequest{
		Title:  "Weekend picks",
		Pinned: true,
		Events: []int64{e1.ID, e2.ID},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Title != "Weekend picks" || !dto.Pinned || len(dto.Events) != 2 {
		t.Errorf("dto = %+v", dto)
	}

	// An empty compilation is fine; only the title is constrained.
	if _, err := f.svc.Create(ctx, model.NewCompilationRequest{Title: "Empty"}); err != nil {
		t.Errorf("empty events: %v", err)
	}
	if _, err := f.svc.Create(ctx, model.NewCompilationRequest{Title: "  "}); !apperr.IsValidation(err) {
		t.Errorf("blank title: err = %v, want validation", err)
	}
	if _, err := f.svc.Create(ctx, model.NewCompilationRequest{Title: strings.Repeat("t", 51)}); !apperr.IsValidation(err) {
		t.Errorf("51-char title: err = %v, want validation", err)
	}
}

func TestCompilationUpdate(t *testing.T) {
	f := newCompilationFixture(t)
	ctx := context.Background()
	e1 := f.publish(t, model.Event{})
	e2 := f.publish(t, model.Event{})

	created, err := f.svc.Create(ctx, model.NewCompilationRequest{Title: "Picks", Events: []int64{e1.ID}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Absent events field leaves members untouched.
	pinned := true
	dto, err := f.svc.Update(ctx, created.ID, model.UpdateCompilationRequest{Pinned: &pinned})
	if err != nil {
		t.Fatalf("update pinned: %v", err)
	}
	if !dto.Pinned || len(dto.Events) != 1 {
		t.Errorf("dto = %+v", dto)
	}

	// Present events field replaces the member set wholesale.
	events := []int64{e2.ID}
	dto, err = f.svc.Update(ctx, created.ID, model.UpdateCompilationRequest{Events: &events})
	if err != nil {
		t.Fatalf("replace events: %v", err)
	}
	if len(dto.Events) != 1 || dto.Events[0].ID != e2.ID {
		t.Errorf("events = %+v", dto.Events)
	}

	empty := []int64{}
	dto, err = f.svc.Update(ctx, created.ID, model.UpdateCompilationRequest{Events: &empty})
	if err != nil {
		t.Fatalf("clear events: %v", err)
	}
	if len(dto.Events) != 0 {
		t.Errorf("events = %+v, want cleared", dto.Events)
	}

	if _, err := f.svc.Update(ctx, 999, model.UpdateCompilationRequest{}); !apperr.IsNotFound(err) {
		t.Errorf("missing compilation: err = %v, want not found", err)
	}
}

func TestCompilationGetAll_PinnedFilter(t *testing.T) {
	f := newCompilationFixture(t)
	ctx := context.Background()

	for i, pinned := range []bool{true, false, true} {
		if _, err := f.svc.Create(ctx, model.NewCompilationRequest{
			Title:  strings.Repeat("c", i+1),
			Pinned: pinned,
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	pinned := true
	got, err := f.svc.GetAll(ctx, &pinned, 0, 10)
	if err != nil || len(got) != 2 {
		t.Errorf("pinned: got %d, err %v", len(got), err)
	}

	got, err = f.svc.GetAll(ctx, nil, 0, 10)
	if err != nil || len(got) != 3 {
		t.Errorf("all: got %d, err %v", len(got), err)
	}

	got, err = f.svc.GetAll(ctx, nil, 2, 10)
	if err != nil || len(got) != 1 {
		t.Errorf("paginated: got %d, err %v", len(got), err)
	}
}

func TestCompilationDelete(t *testing.T) {
	f := newCompilationFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, model.NewCompilationRequest{Title: "Picks"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.svc.Delete(ctx, created.ID); !apperr.IsNotFound(err) {
		t.Errorf("second delete: err = %v, want not found", err)
	}
}
