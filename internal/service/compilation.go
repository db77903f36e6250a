package service

import (
	"context"

	"github.com/ntroshkin/explore-with-me/internal/model"
)

// CompilationService orchestrates curated event compilations.
type CompilationService struct {
	compilations CompilationStore
	events       EventStore
	users        UserStore
	categories   CategoryStore
}

// NewCompilationService constructs a CompilationService.
func NewCompilationService(compilations CompilationStore, events EventStore, users UserStore, categories CategoryStore) *CompilationService {
	return &CompilationService{
		compilations: compilations,
		events:       events,
		users:        users,
		categories:   categories,
	}
}

// Create adds a new compilation.
func (s *CompilationService) Create(ctx context.Context, req model.NewCompilationRequest) (*model.CompilationDto, error) {
	if err := requireText("title", req.Title, 1, 50); err != nil {
		return nil, err
	}
	comp, err := s.compilations.Create(ctx, &model.Compilation{
		Pinned:   req.Pinned,
		Title:    req.Title,
		EventIDs: req.Events,
	})
	if err != nil {
		return nil, err
	}
	return s.toDto(ctx, comp)
}

// Update patches a compilation.
func (s *CompilationService) Update(ctx context.Context, compID int64, req model.UpdateCompilationRequest) (*model.CompilationDto, error) {
	comp, err := s.compilations.GetByID(ctx, compID)
	if err != nil {
		return nil, err
	}
	if req.Pinned != nil {
		comp.Pinned = *req.Pinned
	}
	if req.Title != nil {
		if err := requireText("title", *req.Title, 1, 50); err != nil {
			return nil, err
		}
		comp.Title = *req.Title
	}
	replaceEvents := req.Events != nil
	if replaceEvents {
		comp.EventIDs = *req.Events
	}
	if err := s.compilations.Update(ctx, comp, replaceEvents); err != nil {
		return nil, err
	}
	return s.toDto(ctx, comp)
}

// Delete removes a compilation.
func (s *CompilationService) Delete(ctx context.Context, compID int64) error {
	return s.compilations.Delete(ctx, compID)
}

// GetByID returns one compilation with its member events.
func (s *CompilationService) GetByID(ctx context.Context, compID int64) (*model.CompilationDto, error) {
	comp, err := s.compilations.GetByID(ctx, compID)
	if err != nil {
		return nil, err
	}
	return s.toDto(ctx, comp)
}

// GetAll returns compilations, optionally filtered by pinned, paginated.
func (s *CompilationService) GetAll(ctx context.Context, pinned *bool, from, size int) ([]model.CompilationDto, error) {
	if err := checkPaging(from, size); err != nil {
		return nil, err
	}
	comps, err := s.compilations.List(ctx)
	if err != nil {
		return nil, err
	}
	if pinned != nil {
		filtered := comps[:0]
		for _, c := range comps {
			if c.Pinned == *pinned {
				filtered = append(filtered, c)
			}
		}
		comps = filtered
	}
	comps = paginate(comps, from, size)

	dtos := make([]model.CompilationDto, 0, len(comps))
	for i := range comps {
		dto, err := s.toDto(ctx, &comps[i])
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}
	return dtos, nil
}

func (s *CompilationService) toDto(ctx context.Context, comp *model.Compilation) (*model.CompilationDto, error) {
	events, err := s.events.ListByIDs(ctx, comp.EventIDs)
	if err != nil {
		return nil, err
	}
	ec, err := loadEventContext(ctx, events, s.users, s.categories, s.events)
	if err != nil {
		return nil, err
	}
	dto := &model.CompilationDto{
		ID:     comp.ID,
		Pinned: comp.Pinned,
		Title:  comp.Title,
		Events: make([]model.EventShortDto, 0, len(events)),
	}
	for i := range events {
		dto.Events = append(dto.Events, ec.shortDto(&events[i]))
	}
	return dto, nil
}
