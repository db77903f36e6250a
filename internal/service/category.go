package service

import (
	"context"
	"strings"

	"github.com/ntroshkin/explore-with-me/internal/apperr"
	"github.com/ntroshkin/explore-with-me/internal/model"
)

// CategoryService orchestrates category management.
type CategoryService struct {
	categories CategoryStore
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(categories CategoryStore) *CategoryService {
	return &CategoryService{categories: categories}
}

// Create adds a new category.
func (s *CategoryService) Create(ctx context.Context, req model.NewCategoryRequest) (*model.CategoryDto, error) {
	if err := checkCategoryName(req.Name); err != nil {
		return nil, err
	}
	cat, err := s.categories.Create(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	dto := toCategoryDto(cat)
	return &dto, nil
}

// Update renames a category.
func (s *CategoryService) Update(ctx context.Context, catID int64, req model.NewCategoryRequest) (*model.CategoryDto, error) {
	if err := checkCategoryName(req.Name); err != nil {
		return nil, err
	}
	cat, err := s.categories.Update(ctx, catID, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	dto := toCategoryDto(cat)
	return &dto, nil
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, catID int64) error {
	return s.categories.Delete(ctx, catID)
}

// GetByID returns a single category.
func (s *CategoryService) GetByID(ctx context.Context, catID int64) (*model.CategoryDto, error) {
	cat, err := s.categories.GetByID(ctx, catID)
	if err != nil {
		return nil, err
	}
	dto := toCategoryDto(cat)
	return &dto, nil
}

// GetAll returns categories, paginated.
func (s *CategoryService) GetAll(ctx context.Context, from, size int) ([]model.CategoryDto, error) {
	if err := checkPaging(from, size); err != nil {
		return nil, err
	}
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	cats = paginate(cats, from, size)
	dtos := make([]model.CategoryDto, 0, len(cats))
	for i := range cats {
		dtos = append(dtos, toCategoryDto(&cats[i]))
	}
	return dtos, nil
}

func checkCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("category name must not be blank")
	}
	if len([]rune(name)) > 50 {
		return apperr.Validation("category name must not exceed 50 characters")
	}
	return nil
}
