package service

import (
	"context"
	"strings"

	"github.com/ntroshkin/explore-with-me/internal/apperr"
	"github.com/ntroshkin/explore-with-me/internal/model"
)

// UserService orchestrates administrative user management.
type UserService struct {
	users UserStore
}

// NewUserService constructs a UserService.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// GetAll returns users restricted to ids when non-empty, paginated.
func (s *UserService) GetAll(ctx context.Context, ids []int64, from, size int) ([]model.UserDto, error) {
	if err := checkPaging(from, size); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, ids)
	if err != nil {
		return nil, err
	}
	users = paginate(users, from, size)
	dtos := make([]model.UserDto, 0, len(users))
	for i := range users {
		dtos = append(dtos, toUserDto(&users[i]))
	}
	return dtos, nil
}

// Create registers a new user.
func (s *UserService) Create(ctx context.Context, req model.NewUserRequest) (*model.UserDto, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, apperr.Validation("user name must not be blank")
	}
	if !isValidEmail(req.Email) {
		return nil, apperr.Validation("email %q is not a valid email address", req.Email)
	}
	user, err := s.users.Create(ctx, req.Email, req.Name)
	if err != nil {
		return nil, err
	}
	dto := toUserDto(user)
	return &dto, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	return s.users.Delete(ctx, userID)
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
