// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
//
// Services depend on small store interfaces rather than concrete
// repositories so the business rules are testable against in-memory
// fakes without a database.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ntroshkin/explore-with-me/internal/apperr"
	"github.com/ntroshkin/explore-with-me/internal/model"
	"github.com/ntroshkin/explore-with-me/internal/repository"
)

// UserStore is the persistence surface for users.
type UserStore interface {
	Create(ctx context.Context, email, name string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, ids []int64) ([]model.User, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryStore is the persistence surface for categories.
type CategoryStore interface {
	Create(ctx context.Context, name string) (*model.Category, error)
	Update(ctx context.Context, id int64, name string) (*model.Category, error)
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Delete(ctx context.Context, id int64) error
}

// EventStore is the persistence surface for events.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) (*model.Event, error)
	GetByID(ctx context.Context, id int64) (*model.Event, error)
	Update(ctx context.Context, e *model.Event) error
	SetViews(ctx context.Context, id, views int64) error
	ListByInitiator(ctx context.Context, userID int64) ([]model.Event, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Event, error)
	ListPublished(ctx context.Context) ([]model.Event, error)
	ListAdmin(ctx context.Context, f repository.AdminFilter) ([]model.Event, error)
	CountConfirmed(ctx context.Context, eventID int64) (int64, error)
	CountConfirmedBatch(ctx context.Context, eventIDs []int64) (map[int64]int64, error)
}

// RequestStore is the persistence surface for participation requests.
type RequestStore interface {
	Create(ctx context.Context, requesterID, eventID int64) (*model.Request, error)
	GetByID(ctx context.Context, id int64) (*model.Request, error)
	Cancel(ctx context.Context, id int64) (*model.Request, error)
	ListByRequester(ctx context.Context, userID int64) ([]model.Request, error)
	ListByEvent(ctx context.Context, eventID int64) ([]model.Request, error)
	Moderate(ctx context.Context, eventID int64, requestIDs []int64, target model.RequestStatus) (confirmed, rejected []model.Request, err error)
}

// CommentStore is the persistence surface for comments.
type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) (*model.Comment, error)
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	UpdateText(ctx context.Context, id int64, text string) error
	Delete(ctx context.Context, id int64) error
	ListByEvent(ctx context.Context, eventID int64) ([]model.Comment, error)
}

// CompilationStore is the persistence surface for compilations.
type CompilationStore interface {
	Create(ctx context.Context, c *model.Compilation) (*model.Compilation, error)
	Update(ctx context.Context, c *model.Compilation, replaceEvents bool) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.Compilation, error)
	List(ctx context.Context) ([]model.Compilation, error)
}

// StatsClient records endpoint hits and serves aggregated view counts.
type StatsClient interface {
	Hit(ctx context.Context, uri, ip string)
	Views(ctx context.Context, uris []string) (map[string]int64, error)
}

// paginate applies the API's offset pagination: skip from items, return
// at most size.
func paginate[T any](items []T, from, size int) []T {
	if from >= len(items) {
		return nil
	}
	items = items[from:]
	if size >= 0 && size < len(items) {
		items = items[:size]
	}
	return items
}

// checkPaging validates the standard from/size query parameters.
func checkPaging(from, size int) error {
	if from < 0 {
		return apperr.Validation("from must not be negative, got %d", from)
	}
	if size <= 0 {
		return apperr.Validation("size must be positive, got %d", size)
	}
	return nil
}

// requireText validates a required text field's presence and length.
func requireText(field, value string, min, max int) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation("%s must not be blank", field)
	}
	if n := len([]rune(value)); n < min || n > max {
		return apperr.Validation("%s length must be between %d and %d, got %d", field, min, max, n)
	}
	return nil
}

// eventURI is the stats URI under which views of one event are recorded.
func eventURI(id int64) string {
	return fmt.Sprintf("/events/%d", id)
}
