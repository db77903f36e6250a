package service

import (
	"context"
	"strings"

	"github.com/ntroshkin/explore-with-me/internal/apperr"
	"github.com/ntroshkin/explore-with-me/internal/model"
)

// CommentService orchestrates comments on events.
type CommentService struct {
	users    UserStore
	events   EventStore
	comments CommentStore
}

// NewCommentService constructs a CommentService with its dependencies.
func NewCommentService(users UserStore, events EventStore, comments CommentStore) *CommentService {
	return &CommentService{users: users, events: events, comments: comments}
}

// Create adds a comment by userID on eventID.
func (s *CommentService) Create(ctx context.Context, userID, eventID int64, req model.NewCommentRequest) (*model.CommentDto, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperr.Validation("comment text must not be blank")
	}
	comment, err := s.comments.Create(ctx, &model.Comment{
		Text:     req.Text,
		EventID:  eventID,
		AuthorID: userID,
	})
	if err != nil {
		return nil, err
	}
	dto := toCommentDto(comment, user)
	return &dto, nil
}

// Update edits a comment. Only its author may do so.
func (s *CommentService) Update(ctx context.Context, userID, commentID int64, req model.NewCommentRequest) (*model.CommentDto, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, apperr.Conflict("only the author may edit comment %d", commentID)
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperr.Validation("comment text must not be blank")
	}
	if err := s.comments.UpdateText(ctx, commentID, req.Text); err != nil {
		return nil, err
	}
	comment.Text = req.Text
	dto := toCommentDto(comment, user)
	return &dto, nil
}

// Delete removes a comment on behalf of its author.
func (s *CommentService) Delete(ctx context.Context, userID, commentID int64) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		return apperr.Conflict("only the author may delete comment %d", commentID)
	}
	return s.comments.Delete(ctx, commentID)
}

// AdminDelete removes any comment without an author check.
func (s *CommentService) AdminDelete(ctx context.Context, commentID int64) error {
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}

// GetByEvent returns all comments on one event.
func (s *CommentService) GetByEvent(ctx context.Context, eventID int64) ([]model.CommentDto, error) {
	comments, err := s.comments.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	authorIDs := make([]int64, 0, len(comments))
	seen := map[int64]bool{}
	for i := range comments {
		if !seen[comments[i].AuthorID] {
			seen[comments[i].AuthorID] = true
			authorIDs = append(authorIDs, comments[i].AuthorID)
		}
	}
	authors := map[int64]model.User{}
	if len(authorIDs) > 0 {
		users, err := s.users.List(ctx, authorIDs)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			authors[u.ID] = u
		}
	}
	dtos := make([]model.CommentDto, 0, len(comments))
	for i := range comments {
		author := authors[comments[i].AuthorID]
		dtos = append(dtos, toCommentDto(&comments[i], &author))
	}
	return dtos, nil
}

func toCommentDto(c *model.Comment, author *model.User) model.CommentDto {
	return model.CommentDto{
		ID:      c.ID,
		Text:    c.Text,
		Author:  toUserShortDto(author),
		Created: model.NewDateTime(c.Created),
	}
}
