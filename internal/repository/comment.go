package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ntroshkin/explore-with-me/internal/apperr"
	"github.com/ntroshkin/explore-with-me/internal/model"
)

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository constructs a CommentRepository.
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a new comment.
func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	c.Created = time.Now().UTC().Truncate(time.Second)
	err := r.db.QueryRow(ctx,
		`INSERT INTO comments (text, event_id, author_id, created)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Text, c.EventID, c.AuthorID, c.Created,
	).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}

// GetByID returns a single comment or a not-found error.
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	var c model.Comment
	err := r.db.QueryRow(ctx,
		`SELECT id, text, event_id, author_id, created FROM comments WHERE id = $1`, id,
	).Scan(&c.ID, &c.Text, &c.EventID, &c.AuthorID, &c.Created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("comment with id=%d was not found", id)
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

// UpdateText replaces a comment's text.
func (r *CommentRepository) UpdateText(ctx context.Context, id int64, text string) error {
	tag, err := r.db.Exec(ctx, `UPDATE comments SET text = $2 WHERE id = $1`, id, text)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("comment with id=%d was not found", id)
	}
	return nil
}

// Delete removes a comment or reports not-found.
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("comment with id=%d was not found", id)
	}
	return nil
}

// ListByEvent returns all comments on one event, oldest first.
func (r *CommentRepository) ListByEvent(ctx context.Context, eventID int64) ([]model.Comment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, text, event_id, author_id, created
		 FROM comments WHERE event_id = $1 ORDER BY created`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.EventID, &c.AuthorID, &c.Created); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
