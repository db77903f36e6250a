package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ntroshkin/explore-with-me/internal/apperr"
	"github.com/ntroshkin/explore-with-me/internal/model"
)

// CompilationRepository handles persistence for curated event compilations.
type CompilationRepository struct {
	db *pgxpool.Pool
}

// NewCompilationRepository constructs a CompilationRepository.
func NewCompilationRepository(db *pgxpool.Pool) *CompilationRepository {
	return &CompilationRepository{db: db}
}

func replaceMembers(ctx context.Context, tx pgx.Tx, compID int64, eventIDs []int64) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM compilation_events WHERE compilation_id = $1`, compID); err != nil {
		return fmt.Errorf("clear compilation events: %w", err)
	}
	for _, eventID := range eventIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO compilation_events (compilation_id, event_id) VALUES ($1, $2)`,
			compID, eventID); err != nil {
			if isForeignKeyViolation(err) {
				return apperr.NotFound("event with id=%d was not found", eventID)
			}
			return fmt.Errorf("insert compilation event: %w", err)
		}
	}
	return nil
}

// Create inserts a compilation and its member links.
func (r *CompilationRepository) Create(ctx context.Context, c *model.Compilation) (comp *model.Compilation, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO compilations (pinned, title) VALUES ($1, $2) RETURNING id`,
		c.Pinned, c.Title,
	).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("insert compilation: %w", err)
	}
	if err = replaceMembers(ctx, tx, c.ID, c.EventIDs); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return c, nil
}

// Update patches a compilation's pinned flag, title and member set.
func (r *CompilationRepository) Update(ctx context.Context, c *model.Compilation, replaceEvents bool) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE compilations SET pinned = $2, title = $3 WHERE id = $1`,
		c.ID, c.Pinned, c.Title)
	if err != nil {
		return fmt.Errorf("update compilation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("compilation with id=%d was not found", c.ID)
	}
	if replaceEvents {
		if err = replaceMembers(ctx, tx, c.ID, c.EventIDs); err != nil {
			return err
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Delete removes a compilation or reports not-found. Member links go with
// it via ON DELETE CASCADE.
func (r *CompilationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM compilations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete compilation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("compilation with id=%d was not found", id)
	}
	return nil
}

// GetByID returns a compilation with its member event ids.
func (r *CompilationRepository) GetByID(ctx context.Context, id int64) (*model.Compilation, error) {
	var c model.Compilation
	err := r.db.QueryRow(ctx,
		`SELECT id, pinned, title FROM compilations WHERE id = $1`, id,
	).Scan(&c.ID, &c.Pinned, &c.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("compilation with id=%d was not found", id)
		}
		return nil, fmt.Errorf("get compilation: %w", err)
	}
	if c.EventIDs, err = r.memberIDs(ctx, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all compilations with their member event ids.
func (r *CompilationRepository) List(ctx context.Context) ([]model.Compilation, error) {
	rows, err := r.db.Query(ctx, `SELECT id, pinned, title FROM compilations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}
	defer rows.Close()

	var comps []model.Compilation
	for rows.Next() {
		var c model.Compilation
		if err := rows.Scan(&c.ID, &c.Pinned, &c.Title); err != nil {
			return nil, fmt.Errorf("scan compilation: %w", err)
		}
		comps = append(comps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range comps {
		if comps[i].EventIDs, err = r.memberIDs(ctx, comps[i].ID); err != nil {
			return nil, err
		}
	}
	return comps, nil
}

func (r *CompilationRepository) memberIDs(ctx context.Context, compID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT event_id FROM compilation_events WHERE compilation_id = $1 ORDER BY event_id`,
		compID)
	if err != nil {
		return nil, fmt.Errorf("list compilation events: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan compilation event: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
