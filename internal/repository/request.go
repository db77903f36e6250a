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

// RequestRepository handles persistence for participation requests.
//
// Creation and bulk moderation both mutate confirmed-count accounting, so
// both run inside one transaction holding a SELECT ... FOR UPDATE lock on
// the event row. Two concurrent calls against the same event serialise on
// that lock instead of each observing a stale confirmed count and jointly
// overcommitting the participant limit.
type RequestRepository struct {
	db *pgxpool.Pool
}

// NewRequestRepository constructs a RequestRepository.
func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{db: db}
}

// lockEvent loads the event row under an exclusive row lock.
func lockEvent(ctx context.Context, tx pgx.Tx, eventID int64) (*model.Event, error) {
	var e model.Event
	err := tx.QueryRow(ctx,
		`SELECT id, initiator_id, state, participant_limit, request_moderation
		 FROM events WHERE id = $1 FOR UPDATE`, eventID,
	).Scan(&e.ID, &e.InitiatorID, &e.State, &e.ParticipantLimit, &e.RequestModeration)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("event with id=%d was not found", eventID)
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	return &e, nil
}

// Create files a participation request. The event row lock keeps the
// confirmed count stable across the check and the insert.
func (r *RequestRepository) Create(ctx context.Context, requesterID, eventID int64) (req *model.Request, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	event, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	var confirmed int64
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM requests WHERE event_id = $1 AND status = $2`,
		eventID, model.RequestConfirmed,
	).Scan(&confirmed)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}

	if err = model.CheckRequestCreation(event, requesterID, confirmed); err != nil {
		return nil, err
	}

	req = &model.Request{
		RequesterID: requesterID,
		EventID:     eventID,
		Status:      model.InitialRequestStatus(event),
		Created:     time.Now().UTC().Truncate(time.Second),
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO requests (requester_id, event_id, status, created)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		req.RequesterID, req.EventID, req.Status, req.Created,
	).Scan(&req.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("request from user %d for event %d already exists",
				requesterID, eventID)
		}
		return nil, fmt.Errorf("insert request: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return req, nil
}

// GetByID returns a single request or a not-found error.
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	var req model.Request
	err := r.db.QueryRow(ctx,
		`SELECT id, requester_id, event_id, status, created FROM requests WHERE id = $1`, id,
	).Scan(&req.ID, &req.RequesterID, &req.EventID, &req.Status, &req.Created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("request with id=%d was not found", id)
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return &req, nil
}

// Cancel unconditionally moves a request to CANCELED and returns it.
// Canceling an already canceled request is a no-op on the stored state.
func (r *RequestRepository) Cancel(ctx context.Context, id int64) (*model.Request, error) {
	var req model.Request
	err := r.db.QueryRow(ctx,
		`UPDATE requests SET status = $2 WHERE id = $1
		 RETURNING id, requester_id, event_id, status, created`,
		id, model.RequestCanceled,
	).Scan(&req.ID, &req.RequesterID, &req.EventID, &req.Status, &req.Created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("request with id=%d was not found", id)
		}
		return nil, fmt.Errorf("cancel request: %w", err)
	}
	return &req, nil
}

// ListByRequester returns all requests filed by one user.
func (r *RequestRepository) ListByRequester(ctx context.Context, userID int64) ([]model.Request, error) {
	return r.list(ctx, `SELECT id, requester_id, event_id, status, created
		FROM requests WHERE requester_id = $1 ORDER BY id`, userID)
}

// ListByEvent returns all requests targeting one event.
func (r *RequestRepository) ListByEvent(ctx context.Context, eventID int64) ([]model.Request, error) {
	return r.list(ctx, `SELECT id, requester_id, event_id, status, created
		FROM requests WHERE event_id = $1 ORDER BY id`, eventID)
}

func (r *RequestRepository) list(ctx context.Context, query string, arg any) ([]model.Request, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []model.Request
	for rows.Next() {
		var req model.Request
		if err := rows.Scan(&req.ID, &req.RequesterID, &req.EventID, &req.Status, &req.Created); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// Moderate applies a bulk status change to an event's pending requests
// and returns the event's full confirmed and rejected sets afterwards.
// The whole batch commits or none of it does.
func (r *RequestRepository) Moderate(ctx context.Context, eventID int64, requestIDs []int64, target model.RequestStatus) (confirmed, rejected []model.Request, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	event, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, nil, err
	}

	// Targeted requests; ids not belonging to this event are ignored.
	var targets []model.Request
	rows, err := tx.Query(ctx,
		`SELECT id, requester_id, event_id, status, created
		 FROM requests WHERE event_id = $1 AND id = ANY($2) ORDER BY id`,
		eventID, requestIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("load target requests: %w", err)
	}
	for rows.Next() {
		var req model.Request
		if err = rows.Scan(&req.ID, &req.RequesterID, &req.EventID, &req.Status, &req.Created); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scan request: %w", err)
		}
		targets = append(targets, req)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	var confirmedCount int64
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM requests WHERE event_id = $1 AND status = $2`,
		eventID, model.RequestConfirmed,
	).Scan(&confirmedCount)
	if err != nil {
		return nil, nil, fmt.Errorf("count confirmed requests: %w", err)
	}

	targeted := make(map[int64]bool, len(targets))
	for _, t := range targets {
		targeted[t.ID] = true
	}
	var otherPending []int64
	rows, err = tx.Query(ctx,
		`SELECT id FROM requests WHERE event_id = $1 AND status = $2 ORDER BY id`,
		eventID, model.RequestPending)
	if err != nil {
		return nil, nil, fmt.Errorf("load pending requests: %w", err)
	}
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scan pending id: %w", err)
		}
		if !targeted[id] {
			otherPending = append(otherPending, id)
		}
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	plan, err := model.PlanModeration(event, targets, otherPending, confirmedCount, target)
	if err != nil {
		return nil, nil, err
	}

	if len(plan.Confirm) > 0 {
		if _, err = tx.Exec(ctx,
			`UPDATE requests SET status = $2 WHERE id = ANY($1)`,
			plan.Confirm, model.RequestConfirmed); err != nil {
			return nil, nil, fmt.Errorf("confirm requests: %w", err)
		}
	}
	if len(plan.Reject) > 0 {
		if _, err = tx.Exec(ctx,
			`UPDATE requests SET status = $2 WHERE id = ANY($1)`,
			plan.Reject, model.RequestRejected); err != nil {
			return nil, nil, fmt.Errorf("reject requests: %w", err)
		}
	}

	// Report the event's full resulting sets, not just the changed rows.
	collect := func(status model.RequestStatus) ([]model.Request, error) {
		rows, err := tx.Query(ctx,
			`SELECT id, requester_id, event_id, status, created
			 FROM requests WHERE event_id = $1 AND status = $2 ORDER BY id`,
			eventID, status)
		if err != nil {
			return nil, fmt.Errorf("list %s requests: %w", status, err)
		}
		defer rows.Close()
		var out []model.Request
		for rows.Next() {
			var req model.Request
			if err := rows.Scan(&req.ID, &req.RequesterID, &req.EventID, &req.Status, &req.Created); err != nil {
				return nil, fmt.Errorf("scan request: %w", err)
			}
			out = append(out, req)
		}
		return out, rows.Err()
	}
	if confirmed, err = collect(model.RequestConfirmed); err != nil {
		return nil, nil, err
	}
	if rejected, err = collect(model.RequestRejected); err != nil {
		return nil, nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit transaction: %w", err)
	}
	return confirmed, rejected, nil
}
