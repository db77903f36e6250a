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

const eventColumns = `id, annotation, category_id, created_on, description, event_date,
	initiator_id, lat, lon, paid, participant_limit, published_on,
	request_moderation, state, title, views`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Annotation, &e.CategoryID, &e.CreatedOn, &e.Description,
		&e.EventDate, &e.InitiatorID, &e.Location.Lat, &e.Location.Lon, &e.Paid,
		&e.ParticipantLimit, &e.PublishedOn, &e.RequestModeration, &e.State,
		&e.Title, &e.Views)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	defer rows.Close()
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Create inserts a new event in PENDING state.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) (*model.Event, error) {
	e.State = model.StatePending
	e.CreatedOn = time.Now().UTC().Truncate(time.Second)
	err := r.db.QueryRow(ctx,
		`INSERT INTO events (annotation, category_id, created_on, description, event_date,
			initiator_id, lat, lon, paid, participant_limit, request_moderation, state, title)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id`,
		e.Annotation, e.CategoryID, e.CreatedOn, e.Description, e.EventDate,
		e.InitiatorID, e.Location.Lat, e.Location.Lon, e.Paid, e.ParticipantLimit,
		e.RequestModeration, e.State, e.Title,
	).Scan(&e.ID)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

// GetByID returns a single event or a not-found error.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("event with id=%d was not found", id)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Update writes back every mutable field of the event.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events SET annotation = $2, category_id = $3, description = $4,
			event_date = $5, lat = $6, lon = $7, paid = $8, participant_limit = $9,
			published_on = $10, request_moderation = $11, state = $12, title = $13
		 WHERE id = $1`,
		e.ID, e.Annotation, e.CategoryID, e.Description, e.EventDate,
		e.Location.Lat, e.Location.Lon, e.Paid, e.ParticipantLimit,
		e.PublishedOn, e.RequestModeration, e.State, e.Title,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("event with id=%d was not found", e.ID)
	}
	return nil
}

// SetViews stores the view counter fetched from the stats service.
func (r *EventRepository) SetViews(ctx context.Context, id, views int64) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE events SET views = $2 WHERE id = $1`, id, views); err != nil {
		return fmt.Errorf("set event views: %w", err)
	}
	return nil
}

// ListByInitiator returns the events created by one user, newest first.
func (r *EventRepository) ListByInitiator(ctx context.Context, userID int64) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE initiator_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list events by initiator: %w", err)
	}
	return collectEvents(rows)
}

// ListByIDs returns the events with the given ids.
func (r *EventRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list events by ids: %w", err)
	}
	return collectEvents(rows)
}

// ListPublished returns every PUBLISHED event. The published-state filter
// is the only one applied at the store; text, category, paid, date range
// and availability filtering happen in the service layer.
func (r *EventRepository) ListPublished(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE state = $1 ORDER BY id`,
		model.StatePublished)
	if err != nil {
		return nil, fmt.Errorf("list published events: %w", err)
	}
	return collectEvents(rows)
}

// AdminFilter narrows the admin event listing. Nil or empty fields match
// everything.
type AdminFilter struct {
	Users      []int64
	States     []model.State
	Categories []int64
	RangeStart *time.Time
	RangeEnd   *time.Time
}

// ListAdmin returns events matching the admin filter.
func (r *EventRepository) ListAdmin(ctx context.Context, f AdminFilter) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE true`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if len(f.Users) > 0 {
		query += ` AND initiator_id = ANY(` + arg(f.Users) + `)`
	}
	if len(f.States) > 0 {
		query += ` AND state = ANY(` + arg(f.States) + `)`
	}
	if len(f.Categories) > 0 {
		query += ` AND category_id = ANY(` + arg(f.Categories) + `)`
	}
	if f.RangeStart != nil {
		query += ` AND event_date >= ` + arg(*f.RangeStart)
	}
	if f.RangeEnd != nil {
		query += ` AND event_date <= ` + arg(*f.RangeEnd)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events for admin: %w", err)
	}
	return collectEvents(rows)
}

// CountConfirmed returns the number of CONFIRMED requests for one event.
func (r *EventRepository) CountConfirmed(ctx context.Context, eventID int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM requests WHERE event_id = $1 AND status = $2`,
		eventID, model.RequestConfirmed,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count confirmed requests: %w", err)
	}
	return n, nil
}

// CountConfirmedBatch returns confirmed-request counts keyed by event id.
// Events without confirmed requests are absent from the map.
func (r *EventRepository) CountConfirmedBatch(ctx context.Context, eventIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT event_id, COUNT(*) FROM requests
		 WHERE event_id = ANY($1) AND status = $2
		 GROUP BY event_id`,
		eventIDs, model.RequestConfirmed)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan confirmed count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
