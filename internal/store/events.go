package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cedran/backend-frete/internal/events"
)

// Events persists domain events into domain_events.
type Events struct {
	pool *pgxpool.Pool
}

// NewEvents constructs an event store backed by a pgx connection pool.
func NewEvents(pool *pgxpool.Pool) *Events {
	return &Events{pool: pool}
}

// InsertDomainEvent appends one event row and returns the stored event.
func (s *Events) InsertDomainEvent(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) (events.Event, error) {
	if s == nil || s.pool == nil {
		return events.Event{}, ErrStoreUnavailable
	}
	ev := events.Event{Topic: topic, AggregateID: aggregateID, Payload: payload}
	err := s.pool.QueryRow(ctx, `INSERT INTO domain_events (topic, aggregate_id, payload)
VALUES ($1, $2, $3) RETURNING id, occurred_at`, topic, aggregateID, payload).Scan(&ev.ID, &ev.OccurredAt)
	if err != nil {
		return events.Event{}, err
	}
	return ev, nil
}
