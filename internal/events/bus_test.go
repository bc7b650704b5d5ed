package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	inserted []Event
	err      error
}

func (s *memStore) InsertDomainEvent(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Event, error) {
	if s.err != nil {
		return Event{}, s.err
	}
	ev := Event{ID: uuid.New(), Topic: topic, AggregateID: aggregateID, Payload: payload, OccurredAt: time.Now()}
	s.inserted = append(s.inserted, ev)
	return ev, nil
}

type recordingNotifier struct {
	events []Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev Event) error {
	n.events = append(n.events, ev)
	return n.err
}

func TestEmitPersistsAndNotifies(t *testing.T) {
	store := &memStore{}
	notifier := &recordingNotifier{}
	bus := &Bus{Store: store, Notifiers: []Notifier{notifier}}

	aggregate := uuid.New()
	ev, err := bus.Emit(context.Background(), TopicQuoteComputed, aggregate, map[string]int{"offers": 2})
	require.NoError(t, err)
	require.Equal(t, TopicQuoteComputed, ev.Topic)
	require.Equal(t, aggregate, ev.AggregateID)
	require.JSONEq(t, `{"offers":2}`, string(ev.Payload))
	require.Len(t, store.inserted, 1)
	require.Len(t, notifier.events, 1)
}

func TestEmitValidatesInput(t *testing.T) {
	bus := &Bus{Store: &memStore{}}

	_, err := bus.Emit(context.Background(), "", uuid.New(), nil)
	require.Error(t, err)

	_, err = bus.Emit(context.Background(), TopicQuoteFailed, uuid.Nil, nil)
	require.Error(t, err)
}

func TestEmitNotifierFailureKeepsEvent(t *testing.T) {
	store := &memStore{}
	notifier := &recordingNotifier{err: errors.New("webhook down")}
	bus := &Bus{Store: store, Notifiers: []Notifier{notifier}}

	_, err := bus.Emit(context.Background(), TopicQuoteFailed, uuid.New(), []byte(`{"error":"x"}`))
	require.Error(t, err)
	require.Len(t, store.inserted, 1)
}

func TestEmitRejectsInvalidJSONPayload(t *testing.T) {
	bus := &Bus{Store: &memStore{}}
	_, err := bus.Emit(context.Background(), TopicQuoteComputed, uuid.New(), []byte("not json"))
	require.Error(t, err)
}
